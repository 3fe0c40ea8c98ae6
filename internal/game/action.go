package game

// NightAction is the sealed set of role-gated night submissions. Each
// variant carries exactly the payload its role needs; the actor's role is
// checked against the variant on intake, not against action-kind strings.
type NightAction interface{ isNightAction() }

// KillVote is one vampire's vote for tonight's victim.
type KillVote struct{ TargetID string }

// Protect is the doctor's save for the night.
type Protect struct{ TargetID string }

// Inspect is the seer's team check, answered immediately and privately.
type Inspect struct{ TargetID string }

// Visit is the escort's destination for the night. An empty TargetID
// means staying home.
type Visit struct{ TargetID string }

// GraveLock is the grave robber's first-night, once-per-game target bind.
type GraveLock struct{ TargetID string }

// Revive is the medium's one-shot resurrection of a dead member.
type Revive struct{ TargetID string }

// Mark is the avenger's retaliation mark for the night.
type Mark struct{ TargetID string }

func (KillVote) isNightAction()  {}
func (Protect) isNightAction()   {}
func (Inspect) isNightAction()   {}
func (Visit) isNightAction()     {}
func (GraveLock) isNightAction() {}
func (Revive) isNightAction()    {}
func (Mark) isNightAction()      {}

// actionRole maps each action variant to the only role allowed to submit it.
func actionRole(a NightAction) Role {
	switch a.(type) {
	case KillVote:
		return RoleVampire
	case Protect:
		return RoleDoctor
	case Inspect:
		return RoleSeer
	case Visit:
		return RoleEscort
	case GraveLock:
		return RoleGraveRobber
	case Revive:
		return RoleMedium
	case Mark:
		return RoleAvenger
	default:
		return ""
	}
}
