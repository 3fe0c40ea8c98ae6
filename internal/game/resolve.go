package game

import "slices"

type DeathReason string

const (
	ReasonVampire     DeathReason = "dark-attack"
	ReasonVisit       DeathReason = "visit-casualty"
	ReasonRetaliation DeathReason = "retaliation"
	ReasonElimination DeathReason = "elimination"
)

type Death struct {
	ID     string
	Name   string
	Reason DeathReason
}

type NightOutcome struct {
	Deaths []Death
	Saved  bool
	Events []Event
}

// applyDeath kills one member and runs the death cascade: grave-robber
// transformation locks first, then retaliation marks, recursively.
func (r *Room) applyDeath(id string, reason DeathReason, deaths *[]Death, events *[]Event) {
	p, ok := r.Players[id]
	if !ok || !p.Alive {
		return
	}
	p.Alive = false
	r.Dead[id] = true
	*deaths = append(*deaths, Death{ID: id, Name: p.Name, Reason: reason})

	deadRole := p.Role
	for _, robberID := range sortedKeys(r.GraveLocks) {
		if r.GraveLocks[robberID] != id {
			continue
		}
		robber, ok := r.Players[robberID]
		if !ok || !robber.Alive {
			continue
		}
		robber.Role = deadRole
		*events = append(*events, Event{
			Type:       EvtTransformed,
			To:         robberID,
			TargetName: p.Name,
			Role:       deadRole,
		})
		if deadRole.IsVampire() {
			*events = append(*events, Event{
				Type:      EvtVampireRoster,
				To:        robberID,
				Teammates: r.VampireRoster(robberID),
			})
		}
	}

	if markedID, ok := r.CurrentMarks[id]; ok {
		if marked, ok := r.Players[markedID]; ok && marked.Alive {
			*events = append(*events, Event{
				Type:       EvtRetaliation,
				ActorName:  p.Name,
				TargetID:   markedID,
				TargetName: marked.Name,
			})
			r.applyDeath(markedID, ReasonRetaliation, deaths, events)
		}
	}
}

// ResolveNight applies the night's submissions in a fixed order:
// revival, then the vampire kill, then the death cascade, then the
// escort rules. Revival deliberately runs before the kill, so a member
// revived this pass is a legal kill target the same night and can die
// again in the same resolution.
func (r *Room) ResolveNight() NightOutcome {
	var out NightOutcome

	if rv := r.Night.Revival; rv != nil {
		reviver, rok := r.Players[rv.ReviverID]
		target, tok := r.Players[rv.TargetID]
		if rok && tok && reviver.Alive && !target.Alive && !r.RevivalUsed[rv.ReviverID] {
			target.Alive = true
			delete(r.Dead, rv.TargetID)
			r.RevivalUsed[rv.ReviverID] = true
			out.Events = append(out.Events, Event{
				Type:       EvtRevival,
				TargetID:   rv.TargetID,
				TargetName: target.Name,
			})
		}
	}

	// Timer fired before every vampire voted: use whatever subset
	// submitted. No votes at all means no kill tonight.
	if r.Night.KillTarget == "" {
		r.Night.KillTarget = r.pluralityTarget()
	}
	killTarget := r.Night.KillTarget
	protected := r.Night.Protected
	out.Saved = killTarget != "" && killTarget == protected

	if killTarget != "" && !out.Saved {
		if target, ok := r.Players[killTarget]; ok && target.Alive {
			if visit, acted := r.Night.Visits[killTarget]; acted && visit != "" {
				// The escort was out visiting, not home for the attack.
				out.Events = append(out.Events, Event{Type: EvtEscortEscaped, To: killTarget})
			} else {
				r.applyDeath(killTarget, ReasonVampire, &out.Deaths, &out.Events)
				for _, visitorID := range sortedKeys(r.Night.Visits) {
					if r.Night.Visits[visitorID] != killTarget {
						continue
					}
					if visitor, ok := r.Players[visitorID]; ok && visitor.Alive {
						r.applyDeath(visitorID, ReasonVisit, &out.Deaths, &out.Events)
					}
				}
			}
		}
	}

	return out
}

type Elimination struct {
	ID        string
	Name      string
	Role      Role
	VoteCount int
}

type VoteOutcome struct {
	Eliminated *Elimination
	Tie        bool
	JesterWin  bool
	Deaths     []Death
	Events     []Event
}

// ResolveVotes tallies the day's elimination votes. A strict plurality is
// required; any tie for the maximum eliminates no one. Eliminating the
// jester ends the game in the jester's favor before the normal win
// evaluation; any other elimination runs the usual death cascade.
func (r *Room) ResolveVotes() VoteOutcome {
	var out VoteOutcome

	counts := map[string]int{}
	for _, target := range r.Votes {
		counts[target]++
	}
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	var top []string
	for target, n := range counts {
		if n == max {
			top = append(top, target)
		}
	}
	if len(top) != 1 || max == 0 {
		out.Tie = len(top) > 1
		return out
	}

	target, ok := r.Players[top[0]]
	if !ok || !target.Alive {
		return out
	}
	out.Eliminated = &Elimination{
		ID:        target.ID,
		Name:      target.Name,
		Role:      target.Role,
		VoteCount: max,
	}

	if target.Role == RoleJester {
		target.Alive = false
		r.Dead[target.ID] = true
		out.JesterWin = true
		return out
	}

	r.applyDeath(target.ID, ReasonElimination, &out.Deaths, &out.Events)
	return out
}

type Winner string

const (
	WinnerNone      Winner = ""
	WinnerVampires  Winner = "vampires"
	WinnerVillagers Winner = "villagers"
	WinnerJester    Winner = "jester"
)

// EvaluateWin partitions the living members into vampires and everyone
// opposing them (the jester counts for neither side). Vampires win on
// attrition parity; the village wins when no vampire is left.
func (r *Room) EvaluateWin() Winner {
	vampires, opposing := 0, 0
	for _, p := range r.Players {
		if !p.Alive {
			continue
		}
		switch {
		case p.Role.IsVampire():
			vampires++
		case p.Role != RoleJester:
			opposing++
		}
	}
	if vampires == 0 {
		return WinnerVillagers
	}
	if vampires >= opposing {
		return WinnerVampires
	}
	return WinnerNone
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
