package game

import (
	"slices"
	"strings"
	"time"
)

// SubmitNightAction records one member's night action. Valid only during
// the night, only for a living member, and only when the action variant
// matches the member's current role. Re-submission overwrites the actor's
// prior submission for this night.
func (r *Room) SubmitNightAction(actorID string, action NightAction) ([]Event, error) {
	if r.Phase != PhaseNight {
		return nil, ErrInvalidPhase
	}
	actor, ok := r.Players[actorID]
	if !ok {
		return nil, ErrNotInRoom
	}
	if !actor.Alive {
		return nil, ErrNotAlive
	}
	if actor.Role != actionRole(action) {
		return nil, ErrWrongRole
	}

	switch a := action.(type) {
	case KillVote:
		target, ok := r.Players[a.TargetID]
		if !ok || !target.Alive {
			return nil, ErrInvalidTarget
		}
		r.Night.VampVotes[actorID] = a.TargetID
		r.freezeKillTarget()
		return nil, nil

	case Protect:
		target, ok := r.Players[a.TargetID]
		if !ok || !target.Alive {
			return nil, ErrInvalidTarget
		}
		r.Night.Protected = a.TargetID
		return nil, nil

	case Inspect:
		target, ok := r.Players[a.TargetID]
		if !ok || !target.Alive {
			return nil, ErrInvalidTarget
		}
		res := InspectResult{
			TargetID:   a.TargetID,
			TargetName: target.Name,
			IsVampire:  target.Role.IsVampire(),
		}
		r.Night.Inspections[actorID] = res
		return []Event{{
			Type:       EvtInspectResult,
			To:         actorID,
			TargetID:   res.TargetID,
			TargetName: res.TargetName,
			IsVampire:  res.IsVampire,
		}}, nil

	case Visit:
		if a.TargetID != "" {
			target, ok := r.Players[a.TargetID]
			if !ok || !target.Alive {
				return nil, ErrInvalidTarget
			}
		}
		r.Night.Visits[actorID] = a.TargetID
		return nil, nil

	case GraveLock:
		if r.Round != 1 {
			return nil, ErrInvalidTarget
		}
		if _, locked := r.GraveLocks[actorID]; locked {
			return nil, ErrInvalidTarget
		}
		target, ok := r.Players[a.TargetID]
		if !ok || a.TargetID == actorID {
			return nil, ErrInvalidTarget
		}
		r.GraveLocks[actorID] = a.TargetID
		return []Event{{
			Type:       EvtGraveLocked,
			To:         actorID,
			TargetID:   target.ID,
			TargetName: target.Name,
		}}, nil

	case Revive:
		if r.RevivalUsed[actorID] {
			return nil, ErrInvalidTarget
		}
		target, ok := r.Players[a.TargetID]
		if !ok || target.Alive {
			return nil, ErrInvalidTarget
		}
		r.Night.Revival = &Revival{ReviverID: actorID, TargetID: target.ID}
		return nil, nil

	case Mark:
		target, ok := r.Players[a.TargetID]
		if !ok || !target.Alive || a.TargetID == actorID {
			return nil, ErrInvalidTarget
		}
		r.CurrentMarks[actorID] = a.TargetID
		return nil, nil

	default:
		return nil, ErrWrongRole
	}
}

// freezeKillTarget fixes the vampires' victim once every living vampire
// has voted. Once frozen, later votes are recorded but never recomputed.
func (r *Room) freezeKillTarget() {
	if r.Night.KillTarget != "" {
		return
	}
	vamps := r.aliveVampires()
	for _, v := range vamps {
		if _, voted := r.Night.VampVotes[v.ID]; !voted {
			return
		}
	}
	r.Night.KillTarget = r.pluralityTarget()
}

// pluralityTarget tallies the current vampire votes; ties among top
// targets break uniformly at random.
func (r *Room) pluralityTarget() string {
	if len(r.Night.VampVotes) == 0 {
		return ""
	}
	counts := map[string]int{}
	for _, target := range r.Night.VampVotes {
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
	if len(top) == 1 {
		return top[0]
	}
	// Stable order before the random draw so the draw is uniform.
	slices.Sort(top)
	return top[r.rng.Intn(len(top))]
}

// CastVote records an elimination vote. Self-votes, dead voters, and dead
// targets are rejected here, never at tally time.
func (r *Room) CastVote(voterID, targetID string) error {
	if r.Phase != PhaseVoting {
		return ErrInvalidPhase
	}
	voter, ok := r.Players[voterID]
	if !ok {
		return ErrNotInRoom
	}
	if !voter.Alive {
		return ErrNotAlive
	}
	if voterID == targetID {
		return ErrInvalidTarget
	}
	target, ok := r.Players[targetID]
	if !ok || !target.Alive {
		return ErrInvalidTarget
	}
	r.Votes[voterID] = targetID
	return nil
}

// AppendChat validates and records a chat message, classifying its
// audience. A living non-vampire talking during the night is rejected
// outright rather than silently dropped.
func (r *Room) AppendChat(senderID, text string) (ChatMessage, error) {
	sender, ok := r.Players[senderID]
	if !ok {
		return ChatMessage{}, ErrNotInRoom
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ErrEmptyMessage
	}
	if runes := []rune(text); len(runes) > MaxChatRunes {
		text = string(runes[:MaxChatRunes])
	}

	audience := AudiencePublic
	switch {
	case !sender.Alive:
		audience = AudienceDead
	case r.Phase == PhaseNight && sender.Role.IsVampire():
		audience = AudienceVampires
	case r.Phase == PhaseNight:
		return ChatMessage{}, ErrInvalidPhase
	}

	msg := ChatMessage{
		SenderID:   senderID,
		SenderName: sender.Name,
		Text:       text,
		SentAt:     time.Now(),
		Audience:   audience,
	}
	r.Chat = append(r.Chat, msg)
	return msg, nil
}
