package room

import (
	"fmt"
	"sort"

	"github.com/pompamc/vampire-village/internal/game"
	"github.com/pompamc/vampire-village/internal/types"
)

// Everything handed outside the loop is built from copies; the live game
// state never leaves the actor.

func (r *Room) Code() string { return r.state.Code }

func (r *Room) sortedPlayers() []*game.Player {
	out := make([]*game.Player, 0, len(r.state.Players))
	for _, p := range r.state.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Room) roomUpdate() *types.RoomUpdate {
	upd := &types.RoomUpdate{
		Code:   r.state.Code,
		HostID: r.state.HostID,
		Config: configWire(r.state.Config),
		Phase:  string(r.state.Phase),
	}
	for _, p := range r.sortedPlayers() {
		upd.Players = append(upd.Players, types.PlayerInfo{ID: p.ID, Name: p.Name, Alive: p.Alive, Host: p.Host})
	}
	return upd
}

func (r *Room) gameState() *types.GameState {
	gs := &types.GameState{
		Phase:      string(r.state.Phase),
		Round:      r.state.Round,
		AliveCount: r.state.AliveCount(),
	}
	for _, p := range r.sortedPlayers() {
		gs.Players = append(gs.Players, types.PlayerInfo{ID: p.ID, Name: p.Name, Alive: p.Alive, Host: p.Host})
		if !p.Alive {
			gs.Dead = append(gs.Dead, p.Name)
		}
	}
	return gs
}

func (r *Room) voteStatus() *types.VoteStatus {
	vs := &types.VoteStatus{
		VotedCount: len(r.state.Votes),
		TotalAlive: r.state.AliveCount(),
		Votes:      map[string]string{},
	}
	for voterID, targetID := range r.state.Votes {
		voter, vok := r.state.Players[voterID]
		target, tok := r.state.Players[targetID]
		if vok && tok {
			vs.Votes[voter.Name] = target.Name
		}
	}
	return vs
}

func (r *Room) summary() *types.RoomSummary {
	if r.state.Phase != game.PhaseLobby {
		return nil
	}
	hostName := ""
	if host, ok := r.state.Players[r.state.HostID]; ok {
		hostName = host.Name
	}
	return &types.RoomSummary{
		Code:        r.state.Code,
		RoomName:    r.state.Config.RoomName,
		PlayerCount: len(r.state.Players),
		HostName:    hostName,
		MaxPlayers:  r.state.Config.MaxPlayers,
	}
}

func configWire(c game.Config) types.RoomConfig {
	roles := map[string]int{}
	for role, n := range c.Roles {
		roles[string(role)] = n
	}
	return types.RoomConfig{
		RoomName:   c.RoomName,
		MaxPlayers: c.MaxPlayers,
		Roles:      roles,
		DaySec:     c.DaySec,
		VotingSec:  c.VotingSec,
	}
}

func roleInfo(role game.Role) *types.RoleInfo {
	info := role.Info()
	return &types.RoleInfo{
		Role:        string(role),
		Name:        info.Name,
		Description: info.Description,
		Emoji:       info.Emoji,
		Team:        string(info.Team),
	}
}

func eventMessage(e game.Event) (types.ServerMessage, bool) {
	switch e.Type {
	case game.EvtInspectResult:
		return types.ServerMessage{Type: "seer_result", Inspect: &types.InspectResult{
			TargetName: e.TargetName,
			IsVampire:  e.IsVampire,
		}}, true
	case game.EvtGraveLocked:
		return types.ServerMessage{
			Type:    "grave_locked",
			Message: fmt.Sprintf("Target locked: %s. You will take their role when they die.", e.TargetName),
		}, true
	case game.EvtTransformed:
		return types.ServerMessage{
			Type:    "transformed",
			Role:    roleInfo(e.Role),
			Message: fmt.Sprintf("%s is dead. You are now the %s.", e.TargetName, e.Role.Info().Name),
		}, true
	case game.EvtVampireRoster:
		return types.ServerMessage{
			Type:      "role_assigned",
			Role:      roleInfo(game.RoleVampire),
			Teammates: e.Teammates,
		}, true
	case game.EvtEscortEscaped:
		return types.ServerMessage{
			Type:    "escort_escaped",
			Message: "The vampires came for you, but you were out. You survived.",
		}, true
	case game.EvtRevival:
		return types.ServerMessage{
			Type:    "revival",
			Message: fmt.Sprintf("%s has been brought back to life.", e.TargetName),
		}, true
	case game.EvtRetaliation:
		return types.ServerMessage{
			Type:    "retaliation",
			Message: fmt.Sprintf("%s's vengeance strikes down %s.", e.ActorName, e.TargetName),
		}, true
	default:
		return types.ServerMessage{}, false
	}
}
