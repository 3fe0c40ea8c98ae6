package game

// roleCounts resolves the effective per-role counts: host-configured
// values win, any role the host never mentioned falls back to the
// per-size defaults.
func (r *Room) roleCounts() map[Role]int {
	counts := DefaultCounts(len(r.Players))
	for role, n := range r.Config.Roles {
		if role.Valid() && role != RoleVillager {
			counts[role] = n
		}
	}
	return counts
}

// AssignRoles expands the configured role counts into one token per
// member, shuffles, and deals. Each special role gets at most its
// configured count — never more, possibly fewer when the configuration
// exceeds the room size — and villagers absorb the rest, so starting a
// game can never fail on an overflowing configuration. Also resets every
// game-long tracker for a fresh game.
func (r *Room) AssignRoles() error {
	if len(r.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}

	total := len(r.Players)
	counts := r.roleCounts()

	tokens := make([]Role, 0, total)
	for _, role := range AssignOrder {
		n := counts[role]
		if remaining := total - len(tokens); n > remaining {
			n = remaining
		}
		for i := 0; i < n; i++ {
			tokens = append(tokens, role)
		}
	}
	for len(tokens) < total {
		tokens = append(tokens, RoleVillager)
	}

	// Fisher–Yates
	for i := len(tokens) - 1; i > 0; i-- {
		j := r.rng.Intn(i + 1)
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}

	i := 0
	for _, p := range r.Players {
		p.Role = tokens[i]
		p.Alive = true
		i++
	}

	r.Dead = map[string]bool{}
	r.GraveLocks = map[string]string{}
	r.RevivalUsed = map[string]bool{}
	r.CurrentMarks = map[string]string{}
	r.ResetNight()
	r.ResetVotes()
	return nil
}
