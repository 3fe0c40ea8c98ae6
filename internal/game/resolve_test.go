package game

import "testing"

func deathReasons(deaths []Death) map[string]DeathReason {
	out := map[string]DeathReason{}
	for _, d := range deaths {
		out[d.ID] = d.Reason
	}
	return out
}

func hasEvent(events []Event, typ EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestResolveNightNoVotesNoDeaths(t *testing.T) {
	r := nightRoom(t)
	out := r.ResolveNight()
	if len(out.Deaths) != 0 || out.Saved {
		t.Fatalf("outcome = %+v, want quiet night", out)
	}
	if r.AliveCount() != 6 {
		t.Fatalf("alive = %d, want 6", r.AliveCount())
	}
}

func TestResolveNightKill(t *testing.T) {
	r := nightRoom(t)
	mustAct(t, r, "p0", KillVote{TargetID: "p5"})
	mustAct(t, r, "p1", KillVote{TargetID: "p5"})

	out := r.ResolveNight()
	if got := deathReasons(out.Deaths); got["p5"] != ReasonVampire {
		t.Fatalf("deaths = %v, want p5 by %s", got, ReasonVampire)
	}
	if r.Players["p5"].Alive {
		t.Fatal("victim still alive")
	}
	if !r.Dead["p5"] {
		t.Fatal("victim missing from dead set")
	}
}

func TestResolveNightPartialVotesStillKill(t *testing.T) {
	// Timer fired before the second vampire voted; the submitted subset
	// decides alone.
	r := nightRoom(t)
	mustAct(t, r, "p0", KillVote{TargetID: "p5"})

	out := r.ResolveNight()
	if got := deathReasons(out.Deaths); got["p5"] != ReasonVampire {
		t.Fatalf("deaths = %v, want p5 killed", got)
	}
}

func TestResolveNightProtectionSaves(t *testing.T) {
	r := nightRoom(t)
	mustAct(t, r, "p0", KillVote{TargetID: "p5"})
	mustAct(t, r, "p1", KillVote{TargetID: "p5"})
	mustAct(t, r, "p2", Protect{TargetID: "p5"})

	out := r.ResolveNight()
	if !out.Saved {
		t.Fatal("want saved")
	}
	if len(out.Deaths) != 0 {
		t.Fatalf("deaths = %v, want none", out.Deaths)
	}
	if !r.Players["p5"].Alive {
		t.Fatal("protected victim died")
	}
}

func TestResolveNightProtectionElsewhereDoesNotSave(t *testing.T) {
	r := nightRoom(t)
	mustAct(t, r, "p0", KillVote{TargetID: "p5"})
	mustAct(t, r, "p1", KillVote{TargetID: "p5"})
	mustAct(t, r, "p2", Protect{TargetID: "p3"})

	out := r.ResolveNight()
	if out.Saved {
		t.Fatal("saved should be false")
	}
	if r.Players["p5"].Alive {
		t.Fatal("victim should be dead")
	}
}

func TestResolveNightEscortAwayEscapes(t *testing.T) {
	r := nightRoom(t)
	mustAct(t, r, "p0", KillVote{TargetID: "p4"})
	mustAct(t, r, "p1", KillVote{TargetID: "p4"})
	mustAct(t, r, "p4", Visit{TargetID: "p3"})

	out := r.ResolveNight()
	if len(out.Deaths) != 0 {
		t.Fatalf("deaths = %v, want none", out.Deaths)
	}
	if !hasEvent(out.Events, EvtEscortEscaped) {
		t.Fatal("missing escape event")
	}
	if !r.Players["p4"].Alive {
		t.Fatal("escort died while away")
	}
}

func TestResolveNightEscortHomeDies(t *testing.T) {
	r := nightRoom(t)
	mustAct(t, r, "p0", KillVote{TargetID: "p4"})
	mustAct(t, r, "p1", KillVote{TargetID: "p4"})
	mustAct(t, r, "p4", Visit{}) // stayed home

	out := r.ResolveNight()
	if got := deathReasons(out.Deaths); got["p4"] != ReasonVampire {
		t.Fatalf("deaths = %v, want p4 killed at home", got)
	}
}

func TestResolveNightVisitingTheVictimIsFatal(t *testing.T) {
	r := nightRoom(t)
	mustAct(t, r, "p0", KillVote{TargetID: "p5"})
	mustAct(t, r, "p1", KillVote{TargetID: "p5"})
	mustAct(t, r, "p4", Visit{TargetID: "p5"})

	out := r.ResolveNight()
	got := deathReasons(out.Deaths)
	if got["p5"] != ReasonVampire {
		t.Errorf("victim reason = %s, want %s", got["p5"], ReasonVampire)
	}
	if got["p4"] != ReasonVisit {
		t.Errorf("visitor reason = %s, want %s", got["p4"], ReasonVisit)
	}
}

func TestResolveNightProtectedVictimSparesVisitor(t *testing.T) {
	r := nightRoom(t)
	mustAct(t, r, "p0", KillVote{TargetID: "p5"})
	mustAct(t, r, "p1", KillVote{TargetID: "p5"})
	mustAct(t, r, "p2", Protect{TargetID: "p5"})
	mustAct(t, r, "p4", Visit{TargetID: "p5"})

	out := r.ResolveNight()
	if len(out.Deaths) != 0 {
		t.Fatalf("deaths = %v, want none when the attack is blocked", out.Deaths)
	}
}

func TestResolveNightGraveRobberTransforms(t *testing.T) {
	r := nightRoom(t)
	setRoles(r, map[string]Role{"p3": RoleGraveRobber})
	r.GraveLocks["p3"] = "p5"
	mustAct(t, r, "p0", KillVote{TargetID: "p5"})
	mustAct(t, r, "p1", KillVote{TargetID: "p5"})

	out := r.ResolveNight()
	if !hasEvent(out.Events, EvtTransformed) {
		t.Fatal("missing transform event")
	}
	if got := r.Players["p3"].Role; got != RoleVillager {
		t.Fatalf("robber role = %s, want villager", got)
	}
}

func TestResolveNightTransformIntoVampireRevealsRoster(t *testing.T) {
	r := nightRoom(t)
	setRoles(r, map[string]Role{"p3": RoleGraveRobber})
	r.GraveLocks["p3"] = "p1"
	// Kill the locked vampire through a retaliation mark.
	r.CurrentMarks["p5"] = "p1"
	mustAct(t, r, "p0", KillVote{TargetID: "p5"})

	out := r.ResolveNight()
	got := deathReasons(out.Deaths)
	if got["p5"] != ReasonVampire || got["p1"] != ReasonRetaliation {
		t.Fatalf("deaths = %v, want p5 then p1", got)
	}
	if got := r.Players["p3"].Role; got != RoleVampire {
		t.Fatalf("robber role = %s, want vampire", got)
	}
	if !hasEvent(out.Events, EvtVampireRoster) {
		t.Fatal("missing roster reveal for the new vampire")
	}
}

func TestResolveNightRetaliationChain(t *testing.T) {
	// p5 marked p4, p4 marked p3: killing p5 cascades through both marks.
	r := nightRoom(t)
	r.CurrentMarks["p5"] = "p4"
	r.CurrentMarks["p4"] = "p3"
	mustAct(t, r, "p0", KillVote{TargetID: "p5"})
	mustAct(t, r, "p1", KillVote{TargetID: "p5"})

	out := r.ResolveNight()
	got := deathReasons(out.Deaths)
	if got["p5"] != ReasonVampire || got["p4"] != ReasonRetaliation || got["p3"] != ReasonRetaliation {
		t.Fatalf("deaths = %v, want full chain", got)
	}
}

func TestResolveNightRevival(t *testing.T) {
	r := nightRoom(t)
	setRoles(r, map[string]Role{"p3": RoleMedium})
	r.Players["p5"].Alive = false
	r.Dead["p5"] = true
	mustAct(t, r, "p3", Revive{TargetID: "p5"})

	out := r.ResolveNight()
	if !hasEvent(out.Events, EvtRevival) {
		t.Fatal("missing revival event")
	}
	if !r.Players["p5"].Alive || r.Dead["p5"] {
		t.Fatal("target not revived")
	}
	if !r.RevivalUsed["p3"] {
		t.Fatal("charge not consumed")
	}
}

func TestResolveNightRevivedCanDieSameNight(t *testing.T) {
	// Revival runs before the kill: a member brought back tonight is a
	// legal victim of tonight's attack.
	r := nightRoom(t)
	setRoles(r, map[string]Role{"p3": RoleMedium})
	r.Players["p5"].Alive = false
	r.Dead["p5"] = true
	mustAct(t, r, "p3", Revive{TargetID: "p5"})
	// A dead member can't be voted for, so the frozen target is staged
	// directly: the interesting part is the resolution order.
	r.Night.KillTarget = "p5"

	out := r.ResolveNight()
	if !hasEvent(out.Events, EvtRevival) {
		t.Fatal("missing revival event")
	}
	if got := deathReasons(out.Deaths); got["p5"] != ReasonVampire {
		t.Fatalf("deaths = %v, want p5 re-killed", got)
	}
	if r.Players["p5"].Alive {
		t.Fatal("p5 should be dead again")
	}
	if !r.RevivalUsed["p3"] {
		t.Fatal("charge should still be consumed")
	}
}

func TestResolveVotesElimination(t *testing.T) {
	r := nightRoom(t)
	r.Phase = PhaseVoting
	for _, voter := range []string{"p2", "p3", "p4"} {
		if err := r.CastVote(voter, "p0"); err != nil {
			t.Fatalf("%s vote: %v", voter, err)
		}
	}
	if err := r.CastVote("p0", "p2"); err != nil {
		t.Fatal(err)
	}

	out := r.ResolveVotes()
	if out.Tie || out.JesterWin {
		t.Fatalf("outcome = %+v, want clean elimination", out)
	}
	if out.Eliminated == nil || out.Eliminated.ID != "p0" || out.Eliminated.VoteCount != 3 {
		t.Fatalf("eliminated = %+v, want p0 with 3 votes", out.Eliminated)
	}
	if out.Eliminated.Role != RoleVampire {
		t.Errorf("revealed role = %s, want vampire", out.Eliminated.Role)
	}
	if r.Players["p0"].Alive {
		t.Fatal("eliminated player still alive")
	}
}

func TestResolveVotesTieEliminatesNobody(t *testing.T) {
	r := nightRoom(t)
	r.Phase = PhaseVoting
	if err := r.CastVote("p2", "p0"); err != nil {
		t.Fatal(err)
	}
	if err := r.CastVote("p3", "p1"); err != nil {
		t.Fatal(err)
	}

	out := r.ResolveVotes()
	if !out.Tie || out.Eliminated != nil {
		t.Fatalf("outcome = %+v, want tie with no elimination", out)
	}
	if r.AliveCount() != 6 {
		t.Fatal("someone died on a tie")
	}
}

func TestResolveVotesNoVotes(t *testing.T) {
	r := nightRoom(t)
	r.Phase = PhaseVoting

	out := r.ResolveVotes()
	if out.Tie || out.Eliminated != nil || out.JesterWin {
		t.Fatalf("outcome = %+v, want nothing", out)
	}
}

func TestResolveVotesJesterWin(t *testing.T) {
	r := nightRoom(t)
	setRoles(r, map[string]Role{"p5": RoleJester})
	r.Phase = PhaseVoting
	// The jester marked someone; elimination must not trigger the cascade.
	r.CurrentMarks["p5"] = "p2"
	for _, voter := range []string{"p0", "p1", "p2", "p3"} {
		if err := r.CastVote(voter, "p5"); err != nil {
			t.Fatal(err)
		}
	}

	out := r.ResolveVotes()
	if !out.JesterWin {
		t.Fatal("want jester win")
	}
	if r.Players["p5"].Alive {
		t.Fatal("jester should be dead")
	}
	if len(out.Deaths) != 0 || !r.Players["p2"].Alive {
		t.Fatal("jester elimination must not cascade")
	}
}

func TestResolveVotesEliminationCascades(t *testing.T) {
	r := nightRoom(t)
	r.CurrentMarks["p5"] = "p2"
	r.Phase = PhaseVoting
	for _, voter := range []string{"p0", "p1", "p3"} {
		if err := r.CastVote(voter, "p5"); err != nil {
			t.Fatal(err)
		}
	}

	out := r.ResolveVotes()
	got := deathReasons(out.Deaths)
	if got["p5"] != ReasonElimination || got["p2"] != ReasonRetaliation {
		t.Fatalf("deaths = %v, want elimination then retaliation", got)
	}
}

func TestEvaluateWin(t *testing.T) {
	cases := []struct {
		name  string
		roles map[string]Role
		dead  []string
		want  Winner
	}{
		{
			name:  "game continues",
			roles: map[string]Role{"p0": RoleVampire},
			want:  WinnerNone,
		},
		{
			name:  "villagers win when no vampire lives",
			roles: map[string]Role{"p0": RoleVampire},
			dead:  []string{"p0"},
			want:  WinnerVillagers,
		},
		{
			name:  "vampires win on parity",
			roles: map[string]Role{"p0": RoleVampire, "p1": RoleVampire},
			dead:  []string{"p3", "p4", "p5"}, // 2 vampires vs 1 villager
			want:  WinnerVampires,
		},
		{
			name:  "jester counts for neither side",
			roles: map[string]Role{"p0": RoleVampire, "p5": RoleJester},
			dead:  []string{"p2", "p3", "p4"}, // 1 vampire vs 0 opposing + jester
			want:  WinnerVampires,
		},
		{
			name:  "dead jester changes nothing",
			roles: map[string]Role{"p0": RoleVampire, "p5": RoleJester},
			dead:  []string{"p5"},
			want:  WinnerNone,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := nightRoom(t)
			setRoles(r, map[string]Role{
				"p0": RoleVillager, "p1": RoleVillager, "p2": RoleVillager,
				"p3": RoleVillager, "p4": RoleVillager, "p5": RoleVillager,
			})
			setRoles(r, tc.roles)
			for _, id := range tc.dead {
				r.Players[id].Alive = false
				r.Dead[id] = true
			}
			if got := r.EvaluateWin(); got != tc.want {
				t.Errorf("EvaluateWin() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLeaveDiscardsPendingBallots(t *testing.T) {
	r := nightRoom(t)
	mustAct(t, r, "p0", KillVote{TargetID: "p5"})

	r.Phase = PhaseVoting
	if err := r.CastVote("p2", "p5"); err != nil {
		t.Fatal(err)
	}

	r.Phase = PhaseNight // Leave itself is phase-agnostic
	if _, empty := r.Leave("p0"); empty {
		t.Fatal("room should not be empty")
	}
	if _, empty := r.Leave("p2"); empty {
		t.Fatal("room should not be empty")
	}
	if len(r.Night.VampVotes) != 0 {
		t.Errorf("vamp votes = %v, want pruned", r.Night.VampVotes)
	}
	if len(r.Votes) != 0 {
		t.Errorf("votes = %v, want pruned", r.Votes)
	}

	r.Phase = PhaseVoting
	out := r.ResolveVotes()
	if out.Eliminated != nil {
		t.Fatalf("eliminated = %+v, a departed member's vote must not count", out.Eliminated)
	}
}

func TestLeaveTransfersHost(t *testing.T) {
	r := testRoom(t, 4, Config{})
	newHost, empty := r.Leave("p0")
	if empty {
		t.Fatal("room not empty")
	}
	if newHost == "" {
		t.Fatal("host privilege not transferred")
	}
	if r.HostID != newHost || !r.Players[newHost].Host {
		t.Fatal("host bookkeeping inconsistent")
	}
}

func TestLeaveLastPlayerEmptiesRoom(t *testing.T) {
	r := NewRoom("SOLO42", "p0", "Solo", Config{}.Clamped(), nil)
	if _, empty := r.Leave("p0"); !empty {
		t.Fatal("want empty")
	}
}

func mustAct(t *testing.T, r *Room, actorID string, a NightAction) {
	t.Helper()
	if _, err := r.SubmitNightAction(actorID, a); err != nil {
		t.Fatalf("%s %T: %v", actorID, a, err)
	}
}
