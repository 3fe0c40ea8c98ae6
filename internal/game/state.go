package game

import (
	"math/rand"
	"slices"
	"strings"
	"time"
)

type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseRoleReveal Phase = "role_reveal"
	PhaseNight      Phase = "night"
	PhaseDay        Phase = "day"
	PhaseVoting     Phase = "voting"
	PhaseEnded      Phase = "ended"
)

const (
	MinPlayers = 4
	MaxPlayers = 12

	RoleRevealSecondsDefault = 5
	NightSecondsDefault      = 30
	DaySecondsDefault        = 60
	VotingSecondsDefault     = 30
	MinPhaseSeconds          = 10

	MaxChatRunes = 200
	MaxNameRunes = 20
)

type Config struct {
	RoomName      string
	MaxPlayers    int
	Roles         map[Role]int // nil or partial: gaps filled from DefaultCounts at start
	RoleRevealSec int
	NightSec      int
	DaySec        int
	VotingSec     int
}

// Clamped normalizes a host-supplied config: capacity into [4,12],
// day/voting durations floored, role-reveal/night pinned to their fixed
// values. Role counts are left as given; overflow is absorbed at
// assignment time, never rejected.
func (c Config) Clamped() Config {
	out := c
	if out.RoomName == "" {
		out.RoomName = "Vampire Village"
	}
	if out.MaxPlayers == 0 {
		out.MaxPlayers = MaxPlayers
	}
	if out.MaxPlayers < MinPlayers {
		out.MaxPlayers = MinPlayers
	}
	if out.MaxPlayers > MaxPlayers {
		out.MaxPlayers = MaxPlayers
	}
	out.RoleRevealSec = RoleRevealSecondsDefault
	out.NightSec = NightSecondsDefault
	if out.DaySec == 0 {
		out.DaySec = DaySecondsDefault
	}
	if out.DaySec < MinPhaseSeconds {
		out.DaySec = MinPhaseSeconds
	}
	if out.VotingSec == 0 {
		out.VotingSec = VotingSecondsDefault
	}
	if out.VotingSec < MinPhaseSeconds {
		out.VotingSec = MinPhaseSeconds
	}
	return out
}

type Player struct {
	ID    string
	Name  string
	Role  Role
	Alive bool
	Host  bool
}

type Audience string

const (
	AudiencePublic   Audience = "public"
	AudienceDead     Audience = "dead"
	AudienceVampires Audience = "vampire"
)

type ChatMessage struct {
	SenderID   string
	SenderName string
	Text       string
	SentAt     time.Time
	Audience   Audience
}

// VisibleTo applies the chat audience rule to one recipient.
func (m ChatMessage) VisibleTo(p *Player) bool {
	switch m.Audience {
	case AudienceDead:
		return !p.Alive
	case AudienceVampires:
		return p.Role.IsVampire()
	default:
		return true
	}
}

type InspectResult struct {
	TargetID   string
	TargetName string
	IsVampire  bool
}

type Revival struct {
	ReviverID string
	TargetID  string
}

// NightState is rebuilt from scratch at the start of every night. Nothing
// in it survives into the next night; the game-long trackers (grave locks,
// revival charges, retaliation marks) live on the Room instead.
type NightState struct {
	KillTarget  string // frozen plurality target, "" until decided
	Protected   string
	VampVotes   map[string]string
	Inspections map[string]InspectResult
	Visits      map[string]string // visitor -> target, "" means stayed home
	Revival     *Revival
}

func newNightState() NightState {
	return NightState{
		VampVotes:   map[string]string{},
		Inspections: map[string]InspectResult{},
		Visits:      map[string]string{},
	}
}

// Room is the authoritative state of one session. It is owned by a single
// room actor goroutine; nothing here is safe for concurrent use.
type Room struct {
	Code    string
	Config  Config
	Phase   Phase
	Round   int
	HostID  string
	Players map[string]*Player
	Night   NightState
	Votes   map[string]string
	Chat    []ChatMessage
	Dead    map[string]bool

	// Game-long trackers.
	GraveLocks   map[string]string // robber -> first-night target, permanent
	RevivalUsed  map[string]bool   // medium -> one-shot consumed
	CurrentMarks map[string]string // avenger -> marked target, overwritten each night acted

	rng *rand.Rand
}

func NewRoom(code, hostID, hostName string, cfg Config, rng *rand.Rand) *Room {
	r := &Room{
		Code:         code,
		Config:       cfg,
		Phase:        PhaseLobby,
		Players:      map[string]*Player{},
		Night:        newNightState(),
		Votes:        map[string]string{},
		Dead:         map[string]bool{},
		GraveLocks:   map[string]string{},
		RevivalUsed:  map[string]bool{},
		CurrentMarks: map[string]string{},
		rng:          rng,
	}
	r.HostID = hostID
	r.Players[hostID] = &Player{ID: hostID, Name: hostName, Alive: true, Host: true}
	return r
}

// Join adds a non-host member. Fails once the game has started, when the
// room is full, or when the name collides case-insensitively.
func (r *Room) Join(id, name string) error {
	if r.Phase != PhaseLobby {
		return ErrGameAlreadyStarted
	}
	if len(r.Players) >= r.Config.MaxPlayers {
		return ErrRoomFull
	}
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return ErrNameTaken
		}
	}
	r.Players[id] = &Player{ID: id, Name: name, Alive: true}
	return nil
}

// Leave removes a member. Host privilege transfers to an arbitrary
// survivor. A mid-game leaver is never marked dead; they simply stop
// participating. Returns the new host ID (if a transfer happened) and
// whether the room is now empty.
func (r *Room) Leave(id string) (newHost string, empty bool) {
	p, ok := r.Players[id]
	if !ok {
		return "", len(r.Players) == 0
	}
	delete(r.Players, id)
	// A non-member's ballots must not survive into the tally.
	delete(r.Votes, id)
	delete(r.Night.VampVotes, id)
	if len(r.Players) == 0 {
		return "", true
	}
	if p.Host {
		for _, survivor := range r.Players {
			survivor.Host = true
			r.HostID = survivor.ID
			newHost = survivor.ID
			break
		}
	}
	return newHost, false
}

func (r *Room) ResetNight() {
	r.Night = newNightState()
}

func (r *Room) ResetVotes() {
	r.Votes = map[string]string{}
}

func (r *Room) AliveCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

func (r *Room) aliveVampires() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if p.Alive && p.Role.IsVampire() {
			out = append(out, p)
		}
	}
	return out
}

// VampireRoster lists the names of living vampires other than exclude,
// for the private teammate reveal.
func (r *Room) VampireRoster(exclude string) []string {
	var names []string
	for _, p := range r.Players {
		if p.Alive && p.Role.IsVampire() && p.ID != exclude {
			names = append(names, p.Name)
		}
	}
	slices.Sort(names)
	return names
}

// Clone returns a deep copy safe to hand outside the owning goroutine.
func (r *Room) Clone() *Room {
	out := *r
	out.Players = make(map[string]*Player, len(r.Players))
	for id, p := range r.Players {
		cp := *p
		out.Players[id] = &cp
	}
	out.Votes = copyMap(r.Votes)
	out.Dead = copyMap(r.Dead)
	out.GraveLocks = copyMap(r.GraveLocks)
	out.RevivalUsed = copyMap(r.RevivalUsed)
	out.CurrentMarks = copyMap(r.CurrentMarks)
	out.Night.VampVotes = copyMap(r.Night.VampVotes)
	out.Night.Visits = copyMap(r.Night.Visits)
	out.Night.Inspections = copyMap(r.Night.Inspections)
	if r.Night.Revival != nil {
		rv := *r.Night.Revival
		out.Night.Revival = &rv
	}
	out.Chat = append([]ChatMessage(nil), r.Chat...)
	out.rng = nil
	return &out
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
