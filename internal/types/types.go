package types

// ClientMessage is the single inbound frame shape; Type selects the
// operation and the other fields carry its payload.
type ClientMessage struct {
	Type       string      `json:"type"`
	Name       string      `json:"name,omitempty"`
	RoomCode   string      `json:"room_code,omitempty"`
	TargetID   string      `json:"target_id,omitempty"`
	ActionKind string      `json:"action_kind,omitempty"`
	Text       string      `json:"text,omitempty"`
	Config     *RoomConfig `json:"config,omitempty"`
}

type RoomConfig struct {
	RoomName   string         `json:"room_name,omitempty"`
	MaxPlayers int            `json:"max_players,omitempty"`
	Roles      map[string]int `json:"roles,omitempty"`
	DaySec     int            `json:"day_sec,omitempty"`
	VotingSec  int            `json:"voting_sec,omitempty"`
}

type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Alive bool   `json:"alive"`
	Host  bool   `json:"host"`
}

type RoomSummary struct {
	Code        string `json:"code"`
	RoomName    string `json:"room_name"`
	PlayerCount int    `json:"player_count"`
	HostName    string `json:"host_name"`
	MaxPlayers  int    `json:"max_players"`
}

type RoomUpdate struct {
	Code    string       `json:"code"`
	HostID  string       `json:"host_id"`
	Config  RoomConfig   `json:"config"`
	Players []PlayerInfo `json:"players"`
	Phase   string       `json:"phase"`
}

type RoleInfo struct {
	Role        string `json:"role"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	Team        string `json:"team"`
}

type GameState struct {
	Phase      string       `json:"phase"`
	Round      int          `json:"round"`
	Players    []PlayerInfo `json:"players"`
	AliveCount int          `json:"alive_count"`
	Dead       []string     `json:"dead"`
}

type TimerUpdate struct {
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

type InspectResult struct {
	TargetName string `json:"target_name"`
	IsVampire  bool   `json:"is_vampire"`
}

type NightDeath struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type NightResult struct {
	Killed         []NightDeath `json:"killed"`
	Saved          bool         `json:"saved"`
	MultipleDeaths bool         `json:"multiple_deaths"`
}

type VoteStatus struct {
	VotedCount int               `json:"voted_count"`
	TotalAlive int               `json:"total_alive"`
	Votes      map[string]string `json:"votes"` // voter name -> target name
}

type EliminatedPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	VoteCount int    `json:"vote_count"`
}

type VoteResult struct {
	Eliminated *EliminatedPlayer `json:"eliminated"`
	Tie        bool              `json:"tie"`
	JesterWin  bool              `json:"jester_win"`
}

type RevealedPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Alive bool   `json:"alive"`
}

type GameEnded struct {
	Winner  string           `json:"winner"`
	Players []RevealedPlayer `json:"players"`
}

type ChatMessage struct {
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
	Audience   string `json:"audience"`
	SentAt     int64  `json:"sent_at"`
}

// ServerMessage is the single outbound frame shape. Exactly one payload
// field is set for a given Type.
type ServerMessage struct {
	Type string `json:"type"`

	// ack fields
	Op    string `json:"op,omitempty"`
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`

	RoomCode  string         `json:"room_code,omitempty"`
	Room      *RoomUpdate    `json:"room,omitempty"`
	Rooms     []RoomSummary  `json:"rooms,omitempty"`
	Role      *RoleInfo      `json:"role,omitempty"`
	Teammates []string       `json:"teammates,omitempty"`
	Game      *GameState     `json:"game,omitempty"`
	Timer     *TimerUpdate   `json:"timer,omitempty"`
	Inspect   *InspectResult `json:"inspect,omitempty"`
	Night     *NightResult   `json:"night,omitempty"`
	VoteState *VoteStatus    `json:"vote_status,omitempty"`
	Vote      *VoteResult    `json:"vote,omitempty"`
	Ended     *GameEnded     `json:"ended,omitempty"`
	Chat      *ChatMessage   `json:"chat,omitempty"`
	Message   string         `json:"message,omitempty"`
	Config    *RoomConfig    `json:"config,omitempty"`
}
