package game

type EventType string

const (
	EvtInspectResult EventType = "InspectResult"
	EvtGraveLocked   EventType = "GraveLocked"
	EvtTransformed   EventType = "Transformed"
	EvtVampireRoster EventType = "VampireRoster"
	EvtEscortEscaped EventType = "EscortEscaped"
	EvtRevival       EventType = "Revival"
	EvtRetaliation   EventType = "Retaliation"
)

// Event is a side notice produced by intake or resolution. To narrows
// delivery to a single member; empty To means the whole room.
type Event struct {
	Type       EventType
	To         string
	TargetID   string
	TargetName string
	ActorName  string
	Role       Role
	IsVampire  bool
	Teammates  []string
}
