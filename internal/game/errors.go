package game

import "errors"

// Caller-facing rejections. All of these are recoverable and returned
// synchronously; none terminate the room.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrRoomFull           = errors.New("room is full")
	ErrNameTaken          = errors.New("that name is already taken")
	ErrInvalidName        = errors.New("name must be at least 2 characters")
	ErrNotEnoughPlayers   = errors.New("at least 4 players are required")
	ErrNotHost            = errors.New("only the host can do that")
	ErrNotInRoom          = errors.New("you are not in a room")
	ErrInvalidPhase       = errors.New("action not valid in the current phase")
	ErrNotAlive           = errors.New("dead players cannot act")
	ErrWrongRole          = errors.New("your role cannot perform that action")
	ErrInvalidTarget      = errors.New("invalid target")
	ErrEmptyMessage       = errors.New("message cannot be empty")
)
