package hub

import (
	"context"
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/pompamc/vampire-village/internal/game"
	"github.com/pompamc/vampire-village/internal/room"
	"github.com/pompamc/vampire-village/internal/types"
)

// Ambiguous characters (I, O, 0, 1) are left out of room codes.
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const codeLength = 6

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	HostID   string
	HostName string
	Config   game.Config
	Outbox   chan types.ServerMessage
	Reply    chan CreateResult
}

type CreateResult struct {
	Room *room.Room
	Code string
	Err  error
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct{ Code string }

type ListOpen struct {
	Reply chan []types.RoomSummary
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ListOpen) isHubMsg()    {}
func (ShutdownHub) isHubMsg() {}

// Hub is the actor owning the set of active rooms, keyed by code. Room
// lifecycle (create, destroy-on-empty) is its sole responsibility.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  map[string]*room.Room{},
		ctx:    ctx,
		cancel: cancel,
		log:    log.Named("hub"),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				code, err := h.uniqueCode()
				if err != nil {
					msg.Reply <- CreateResult{Err: err}
					break
				}
				rng := rand.New(rand.NewSource(time.Now().UnixNano()))
				st := game.NewRoom(code, msg.HostID, msg.HostName, msg.Config.Clamped(), rng)
				rm := room.New(h.ctx, st, msg.Outbox, h.log, func() {
					// Runs on the room's loop; hand the removal back
					// asynchronously so neither actor blocks the other.
					go func() { h.inbox <- RemoveRoom{Code: code} }()
				})
				h.rooms[code] = rm
				h.log.Info("room created", zap.String("code", code), zap.String("host", msg.HostName))
				msg.Reply <- CreateResult{Room: rm, Code: code}

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case RemoveRoom:
				delete(h.rooms, msg.Code)
				h.log.Info("room removed", zap.String("code", msg.Code))

			case ListOpen:
				var open []types.RoomSummary
				for _, rm := range h.rooms {
					if s := rm.Summary(); s != nil {
						open = append(open, *s)
					}
				}
				msg.Reply <- open

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Do(room.Shutdown{})
				}
				clear(h.rooms)
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) uniqueCode() (string, error) {
	for {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		if _, taken := h.rooms[code]; !taken {
			return code, nil
		}
	}
}

func generateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[n.Int64()]
	}
	return string(code), nil
}

// Get is a convenience wrapper around the GetRoom message.
func (h *Hub) Get(code string) *room.Room {
	reply := make(chan *room.Room, 1)
	select {
	case h.inbox <- GetRoom{Code: code, Reply: reply}:
	case <-h.ctx.Done():
		return nil
	}
	select {
	case rm := <-reply:
		return rm
	case <-h.ctx.Done():
		return nil
	}
}

// OpenRooms is a convenience wrapper around the ListOpen message.
func (h *Hub) OpenRooms() []types.RoomSummary {
	reply := make(chan []types.RoomSummary, 1)
	select {
	case h.inbox <- ListOpen{Reply: reply}:
	case <-h.ctx.Done():
		return nil
	}
	select {
	case rooms := <-reply:
		return rooms
	case <-h.ctx.Done():
		return nil
	}
}
