package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pompamc/vampire-village/internal/game"
	"github.com/pompamc/vampire-village/internal/hub"
	"github.com/pompamc/vampire-village/internal/room"
	"github.com/pompamc/vampire-village/internal/types"
)

const writeTimeout = 3 * time.Second

// Presence counts open websocket sessions, for the online-count surface.
type Presence struct {
	n atomic.Int64
}

func (p *Presence) Count() int64 { return p.n.Load() }

// session is one connection's durable identity and room membership.
type session struct {
	id     string
	name   string
	room   *room.Room
	outbox chan types.ServerMessage
}

func Handler(h *hub.Hub, log *zap.Logger, presence *Presence) http.HandlerFunc {
	log = log.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		presence.n.Add(1)
		defer presence.n.Add(-1)

		s := &session{
			id:     uuid.NewString(),
			outbox: make(chan types.ServerMessage, 32),
		}

		// Writer goroutine: the outbox is the only path to the wire, so
		// acks and room broadcasts stay ordered. Both the session and the
		// room actor send on it, so nobody ever closes it; the writer
		// exits with the connection context.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case <-writeCtx.Done():
					return
				case msg := <-s.outbox:
					payload, err := json.Marshal(msg)
					if err != nil {
						continue
					}
					ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
					_ = conn.Write(ctx, websocket.MessageText, payload)
					cancel()
				}
			}
		}()

		defer func() {
			if s.room != nil {
				s.room.Do(room.Leave{ID: s.id})
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				s.push(types.ServerMessage{Type: "error", Error: "bad json"})
				continue
			}
			s.dispatch(h, log, cm)
		}
	}
}

// push delivers to the connection's own outbox; a full outbox means the
// writer is wedged and the frame is dropped, same policy the room applies.
func (s *session) push(msg types.ServerMessage) {
	select {
	case s.outbox <- msg:
	default:
	}
}

func (s *session) ack(op string, err error) {
	msg := types.ServerMessage{Type: "ack", Op: op, OK: err == nil}
	if err != nil {
		msg.Error = err.Error()
	}
	s.push(msg)
}

func (s *session) dispatch(h *hub.Hub, log *zap.Logger, cm types.ClientMessage) {
	switch cm.Type {
	case "set_name":
		name := strings.TrimSpace(cm.Name)
		if len([]rune(name)) < 2 {
			s.ack(cm.Type, game.ErrInvalidName)
			return
		}
		if runes := []rune(name); len(runes) > game.MaxNameRunes {
			name = string(runes[:game.MaxNameRunes])
		}
		s.name = name
		s.push(types.ServerMessage{Type: "ack", Op: cm.Type, OK: true, Message: name})

	case "create_room":
		if s.name == "" {
			s.ack(cm.Type, game.ErrInvalidName)
			return
		}
		if s.room != nil {
			s.room.Do(room.Leave{ID: s.id})
			s.room = nil
		}
		reply := make(chan hub.CreateResult, 1)
		h.Inbox() <- hub.CreateRoom{
			HostID:   s.id,
			HostName: s.name,
			Config:   gameConfig(cm.Config),
			Outbox:   s.outbox,
			Reply:    reply,
		}
		res := <-reply
		if res.Err != nil {
			s.ack(cm.Type, res.Err)
			return
		}
		s.room = res.Room
		s.push(types.ServerMessage{Type: "ack", Op: cm.Type, OK: true, RoomCode: res.Code})
		log.Info("room created", zap.String("code", res.Code), zap.String("name", s.name))

	case "join_room":
		if s.name == "" {
			s.ack(cm.Type, game.ErrInvalidName)
			return
		}
		rm := h.Get(strings.ToUpper(strings.TrimSpace(cm.RoomCode)))
		if rm == nil {
			s.ack(cm.Type, game.ErrRoomNotFound)
			return
		}
		if s.room != nil {
			s.room.Do(room.Leave{ID: s.id})
			s.room = nil
		}
		err := s.roundTrip(rm, func(reply chan error) room.Msg {
			return room.Join{ID: s.id, Name: s.name, Outbox: s.outbox, Reply: reply}
		})
		if err == nil {
			s.room = rm
			s.push(types.ServerMessage{Type: "ack", Op: cm.Type, OK: true, RoomCode: rm.Code()})
			return
		}
		s.ack(cm.Type, err)

	case "leave_room":
		if s.room == nil {
			s.ack(cm.Type, game.ErrNotInRoom)
			return
		}
		s.room.Do(room.Leave{ID: s.id})
		s.room = nil
		s.ack(cm.Type, nil)

	case "start_game":
		if s.room == nil {
			s.ack(cm.Type, game.ErrNotInRoom)
			return
		}
		s.ack(cm.Type, s.roundTrip(s.room, func(reply chan error) room.Msg {
			return room.StartGame{ID: s.id, Reply: reply}
		}))

	case "night_action":
		if s.room == nil {
			s.ack(cm.Type, game.ErrNotInRoom)
			return
		}
		action, err := parseNightAction(cm.ActionKind, cm.TargetID)
		if err != nil {
			s.ack(cm.Type, err)
			return
		}
		s.ack(cm.Type, s.roundTrip(s.room, func(reply chan error) room.Msg {
			return room.NightAction{ID: s.id, Action: action, Reply: reply}
		}))

	case "vote":
		if s.room == nil {
			s.ack(cm.Type, game.ErrNotInRoom)
			return
		}
		s.ack(cm.Type, s.roundTrip(s.room, func(reply chan error) room.Msg {
			return room.CastVote{ID: s.id, TargetID: cm.TargetID, Reply: reply}
		}))

	case "chat":
		if s.room == nil {
			s.ack(cm.Type, game.ErrNotInRoom)
			return
		}
		s.ack(cm.Type, s.roundTrip(s.room, func(reply chan error) room.Msg {
			return room.Chat{ID: s.id, Text: cm.Text, Reply: reply}
		}))

	case "list_rooms":
		s.push(types.ServerMessage{Type: "rooms", Rooms: h.OpenRooms()})

	default:
		s.push(types.ServerMessage{Type: "error", Error: "unknown type"})
	}
}

// roundTrip sends a request carrying a reply channel into the room actor
// and waits for the verdict. A room that shut down mid-flight reads as
// not found — including one that accepted the message but closed before
// processing it, which would otherwise leave the reader blocked forever.
func (s *session) roundTrip(rm *room.Room, build func(chan error) room.Msg) error {
	reply := make(chan error, 1)
	if !rm.Do(build(reply)) {
		s.room = nil
		return game.ErrRoomNotFound
	}
	select {
	case err := <-reply:
		return err
	case <-rm.Done():
		s.room = nil
		return game.ErrRoomNotFound
	}
}

func parseNightAction(kind, targetID string) (game.NightAction, error) {
	switch kind {
	case "vampire_kill":
		return game.KillVote{TargetID: targetID}, nil
	case "doctor_save":
		return game.Protect{TargetID: targetID}, nil
	case "seer_check":
		return game.Inspect{TargetID: targetID}, nil
	case "escort_visit":
		return game.Visit{TargetID: targetID}, nil // empty target = stay home
	case "grave_lock":
		return game.GraveLock{TargetID: targetID}, nil
	case "medium_revive":
		return game.Revive{TargetID: targetID}, nil
	case "avenger_mark":
		return game.Mark{TargetID: targetID}, nil
	default:
		return nil, game.ErrWrongRole
	}
}

func gameConfig(c *types.RoomConfig) game.Config {
	if c == nil {
		return game.Config{}
	}
	cfg := game.Config{
		RoomName:   c.RoomName,
		MaxPlayers: c.MaxPlayers,
		DaySec:     c.DaySec,
		VotingSec:  c.VotingSec,
	}
	if len(c.Roles) > 0 {
		cfg.Roles = map[game.Role]int{}
		for role, n := range c.Roles {
			cfg.Roles[game.Role(role)] = n
		}
	}
	return cfg
}
