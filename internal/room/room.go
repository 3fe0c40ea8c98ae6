package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pompamc/vampire-village/internal/game"
	"github.com/pompamc/vampire-village/internal/types"
)

const interludeSeconds = 3

type Msg interface{ isRoomMsg() }

type Join struct {
	ID     string
	Name   string
	Outbox chan types.ServerMessage
	Reply  chan error
}

type Leave struct{ ID string }

type StartGame struct {
	ID    string
	Reply chan error
}

type NightAction struct {
	ID     string
	Action game.NightAction
	Reply  chan error
}

type CastVote struct {
	ID       string
	TargetID string
	Reply    chan error
}

type Chat struct {
	ID    string
	Text  string
	Reply chan error
}

// GetState reflects internal state without data races; used by tests.
type GetState struct{ Reply chan View }

type Shutdown struct{}

type summaryReq struct{ reply chan *types.RoomSummary }

type timerTick struct {
	gen       int
	remaining int
	total     int
	quiet     bool
}

func (Join) isRoomMsg()        {}
func (Leave) isRoomMsg()       {}
func (StartGame) isRoomMsg()   {}
func (NightAction) isRoomMsg() {}
func (CastVote) isRoomMsg()    {}
func (Chat) isRoomMsg()        {}
func (GetState) isRoomMsg()    {}
func (Shutdown) isRoomMsg()    {}
func (summaryReq) isRoomMsg()  {}
func (timerTick) isRoomMsg()   {}

type View struct {
	NumClients int
	State      *game.Room
}

// Room is the actor owning one session. All mutation of its game state
// happens on the single loop goroutine; only one phase timer is ever
// armed, and stale fires are dropped by generation.
type Room struct {
	inbox      chan Msg
	state      *game.Room
	clients    map[string]chan types.ServerMessage
	timerGen   int
	awaitNight bool
	onEmpty    func()
	ctx        context.Context
	cancel     context.CancelFunc
	log        *zap.Logger
}

// New starts the actor for a freshly created room. The host is already the
// sole member of st; its outbox is registered here so the host receives
// the initial roster snapshot.
func New(parent context.Context, st *game.Room, hostOutbox chan types.ServerMessage, log *zap.Logger, onEmpty func()) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:   make(chan Msg, 64),
		state:   st,
		clients: map[string]chan types.ServerMessage{st.HostID: hostOutbox},
		onEmpty: onEmpty,
		ctx:     ctx,
		cancel:  cancel,
		log:     log.Named("room").With(zap.String("code", st.Code)),
	}
	select {
	case hostOutbox <- types.ServerMessage{Type: "room_updated", Room: r.roomUpdate()}:
	default:
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Do delivers a message unless the room has already shut down. A true
// return means the message was queued, not that it will be processed:
// the room can shut down with messages still in the inbox, so anyone
// waiting on a reply must also watch Done.
func (r *Room) Do(m Msg) bool {
	select {
	case r.inbox <- m:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// Done is closed when the room has shut down.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// Summary answers the open-room listing; nil once the game has started or
// the room is gone.
func (r *Room) Summary() *types.RoomSummary {
	reply := make(chan *types.RoomSummary, 1)
	if !r.Do(summaryReq{reply: reply}) {
		return nil
	}
	select {
	case s := <-reply:
		return s
	case <-r.ctx.Done():
		return nil
	}
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				err := r.state.Join(msg.ID, msg.Name)
				if err == nil {
					r.clients[msg.ID] = msg.Outbox
					r.broadcast(types.ServerMessage{Type: "room_updated", Room: r.roomUpdate()})
					r.log.Info("player joined", zap.String("name", msg.Name))
				}
				msg.Reply <- err

			case Leave:
				r.handleLeave(msg.ID)

			case StartGame:
				msg.Reply <- r.handleStart(msg.ID)

			case NightAction:
				events, err := r.state.SubmitNightAction(msg.ID, msg.Action)
				msg.Reply <- err
				if err == nil {
					r.emitEvents(events)
				}

			case CastVote:
				// Votes are only tallied when the voting timer expires;
				// until then a member may change their vote freely.
				err := r.state.CastVote(msg.ID, msg.TargetID)
				msg.Reply <- err
				if err == nil {
					r.broadcast(types.ServerMessage{Type: "vote_status", VoteState: r.voteStatus()})
				}

			case Chat:
				chat, err := r.state.AppendChat(msg.ID, msg.Text)
				msg.Reply <- err
				if err == nil {
					r.deliverChat(chat)
				}

			case GetState:
				msg.Reply <- View{NumClients: len(r.clients), State: r.state.Clone()}

			case summaryReq:
				msg.reply <- r.summary()

			case timerTick:
				if msg.gen != r.timerGen {
					break // stale fire from a replaced timer
				}
				if !msg.quiet {
					r.broadcast(types.ServerMessage{Type: "timer_update", Timer: &types.TimerUpdate{
						Remaining: msg.remaining,
						Total:     msg.total,
					}})
				}
				if msg.remaining <= 0 {
					r.timerExpired()
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleLeave(id string) {
	_, wasMember := r.state.Players[id]
	if !wasMember {
		return
	}
	delete(r.clients, id)
	_, empty := r.state.Leave(id)
	if empty {
		r.log.Info("room empty, closing")
		if r.onEmpty != nil {
			r.onEmpty()
		}
		r.shutdown()
		return
	}
	r.broadcast(types.ServerMessage{Type: "room_updated", Room: r.roomUpdate()})
	if r.state.Phase != game.PhaseLobby && r.state.Phase != game.PhaseEnded {
		// Leaving is forfeiture, not death: no cascade runs, but the
		// departure can still decide the game.
		r.broadcast(types.ServerMessage{Type: "game_state", Game: r.gameState()})
		if w := r.state.EvaluateWin(); w != game.WinnerNone {
			r.endGame(w)
		}
	}
}

func (r *Room) handleStart(id string) error {
	if _, ok := r.state.Players[id]; !ok {
		return game.ErrNotInRoom
	}
	if id != r.state.HostID {
		return game.ErrNotHost
	}
	if r.state.Phase != game.PhaseLobby {
		return game.ErrGameAlreadyStarted
	}
	if err := r.state.AssignRoles(); err != nil {
		return err
	}
	r.state.Phase = game.PhaseRoleReveal
	r.state.Round = 1
	r.log.Info("game started", zap.Int("players", len(r.state.Players)))

	for id, p := range r.state.Players {
		msg := types.ServerMessage{Type: "role_assigned", Role: roleInfo(p.Role)}
		if p.Role.IsVampire() {
			msg.Teammates = r.state.VampireRoster(id)
		}
		r.sendTo(id, msg)
	}
	r.broadcast(types.ServerMessage{Type: "game_state", Game: r.gameState()})
	r.armTimer(r.state.Config.RoleRevealSec, false)
	return nil
}

func (r *Room) timerExpired() {
	switch r.state.Phase {
	case game.PhaseRoleReveal:
		r.startNight()
	case game.PhaseNight:
		r.resolveNight()
	case game.PhaseDay:
		r.startVoting()
	case game.PhaseVoting:
		if r.awaitNight {
			r.awaitNight = false
			r.startNight()
		} else {
			r.resolveVotes()
		}
	}
}

func (r *Room) startNight() {
	r.state.Phase = game.PhaseNight
	r.state.ResetNight()
	r.broadcast(types.ServerMessage{Type: "game_state", Game: r.gameState()})
	r.armTimer(r.state.Config.NightSec, false)
}

func (r *Room) resolveNight() {
	out := r.state.ResolveNight()
	r.emitEvents(out.Events)

	result := &types.NightResult{Saved: out.Saved, MultipleDeaths: len(out.Deaths) > 1}
	for _, d := range out.Deaths {
		result.Killed = append(result.Killed, types.NightDeath{ID: d.ID, Name: d.Name, Reason: string(d.Reason)})
	}
	r.broadcast(types.ServerMessage{Type: "night_result", Night: result})

	if w := r.state.EvaluateWin(); w != game.WinnerNone {
		r.endGame(w)
		return
	}
	r.startDay()
}

func (r *Room) startDay() {
	r.state.Phase = game.PhaseDay
	r.broadcast(types.ServerMessage{Type: "game_state", Game: r.gameState()})
	r.armTimer(r.state.Config.DaySec, false)
}

func (r *Room) startVoting() {
	r.state.Phase = game.PhaseVoting
	r.state.ResetVotes()
	r.broadcast(types.ServerMessage{Type: "game_state", Game: r.gameState()})
	r.armTimer(r.state.Config.VotingSec, false)
}

func (r *Room) resolveVotes() {
	out := r.state.ResolveVotes()
	r.emitEvents(out.Events)

	result := &types.VoteResult{Tie: out.Tie, JesterWin: out.JesterWin}
	if out.Eliminated != nil {
		result.Eliminated = &types.EliminatedPlayer{
			ID:        out.Eliminated.ID,
			Name:      out.Eliminated.Name,
			Role:      string(out.Eliminated.Role),
			VoteCount: out.Eliminated.VoteCount,
		}
	}
	r.broadcast(types.ServerMessage{Type: "vote_result", Vote: result})

	if out.JesterWin {
		r.endGame(game.WinnerJester)
		return
	}
	if w := r.state.EvaluateWin(); w != game.WinnerNone {
		r.endGame(w)
		return
	}
	r.state.Round++
	r.awaitNight = true
	r.armTimer(interludeSeconds, true)
}

func (r *Room) endGame(w game.Winner) {
	r.state.Phase = game.PhaseEnded
	r.timerGen++ // orphan any outstanding timer
	ended := &types.GameEnded{Winner: string(w)}
	for _, p := range r.sortedPlayers() {
		ended.Players = append(ended.Players, types.RevealedPlayer{
			ID:    p.ID,
			Name:  p.Name,
			Role:  string(p.Role),
			Alive: p.Alive,
		})
	}
	r.broadcast(types.ServerMessage{Type: "game_ended", Ended: ended})
	r.log.Info("game ended", zap.String("winner", string(w)))
}

// armTimer replaces the room's timer. The goroutine feeds per-second
// ticks back into the inbox; a generation mismatch on receipt means the
// timer was replaced and the fire is ignored.
func (r *Room) armTimer(seconds int, quiet bool) {
	r.timerGen++
	gen := r.timerGen
	go func() {
		remaining := seconds
		if !r.deliverTick(gen, remaining, seconds, quiet) {
			return
		}
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for remaining > 0 {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				remaining--
				if !r.deliverTick(gen, remaining, seconds, quiet) {
					return
				}
			}
		}
	}()
}

func (r *Room) deliverTick(gen, remaining, total int, quiet bool) bool {
	select {
	case r.inbox <- timerTick{gen: gen, remaining: remaining, total: total, quiet: quiet}:
		return true
	case <-r.ctx.Done():
		return false
	}
}

func (r *Room) emitEvents(events []game.Event) {
	for _, e := range events {
		msg, ok := eventMessage(e)
		if !ok {
			continue
		}
		if e.To != "" {
			r.sendTo(e.To, msg)
		} else {
			r.broadcast(msg)
		}
	}
}

func (r *Room) deliverChat(chat game.ChatMessage) {
	msg := types.ServerMessage{Type: "chat_message", Chat: &types.ChatMessage{
		SenderID:   chat.SenderID,
		SenderName: chat.SenderName,
		Text:       chat.Text,
		Audience:   string(chat.Audience),
		SentAt:     chat.SentAt.UnixMilli(),
	}}
	for id, p := range r.state.Players {
		if chat.VisibleTo(p) {
			r.sendTo(id, msg)
		}
	}
}

// Outbox channels are shared with the session boundary, which also sends
// acks on them, so the room never closes one. Dropping a client just
// forgets the reference; the session's writer dies with its connection.
func (r *Room) broadcast(msg types.ServerMessage) {
	for id, ch := range r.clients {
		select {
		case ch <- msg:
		default:
			// Slow or wedged client: drop it.
			delete(r.clients, id)
		}
	}
}

func (r *Room) sendTo(id string, msg types.ServerMessage) {
	ch, ok := r.clients[id]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		delete(r.clients, id)
	}
}

func (r *Room) shutdown() {
	clear(r.clients)
	r.cancel()
}
