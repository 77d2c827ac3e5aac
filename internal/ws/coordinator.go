package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ttt-arcade/tictactoe-server/internal/dependencies/clock"
	"github.com/ttt-arcade/tictactoe-server/internal/model"
	"github.com/ttt-arcade/tictactoe-server/internal/services/matchmaking"
	"github.com/ttt-arcade/tictactoe-server/internal/services/report"
	"github.com/ttt-arcade/tictactoe-server/internal/services/session"
)

const (
	// DefaultRetireGrace is how long a finished session lingers so both
	// clients can receive the terminal broadcast before it is removed.
	DefaultRetireGrace = 3 * time.Second

	// DefaultSessionIdleTimeout bounds how long a playing session survives
	// with nobody moving. This is the resume window after a silent drop.
	DefaultSessionIdleTimeout = 30 * time.Minute

	// DefaultSweepInterval is how often queue and session sweeps run
	DefaultSweepInterval = time.Minute
)

// Coordinator maps connections to identities and routes every inbound
// event to the matching engine or the session controller. All mutating
// dispatches run under one lock: handlers never interleave, which is what
// keeps queue, rooms and sessions free of write races.
type Coordinator struct {
	mu sync.Mutex

	hub      *Hub
	engine   *matchmaking.Engine
	sessions *session.Controller
	reporter *report.Reporter
	clock    clock.Clock
	logger   *slog.Logger

	retireGrace        time.Duration
	sessionIdleTimeout time.Duration
}

// CoordinatorConfig holds tunables for the coordinator
type CoordinatorConfig struct {
	RetireGrace        time.Duration
	SessionIdleTimeout time.Duration
}

// DefaultCoordinatorConfig returns sensible defaults
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		RetireGrace:        DefaultRetireGrace,
		SessionIdleTimeout: DefaultSessionIdleTimeout,
	}
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(
	hub *Hub,
	engine *matchmaking.Engine,
	sessions *session.Controller,
	reporter *report.Reporter,
	clock clock.Clock,
	cfg CoordinatorConfig,
	logger *slog.Logger,
) *Coordinator {
	if cfg.RetireGrace <= 0 {
		cfg.RetireGrace = DefaultRetireGrace
	}
	if cfg.SessionIdleTimeout <= 0 {
		cfg.SessionIdleTimeout = DefaultSessionIdleTimeout
	}
	return &Coordinator{
		hub:                hub,
		engine:             engine,
		sessions:           sessions,
		reporter:           reporter,
		clock:              clock,
		logger:             logger.With(slog.String("component", "coordinator")),
		retireGrace:        cfg.RetireGrace,
		sessionIdleTimeout: cfg.SessionIdleTimeout,
	}
}

// Dispatch decodes and routes one inbound message. Payloads are decoded
// into their typed form and validated here, before any game logic sees
// them.
func (co *Coordinator) Dispatch(c *Client, msg Message) {
	co.mu.Lock()
	defer co.mu.Unlock()

	ctx := context.Background()

	switch msg.Type {
	case EventJoinQueue:
		var p JoinQueuePayload
		if !co.decode(c, msg.Payload, &p) {
			return
		}
		co.handleJoinQueue(ctx, c, p)

	case EventLeaveQueue:
		co.handleLeaveQueue(c)

	case EventCreateRoom:
		var p CreateRoomPayload
		if !co.decode(c, msg.Payload, &p) {
			return
		}
		co.handleCreateRoom(c, p)

	case EventJoinRoom:
		var p JoinRoomPayload
		if !co.decode(c, msg.Payload, &p) {
			return
		}
		co.handleJoinRoom(ctx, c, p)

	case EventPlayerMove:
		var p MovePayload
		if !co.decode(c, msg.Payload, &p) {
			return
		}
		co.handleMove(ctx, c, p)

	case EventResumeGame:
		var p ResumePayload
		if !co.decode(c, msg.Payload, &p) {
			return
		}
		co.handleResume(ctx, c, p)

	case EventLeaveRoom:
		var p LeaveRoomPayload
		if !co.decode(c, msg.Payload, &p) {
			return
		}
		co.hub.Leave(p.Room, c)

	default:
		c.Send(EventError, ErrorPayload{Message: "Unknown event type"})
	}
}

func (co *Coordinator) decode(c *Client, raw json.RawMessage, into any) bool {
	if len(raw) == 0 {
		c.Send(EventError, ErrorPayload{Message: "Missing event payload"})
		return false
	}
	if err := json.Unmarshal(raw, into); err != nil {
		c.Send(EventError, ErrorPayload{Message: "Malformed event payload"})
		return false
	}
	return true
}

func (co *Coordinator) handleJoinQueue(ctx context.Context, c *Client, p JoinQueuePayload) {
	identity := model.Identity{ID: p.PlayerID, Name: p.PlayerName}
	if !identity.Valid() {
		co.notifyError(c, model.ErrInvalidIdentity)
		return
	}
	co.hub.Bind(c, identity)

	matched, position, err := co.engine.Enqueue(ctx, identity)
	if err != nil {
		co.notifyError(c, err)
		return
	}

	if matched != nil {
		co.announceMatch(matched)
		return
	}

	c.Send(EventWaiting, WaitingPayload{
		Message:       "Waiting for opponent...",
		QueuePosition: position,
	})
}

func (co *Coordinator) handleLeaveQueue(c *Client) {
	if c.identity != nil {
		co.engine.Dequeue(c.identity.ID)
	}
	c.Send(EventQueueLeft, nil)
}

func (co *Coordinator) handleCreateRoom(c *Client, p CreateRoomPayload) {
	identity := model.Identity{ID: p.PlayerID, Name: p.PlayerName}
	if !identity.Valid() {
		co.notifyError(c, model.ErrInvalidIdentity)
		return
	}
	co.hub.Bind(c, identity)

	if err := co.engine.CreateRoom(p.RoomCode, identity); err != nil {
		co.notifyError(c, err)
		return
	}

	c.Send(EventRoomCreated, RoomCreatedPayload{RoomCode: p.RoomCode})
}

func (co *Coordinator) handleJoinRoom(ctx context.Context, c *Client, p JoinRoomPayload) {
	identity := model.Identity{ID: p.PlayerID, Name: p.PlayerName}
	if !identity.Valid() {
		co.notifyError(c, model.ErrInvalidIdentity)
		return
	}
	co.hub.Bind(c, identity)

	result, err := co.engine.JoinRoom(ctx, p.RoomCode, identity)
	if err != nil {
		co.notifyError(c, err)
		return
	}

	c.Send(EventRoomJoined, RoomJoinedPayload{RoomCode: p.RoomCode})

	joined := PlayerJoinedPayload{PlayerID: identity.ID, PlayerName: identity.Name}
	for _, occupant := range result.Room.Players {
		if occupant.ID == identity.ID {
			continue
		}
		if cl := co.hub.ClientFor(occupant.ID); cl != nil {
			cl.Send(EventPlayerJoined, joined)
		}
	}

	if result.Session != nil {
		co.announceMatch(result.Session)
	}
}

// announceMatch subscribes both participants' connections to the session
// group and sends each their personalized match notice.
func (co *Coordinator) announceMatch(s *model.Session) {
	for _, p := range s.Participants {
		cl := co.hub.ClientFor(p.ID)
		if cl == nil {
			// Dropped between eligibility check and pairing; the session
			// stays resumable until the idle sweep collects it.
			co.logger.Warn("matched player has no live connection",
				slog.String("player_id", string(p.ID)),
				slog.String("session_id", string(s.ID)),
			)
			continue
		}
		co.hub.Join(s.ID, cl)
		cl.Send(EventMatchFound, MatchFoundPayload{
			Room:        s.ID,
			Players:     s.Participants[:],
			YourSymbol:  p.Symbol,
			CurrentTurn: s.Turn,
		})
	}
}

func (co *Coordinator) handleMove(ctx context.Context, c *Client, p MovePayload) {
	if c.identity == nil {
		co.notifyError(c, model.ErrInvalidIdentity)
		return
	}

	result, err := co.sessions.ApplyMove(ctx, p.Room, c.identity.ID, p.Index, p.Symbol)
	if err != nil {
		co.notifyError(c, err)
		return
	}

	if !result.Terminal {
		co.hub.Broadcast(p.Room, EventOpponentMove, OpponentMovePayload{
			Index:         result.Cell,
			Symbol:        result.Mover.Symbol,
			Board:         result.Session.Board,
			NextTurn:      result.NextTurn,
			CurrentPlayer: result.Mover.ID,
		})
		return
	}

	co.hub.Broadcast(p.Room, EventGameOver, GameOverPayload{
		Winner:      result.Winner,
		Board:       result.Session.Board,
		WinningLine: result.WinningLine,
	})

	// Reporting is fire-and-forget; the retire timer gives both clients
	// time to receive the broadcast before the session disappears.
	record := report.RecordFromSession(result.Session, co.clock.Now())
	go co.reporter.Report(context.Background(), record)

	co.sessions.RetireAfter(p.Room, co.retireGrace)
	sid := p.Room
	time.AfterFunc(co.retireGrace, func() {
		co.hub.CloseGroup(sid)
	})
}

func (co *Coordinator) handleResume(ctx context.Context, c *Client, p ResumePayload) {
	if p.PlayerID == "" {
		c.Send(EventResumeFail, ResumeFailPayload{Message: "No active game found"})
		return
	}

	s, err := co.sessions.FindActive(ctx, p.PlayerID)
	if err != nil {
		c.Send(EventResumeFail, ResumeFailPayload{Message: "No active game found"})
		return
	}

	participant := s.ParticipantByID(p.PlayerID)
	co.hub.Bind(c, participant.Identity)
	co.hub.Join(s.ID, c)

	c.Send(EventResumeSuccess, ResumeSuccessPayload{
		Session:     s,
		YourSymbol:  participant.Symbol,
		CurrentTurn: s.Turn,
	})

	co.logger.Info("session resumed",
		slog.String("player_id", string(p.PlayerID)),
		slog.String("session_id", string(s.ID)),
	)
}

// OnDisconnect handles a connection closing for any reason. Cleanup only
// runs if the identity has no other live connection: a resumed player's
// old socket dying must not tear down their session.
func (co *Coordinator) OnDisconnect(c *Client) {
	co.mu.Lock()
	defer co.mu.Unlock()

	co.hub.Unregister(c)

	co.logger.Debug("connection closed",
		slog.Duration("connected_for", co.clock.Now().Sub(c.connectedAt)),
	)

	if c.identity == nil {
		return
	}
	id := c.identity.ID
	if co.hub.IsConnected(id) {
		return
	}

	co.engine.DropPlayer(id)

	ctx := context.Background()
	s, err := co.sessions.FindActive(ctx, id)
	if err != nil {
		return
	}

	if opponent := s.Opponent(id); opponent != nil {
		if cl := co.hub.ClientFor(opponent.ID); cl != nil {
			cl.Send(EventOpponentDisconnected, OpponentDisconnectedPayload{
				Message: c.identity.Name + " disconnected",
				Player:  c.identity.Name,
			})
		}
	}

	// Abandoned mid-game: retire without scoring
	_ = co.sessions.Abandon(ctx, s.ID)
	co.hub.CloseGroup(s.ID)
}

// StartSweeper runs the periodic queue and stale-session sweeps until the
// context is cancelled.
func (co *Coordinator) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				co.sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (co *Coordinator) sweep(ctx context.Context) {
	co.mu.Lock()
	defer co.mu.Unlock()

	for _, entry := range co.engine.SweepQueue() {
		if cl := co.hub.ClientFor(entry.ID); cl != nil {
			cl.Send(EventQueueTimeout, nil)
		}
	}

	removed, err := co.sessions.SweepStale(ctx, co.sessionIdleTimeout)
	if err != nil {
		co.logger.Warn("session sweep failed", slog.String("error", err.Error()))
		return
	}
	for _, s := range removed {
		co.hub.CloseGroup(s.ID)
	}
}

// notifyError maps an error to the user-facing message sent back to the
// offending caller. Unknown errors are masked.
func (co *Coordinator) notifyError(c *Client, err error) {
	c.Send(EventError, ErrorPayload{Message: errorMessage(err)})
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidIdentity):
		return "Player ID and name are required"
	case errors.Is(err, model.ErrInvalidRoomCode):
		return "Invalid room code"
	case errors.Is(err, model.ErrRoomCodeConflict):
		return "Room code already exists"
	case errors.Is(err, model.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, model.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, model.ErrDuplicateJoin):
		return "You are already in this room"
	case errors.Is(err, model.ErrSessionNotFound), errors.Is(err, model.ErrSessionNotPlaying):
		return "Game not found or ended"
	case errors.Is(err, model.ErrOutOfTurn):
		return "Not your turn"
	case errors.Is(err, model.ErrInvalidCell):
		return "Invalid cell"
	case errors.Is(err, model.ErrCellOccupied):
		return "Cell already taken"
	case errors.Is(err, model.ErrSymbolMismatch):
		return "Symbol does not match your assignment"
	default:
		return "Internal server error"
	}
}
