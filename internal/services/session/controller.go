package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ttt-arcade/tictactoe-server/internal/dependencies/clock"
	"github.com/ttt-arcade/tictactoe-server/internal/dependencies/random"
	"github.com/ttt-arcade/tictactoe-server/internal/model"
	"github.com/ttt-arcade/tictactoe-server/internal/storage"
)

// Controller owns session lifecycle and move arbitration. All mutation of
// a session's board and turn state goes through here.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "session")),
	}
}

// Create pairs two identities into a new playing session. Symbols are
// assigned by coin flip and the X holder moves first, regardless of which
// identity initiated the pairing.
func (c *Controller) Create(ctx context.Context, first, second model.Identity, origin model.SessionOrigin) (*model.Session, error) {
	now := c.clock.Now()

	prefix := "room_"
	if origin == model.OriginPrivate {
		prefix = "private_"
	}
	id := model.SessionID(prefix + uuid.NewString())

	symbols := [2]model.Symbol{model.SymbolX, model.SymbolO}
	flip := c.random.Intn(2)

	session := &model.Session{
		ID: id,
		Participants: [2]model.Participant{
			{Identity: first, Symbol: symbols[flip]},
			{Identity: second, Symbol: symbols[1-flip]},
		},
		Status:    model.SessionPlaying,
		Origin:    origin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, p := range session.Participants {
		if p.Symbol == model.SymbolX {
			session.Turn = p.ID
		}
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(id)),
		slog.String("origin", string(origin)),
		slog.String("player1", string(first.ID)),
		slog.String("player2", string(second.ID)),
		slog.String("first_turn", string(session.Turn)),
	)

	return session, nil
}

// Get retrieves a session by ID
func (c *Controller) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// MoveResult describes the outcome of a successfully applied move
type MoveResult struct {
	Session     *model.Session
	Mover       model.Participant
	Cell        int
	Terminal    bool
	Draw        bool
	Winner      *model.Participant
	WinningLine []int
	NextTurn    model.PlayerID
}

// ApplyMove validates and applies a move for the acting player. The claimed
// symbol must match the player's assignment; a client cannot place marks it
// was not dealt. On a non-terminal move the turn flips to the opponent.
func (c *Controller) ApplyMove(ctx context.Context, id model.SessionID, playerID model.PlayerID, cell int, claimed model.Symbol) (*MoveResult, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status != model.SessionPlaying {
		return nil, model.ErrSessionNotPlaying
	}
	if session.Turn != playerID {
		return nil, model.ErrOutOfTurn
	}
	if !model.ValidCell(cell) {
		return nil, model.ErrInvalidCell
	}
	if session.Board[cell] != "" {
		return nil, model.ErrCellOccupied
	}

	mover := session.ParticipantByID(playerID)
	if claimed != mover.Symbol {
		return nil, model.ErrSymbolMismatch
	}

	session.Board[cell] = mover.Symbol
	session.UpdatedAt = c.clock.Now()

	result := &MoveResult{
		Session: session,
		Mover:   *mover,
		Cell:    cell,
	}

	if _, line, won := session.Board.Winner(); won {
		// Only the mover's line can have been completed by this move
		winner := mover
		session.Status = model.SessionWon
		session.Winner = winner
		session.WinningLine = line
		result.Terminal = true
		result.Winner = winner
		result.WinningLine = line
	} else if session.Board.IsFull() {
		session.Status = model.SessionDraw
		result.Terminal = true
		result.Draw = true
	} else {
		session.Turn = session.Opponent(playerID).ID
		result.NextTurn = session.Turn
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	if result.Terminal {
		c.logger.Info("session ended",
			slog.String("session_id", string(id)),
			slog.String("status", string(session.Status)),
		)
	}

	return result, nil
}

// FindActive returns the playing session the player belongs to, for resume.
// Terminal sessions do not count; there is nothing left to rejoin.
func (c *Controller) FindActive(ctx context.Context, playerID model.PlayerID) (*model.Session, error) {
	session, err := c.storage.FindSessionByPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, model.ErrNoActiveSession
		}
		return nil, err
	}
	if session.Status != model.SessionPlaying {
		return nil, model.ErrNoActiveSession
	}
	return session, nil
}

// Abandon removes a session without reporting a result. Used when a
// participant permanently disconnects mid-game; abandoned sessions are
// not scored.
func (c *Controller) Abandon(ctx context.Context, id model.SessionID) error {
	c.logger.Info("session abandoned", slog.String("session_id", string(id)))
	return c.storage.DeleteSession(ctx, id)
}

// RetireAfter removes a terminal session once the grace delay has passed,
// leaving both clients time to receive the final broadcast.
func (c *Controller) RetireAfter(id model.SessionID, grace time.Duration) {
	time.AfterFunc(grace, func() {
		if err := c.storage.DeleteSession(context.Background(), id); err != nil {
			c.logger.Warn("failed to retire session",
				slog.String("session_id", string(id)),
				slog.String("error", err.Error()),
			)
		}
	})
}

// SweepStale removes playing sessions idle for longer than maxIdle. A
// session survives its connections so players can resume, but nothing in
// the protocol guarantees they ever come back; without this the registry
// grows forever. Returns the sessions that were removed.
func (c *Controller) SweepStale(ctx context.Context, maxIdle time.Duration) ([]*model.Session, error) {
	sessions, err := c.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	var removed []*model.Session
	for _, s := range sessions {
		if s.Status == model.SessionPlaying && now.Sub(s.UpdatedAt) > maxIdle {
			if err := c.storage.DeleteSession(ctx, s.ID); err != nil {
				c.logger.Warn("failed to sweep stale session",
					slog.String("session_id", string(s.ID)),
					slog.String("error", err.Error()),
				)
				continue
			}
			removed = append(removed, s)
		}
	}

	if len(removed) > 0 {
		c.logger.Info("stale sessions swept", slog.Int("removed", len(removed)))
	}

	return removed, nil
}
