package storage

import (
	"context"

	"github.com/ttt-arcade/tictactoe-server/internal/model"
)

// Storage defines the interface for the active-session registry.
// Queue entries and pending rooms are owned in-memory by the matching
// engine; only sessions go through here, so a Redis backend can share
// them across restarts and serve resume lookups.
type Storage interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error

	// FindSessionByPlayer returns the session the player participates in,
	// or model.ErrSessionNotFound. A player is in at most one session.
	FindSessionByPlayer(ctx context.Context, id model.PlayerID) (*model.Session, error)

	// ListSessions returns all active sessions, for sweep passes
	ListSessions(ctx context.Context) ([]*model.Session, error)
}
