package memory

import (
	"context"
	"sync"

	"github.com/ttt-arcade/tictactoe-server/internal/model"
	"github.com/ttt-arcade/tictactoe-server/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions map[model.SessionID]*model.Session
	byPlayer map[model.PlayerID]model.SessionID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions: make(map[model.SessionID]*model.Session),
		byPlayer: make(map[model.PlayerID]model.SessionID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	for _, p := range session.Participants {
		s.byPlayer[p.ID] = session.ID
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil
	}
	for _, p := range session.Participants {
		// Only drop the index entry if it still points at this session;
		// the player may already be in a newer one.
		if s.byPlayer[p.ID] == id {
			delete(s.byPlayer, p.ID)
		}
	}
	delete(s.sessions, id)
	return nil
}

func (s *Storage) FindSessionByPlayer(ctx context.Context, id model.PlayerID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sid, ok := s.byPlayer[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	session, ok := s.sessions[sid]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions, nil
}
