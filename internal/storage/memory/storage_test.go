package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ttt-arcade/tictactoe-server/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) makeSession(id model.SessionID, p1, p2 model.PlayerID) *model.Session {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.Session{
		ID: id,
		Participants: [2]model.Participant{
			{Identity: model.Identity{ID: p1, Name: "One"}, Symbol: model.SymbolX},
			{Identity: model.Identity{ID: p2, Name: "Two"}, Symbol: model.SymbolO},
		},
		Turn:      p1,
		Status:    model.SessionPlaying,
		Origin:    model.OriginQuick,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *StorageSuite) TestSaveAndGetSession() {
	sess := s.makeSession("room_1", "player-a", "player-b")
	s.Require().NoError(s.storage.SaveSession(s.ctx, sess))

	got, err := s.storage.GetSession(s.ctx, "room_1")
	s.Require().NoError(err)
	s.Equal(sess.ID, got.ID)
	s.Equal(model.SymbolX, got.Participants[0].Symbol)
}

func (s *StorageSuite) TestGetMissingSession() {
	_, err := s.storage.GetSession(s.ctx, "room_missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestFindSessionByPlayer() {
	sess := s.makeSession("room_1", "player-a", "player-b")
	s.Require().NoError(s.storage.SaveSession(s.ctx, sess))

	got, err := s.storage.FindSessionByPlayer(s.ctx, "player-b")
	s.Require().NoError(err)
	s.Equal(sess.ID, got.ID)

	_, err = s.storage.FindSessionByPlayer(s.ctx, "player-c")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSessionClearsIndex() {
	sess := s.makeSession("room_1", "player-a", "player-b")
	s.Require().NoError(s.storage.SaveSession(s.ctx, sess))
	s.Require().NoError(s.storage.DeleteSession(s.ctx, "room_1"))

	_, err := s.storage.GetSession(s.ctx, "room_1")
	s.ErrorIs(err, model.ErrSessionNotFound)

	_, err = s.storage.FindSessionByPlayer(s.ctx, "player-a")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteMissingSessionIsNoop() {
	s.NoError(s.storage.DeleteSession(s.ctx, "room_missing"))
}

func (s *StorageSuite) TestDeleteKeepsNewerPlayerIndex() {
	old := s.makeSession("room_old", "player-a", "player-b")
	s.Require().NoError(s.storage.SaveSession(s.ctx, old))

	// Player a has moved on to a newer session
	newer := s.makeSession("room_new", "player-a", "player-c")
	s.Require().NoError(s.storage.SaveSession(s.ctx, newer))

	s.Require().NoError(s.storage.DeleteSession(s.ctx, "room_old"))

	got, err := s.storage.FindSessionByPlayer(s.ctx, "player-a")
	s.Require().NoError(err)
	s.Equal(model.SessionID("room_new"), got.ID)
}

func (s *StorageSuite) TestListSessions() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.makeSession("room_1", "player-a", "player-b")))
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.makeSession("room_2", "player-c", "player-d")))

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Len(sessions, 2)
}
