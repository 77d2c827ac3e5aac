package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/ttt-arcade/tictactoe-server/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) makeSession(id model.SessionID, p1, p2 model.PlayerID) *model.Session {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := &model.Session{
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
	sess.Board[4] = model.SymbolX
	return sess
}

func (s *StorageSuite) TestSaveAndGetSession() {
	sess := s.makeSession("room_1", "player-a", "player-b")
	s.Require().NoError(s.storage.SaveSession(s.ctx, sess))

	got, err := s.storage.GetSession(s.ctx, "room_1")
	s.Require().NoError(err)
	s.Equal(sess.ID, got.ID)
	s.Equal(model.SymbolX, got.Board[4])
	s.Equal(model.Symbol(""), got.Board[0])
	s.Equal(sess.Turn, got.Turn)
}

func (s *StorageSuite) TestGetMissingSession() {
	_, err := s.storage.GetSession(s.ctx, "room_missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestSessionKeysCarryTTL() {
	sess := s.makeSession("room_1", "player-a", "player-b")
	s.Require().NoError(s.storage.SaveSession(s.ctx, sess))

	s.Greater(s.mini.TTL(sessionKey("room_1")), time.Duration(0))
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

func (s *StorageSuite) TestDeleteSession() {
	sess := s.makeSession("room_1", "player-a", "player-b")
	s.Require().NoError(s.storage.SaveSession(s.ctx, sess))
	s.Require().NoError(s.storage.DeleteSession(s.ctx, "room_1"))

	_, err := s.storage.GetSession(s.ctx, "room_1")
	s.ErrorIs(err, model.ErrSessionNotFound)

	_, err = s.storage.FindSessionByPlayer(s.ctx, "player-a")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteKeepsNewerPlayerIndex() {
	old := s.makeSession("room_old", "player-a", "player-b")
	s.Require().NoError(s.storage.SaveSession(s.ctx, old))

	// Player a has moved on to a newer session before the retire timer
	// removed the finished one
	newer := s.makeSession("room_new", "player-a", "player-c")
	s.Require().NoError(s.storage.SaveSession(s.ctx, newer))

	s.Require().NoError(s.storage.DeleteSession(s.ctx, "room_old"))

	got, err := s.storage.FindSessionByPlayer(s.ctx, "player-a")
	s.Require().NoError(err)
	s.Equal(model.SessionID("room_new"), got.ID)

	_, err = s.storage.FindSessionByPlayer(s.ctx, "player-b")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteMissingSessionIsNoop() {
	s.NoError(s.storage.DeleteSession(s.ctx, "room_missing"))
}

func (s *StorageSuite) TestListSessions() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.makeSession("room_1", "player-a", "player-b")))
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.makeSession("room_2", "player-c", "player-d")))

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Len(sessions, 2)
}

func (s *StorageSuite) TestListSessionsCleansStaleIndexEntries() {
	sess := s.makeSession("room_1", "player-a", "player-b")
	s.Require().NoError(s.storage.SaveSession(s.ctx, sess))

	// Expire the value out from under the index
	s.mini.FastForward(2 * time.Hour)

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}
