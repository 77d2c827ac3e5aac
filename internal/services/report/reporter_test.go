package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ttt-arcade/tictactoe-server/internal/model"
	"github.com/ttt-arcade/tictactoe-server/internal/testutil"
)

type ReporterSuite struct {
	suite.Suite
}

func TestReporterSuite(t *testing.T) {
	suite.Run(t, new(ReporterSuite))
}

func (s *ReporterSuite) finishedSession() *model.Session {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := &model.Session{
		ID: "room_1",
		Participants: [2]model.Participant{
			{Identity: model.Identity{ID: "player-a", Name: "Alice"}, Symbol: model.SymbolX},
			{Identity: model.Identity{ID: "player-b", Name: "Bob"}, Symbol: model.SymbolO},
		},
		Status:    model.SessionWon,
		Origin:    model.OriginQuick,
		CreatedAt: start,
		UpdatedAt: start.Add(90 * time.Second),
	}
	sess.Winner = &sess.Participants[0]
	sess.WinningLine = []int{0, 1, 2}
	return sess
}

func (s *ReporterSuite) TestRecordFromWonSession() {
	sess := s.finishedSession()
	rec := RecordFromSession(sess, sess.CreatedAt.Add(90*time.Second))

	s.Equal("player-a", rec.Player1)
	s.Equal("player-b", rec.Player2)
	s.Equal("Alice", rec.Player1Name)
	s.Equal("Bob", rec.Player2Name)
	s.Equal("player-a", rec.Winner)
	s.Equal("win", rec.Result)
	s.Equal("quick", rec.Type)
	s.Equal("X", rec.WinningSymbol)
	s.InDelta(90.0, rec.Duration, 0.001)
}

func (s *ReporterSuite) TestRecordFromDrawnSession() {
	sess := s.finishedSession()
	sess.Status = model.SessionDraw
	sess.Winner = nil
	sess.WinningLine = nil

	rec := RecordFromSession(sess, sess.CreatedAt.Add(time.Minute))

	s.Equal("draw", rec.Result)
	s.Empty(rec.Winner)
	s.Empty(rec.WinningSymbol)
}

func (s *ReporterSuite) TestReportPostsRecord() {
	received := make(chan GameRecord, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("application/json", r.Header.Get("Content-Type"))

		var rec GameRecord
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&rec))
		received <- rec
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	reporter := New(server.URL, testutil.NopLogger())
	sess := s.finishedSession()
	reporter.Report(context.Background(), RecordFromSession(sess, sess.UpdatedAt))

	select {
	case rec := <-received:
		s.Equal("player-a", rec.Winner)
		s.Equal("win", rec.Result)
	default:
		s.Fail("expected the record to be posted")
	}
}

func (s *ReporterSuite) TestReportDisabledWithoutURL() {
	reporter := New("", testutil.NopLogger())
	sess := s.finishedSession()

	// Must be a no-op, not a panic or a dial attempt
	reporter.Report(context.Background(), RecordFromSession(sess, sess.UpdatedAt))
}

func (s *ReporterSuite) TestReportSwallowsServerErrors() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	reporter := New(server.URL, testutil.NopLogger())
	sess := s.finishedSession()
	reporter.Report(context.Background(), RecordFromSession(sess, sess.UpdatedAt))
}

func (s *ReporterSuite) TestReportSwallowsConnectionErrors() {
	reporter := New("http://127.0.0.1:1/results", testutil.NopLogger())
	sess := s.finishedSession()
	reporter.Report(context.Background(), RecordFromSession(sess, sess.UpdatedAt))
}
