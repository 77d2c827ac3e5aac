package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ttt-arcade/tictactoe-server/internal/model"
)

// GameRecord is the payload posted to the persistence API when a session
// finishes. Field names follow the API's contract.
type GameRecord struct {
	Player1       string  `json:"player1"`
	Player2       string  `json:"player2"`
	Player1Name   string  `json:"player1Name"`
	Player2Name   string  `json:"player2Name"`
	Winner        string  `json:"winner"`
	Result        string  `json:"result"` // win | loss | draw
	Type          string  `json:"type"`   // quick | private
	WinningSymbol string  `json:"winningSymbol"`
	Duration      float64 `json:"duration"` // seconds
}

// RecordFromSession builds a GameRecord from a finished session
func RecordFromSession(s *model.Session, endedAt time.Time) GameRecord {
	rec := GameRecord{
		Player1:     string(s.Participants[0].ID),
		Player2:     string(s.Participants[1].ID),
		Player1Name: s.Participants[0].Name,
		Player2Name: s.Participants[1].Name,
		Result:      "draw",
		Type:        string(s.Origin),
		Duration:    endedAt.Sub(s.CreatedAt).Seconds(),
	}
	if s.Winner != nil {
		rec.Winner = string(s.Winner.ID)
		rec.Result = "win"
		rec.WinningSymbol = string(s.Winner.Symbol)
	}
	return rec
}

// Reporter posts finished-game records to the external persistence API.
// Reporting is fire-and-forget: the game server never blocks or retries
// on the collaborator's behalf, it only logs failures.
type Reporter struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// New creates a Reporter targeting the given results endpoint. An empty
// URL disables reporting entirely.
func New(url string, logger *slog.Logger) *Reporter {
	return &Reporter{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With(slog.String("component", "report")),
	}
}

// Report submits one record. Errors are logged, never returned to the
// game flow that triggered the report.
func (r *Reporter) Report(ctx context.Context, rec GameRecord) {
	if r.url == "" {
		return
	}

	body, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("failed to encode game record", slog.String("error", err.Error()))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		r.logger.Error("failed to build report request", slog.String("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("failed to save game result", slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		r.logger.Error("results API rejected game record",
			slog.String("status", fmt.Sprintf("%d", resp.StatusCode)),
		)
		return
	}

	r.logger.Info("game result saved",
		slog.String("player1", rec.Player1),
		slog.String("player2", rec.Player2),
		slog.String("result", rec.Result),
	)
}
