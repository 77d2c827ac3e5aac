package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ttt-arcade/tictactoe-server/internal/middleware"
	"github.com/ttt-arcade/tictactoe-server/internal/ws"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger      *slog.Logger
	Hub         *ws.Hub
	Coordinator *ws.Coordinator
}

// NewRouter creates the HTTP surface: the websocket endpoint and a health
// check. Everything else about this service speaks over the socket.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))

	// The websocket route skips request logging; one line per multi-hour
	// connection says nothing useful.
	r.HandleFunc("/ws", ws.Handler(cfg.Hub, cfg.Coordinator, cfg.Logger)).Methods(http.MethodGet)

	health := r.PathPrefix("/healthz").Subrouter()
	health.Use(middleware.Logging(cfg.Logger))
	health.HandleFunc("", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "OK",
		"service":   "tictactoe-server",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
