package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The game client may be served from a different origin than the
	// socket server; identity is application-level, not cookie-based.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to websocket connections and starts the
// client pumps.
func Handler(hub *Hub, coordinator *Coordinator, logger *slog.Logger) http.HandlerFunc {
	connLogger := logger.With(slog.String("component", "ws"))

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			connLogger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
			return
		}

		client := &Client{
			hub:         hub,
			coordinator: coordinator,
			conn:        conn,
			send:        make(chan []byte, sendBufferSize),
			logger:      connLogger,
			connectedAt: coordinator.clock.Now(),
		}

		hub.Register(client)

		go client.writeLoop()
		go client.readLoop()
	}
}
