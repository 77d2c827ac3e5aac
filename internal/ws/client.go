package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ttt-arcade/tictactoe-server/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings with this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size in bytes
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Client is one websocket connection. The identity it speaks for is bound
// lazily, on the first event that declares one; the connection itself is
// transient and carries no game state.
type Client struct {
	hub         *Hub
	coordinator *Coordinator
	conn        *websocket.Conn
	send        chan []byte
	logger      *slog.Logger

	// identity is nil until the client declares who it is. Written only
	// under the coordinator's dispatch lock.
	identity *model.Identity

	connectedAt time.Time
}

// Send queues an event for delivery. A client whose buffer is full has the
// message dropped rather than stalling the sender; the next full-state
// event (or resume) will catch it up.
func (c *Client) Send(eventType string, payload any) {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload})
	if err != nil {
		c.logger.Error("failed to encode outbound event",
			slog.String("event", eventType),
			slog.String("error", err.Error()),
		)
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn("outbound event dropped - client buffer full",
			slog.String("event", eventType),
		)
	}
}

// readLoop pumps inbound messages to the coordinator until the connection
// dies, then triggers disconnect cleanup.
func (c *Client) readLoop() {
	defer func() {
		c.coordinator.OnDisconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("unexpected close", slog.String("error", err.Error()))
			}
			return
		}

		c.coordinator.Dispatch(c, msg)
	}
}

// writeLoop pumps queued messages out and keeps the connection alive with
// pings.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
