package ws

import (
	"log/slog"
	"sync"

	"github.com/ttt-arcade/tictactoe-server/internal/model"
)

// Hub tracks live connections, the identity each one speaks for, and the
// per-session broadcast groups. It is purely a routing table; game state
// lives elsewhere.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	byPlayer map[model.PlayerID]*Client
	groups   map[model.SessionID]map[*Client]struct{}
	logger   *slog.Logger
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		byPlayer: make(map[model.PlayerID]*Client),
		groups:   make(map[model.SessionID]map[*Client]struct{}),
		logger:   logger.With(slog.String("component", "hub")),
	}
}

// Register adds a freshly upgraded connection
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client connected", slog.Int("total_clients", total))
}

// Unregister removes a connection from the registry, every broadcast group,
// and the identity binding if this connection still holds it. A newer
// connection for the same identity (resume) keeps its binding.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)

	for sid, group := range h.groups {
		delete(group, c)
		if len(group) == 0 {
			delete(h.groups, sid)
		}
	}

	if c.identity != nil && h.byPlayer[c.identity.ID] == c {
		delete(h.byPlayer, c.identity.ID)
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client disconnected", slog.Int("total_clients", total))
}

// Bind associates the connection with a player identity. Rebinding an
// identity to a new connection displaces the old one, which is how a
// reconnecting player takes over from their dead socket.
func (h *Hub) Bind(c *Client, identity model.Identity) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.identity != nil && c.identity.ID != identity.ID && h.byPlayer[c.identity.ID] == c {
		delete(h.byPlayer, c.identity.ID)
	}
	c.identity = &identity
	h.byPlayer[identity.ID] = c
}

// ClientFor returns the live connection bound to a player, or nil
func (h *Hub) ClientFor(id model.PlayerID) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.byPlayer[id]
}

// IsConnected reports whether the player currently holds a live connection.
// This is the Presence check the matching engine uses before pairing.
func (h *Hub) IsConnected(id model.PlayerID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.byPlayer[id]
	return ok
}

// Join adds the connection to a session's broadcast group
func (h *Hub) Join(sid model.SessionID, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[sid]
	if !ok {
		group = make(map[*Client]struct{})
		h.groups[sid] = group
	}
	group[c] = struct{}{}
}

// Leave removes the connection from a session's broadcast group
func (h *Hub) Leave(sid model.SessionID, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[sid]
	if !ok {
		return
	}
	delete(group, c)
	if len(group) == 0 {
		delete(h.groups, sid)
	}
}

// CloseGroup drops the whole broadcast group for a retired session
func (h *Hub) CloseGroup(sid model.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, sid)
}

// Broadcast sends an event to every connection in a session's group
func (h *Hub) Broadcast(sid model.SessionID, eventType string, payload any) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.groups[sid]))
	for c := range h.groups[sid] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		c.Send(eventType, payload)
	}
}

// GroupSize returns the number of connections in a session's group
func (h *Hub) GroupSize(sid model.SessionID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[sid])
}
