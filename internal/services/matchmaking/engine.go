package matchmaking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ttt-arcade/tictactoe-server/internal/dependencies/clock"
	"github.com/ttt-arcade/tictactoe-server/internal/model"
	"github.com/ttt-arcade/tictactoe-server/internal/services/session"
)

// DefaultQueueTimeout is how long an entry may wait before being evicted
const DefaultQueueTimeout = 5 * time.Minute

// Presence answers whether a player currently holds a live connection.
// Matching never pairs someone with an opponent who has already dropped.
type Presence interface {
	IsConnected(id model.PlayerID) bool
}

// Engine owns the waiting queue and the pending private rooms. It is the
// only component that mutates either; both live behind its mutex.
type Engine struct {
	mu    sync.Mutex
	queue []model.QueueEntry
	rooms map[string]*model.PendingRoom

	sessions     *session.Controller
	presence     Presence
	clock        clock.Clock
	queueTimeout time.Duration
	logger       *slog.Logger
}

// NewEngine creates a new matching engine
func NewEngine(
	sessions *session.Controller,
	presence Presence,
	clock clock.Clock,
	queueTimeout time.Duration,
	logger *slog.Logger,
) *Engine {
	if queueTimeout <= 0 {
		queueTimeout = DefaultQueueTimeout
	}
	return &Engine{
		rooms:        make(map[string]*model.PendingRoom),
		sessions:     sessions,
		presence:     presence,
		clock:        clock,
		queueTimeout: queueTimeout,
		logger:       logger.With(slog.String("component", "matchmaking")),
	}
}

// Enqueue adds the identity to the waiting queue, or pairs it immediately
// with the first eligible waiting opponent. Re-enqueueing replaces any
// stale entry for the same identity rather than duplicating it.
//
// Returns the created session if a match was made, otherwise the caller's
// 1-based queue position.
func (e *Engine) Enqueue(ctx context.Context, id model.Identity) (*model.Session, int, error) {
	if !id.Valid() {
		return nil, 0, model.ErrInvalidIdentity
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.removeLocked(id.ID)

	// First eligible, not best eligible: no skill matching, just FIFO
	for i, entry := range e.queue {
		if entry.ID == id.ID {
			continue
		}
		if !e.presence.IsConnected(entry.ID) {
			continue
		}

		e.queue = append(e.queue[:i], e.queue[i+1:]...)
		s, err := e.sessions.Create(ctx, id, entry.Identity, model.OriginQuick)
		if err != nil {
			return nil, 0, err
		}
		return s, 0, nil
	}

	e.queue = append(e.queue, model.QueueEntry{
		Identity:   id,
		EnqueuedAt: e.clock.Now(),
	})

	e.logger.Info("player queued",
		slog.String("player_id", string(id.ID)),
		slog.Int("queue_size", len(e.queue)),
	)

	return nil, len(e.queue), nil
}

// Dequeue removes the player's queue entry if present. Explicit
// cancellation always succeeds; there is nothing to report if the entry
// was already gone.
func (e *Engine) Dequeue(id model.PlayerID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(id)
}

func (e *Engine) removeLocked(id model.PlayerID) {
	for i, entry := range e.queue {
		if entry.ID == id {
			e.queue = append(e.queue[:i], e.queue[i+1:]...)
			return
		}
	}
}

// QueueLen returns the current number of waiting entries
func (e *Engine) QueueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// CreateRoom registers a pending private room with the host as its sole
// occupant. The code is client-supplied and must be unique among pending
// rooms.
func (e *Engine) CreateRoom(code string, host model.Identity) error {
	if !host.Valid() {
		return model.ErrInvalidIdentity
	}
	if !validRoomCode(code) {
		return model.ErrInvalidRoomCode
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.rooms[code]; exists {
		return model.ErrRoomCodeConflict
	}

	e.rooms[code] = &model.PendingRoom{
		Code:      code,
		Host:      host,
		Players:   []model.Identity{host},
		CreatedAt: e.clock.Now(),
	}

	e.logger.Info("private room created",
		slog.String("room_code", code),
		slog.String("host", string(host.ID)),
	)

	return nil
}

// JoinResult describes the outcome of a room join: the room that was
// joined, and the session it was promoted to if the join filled it.
type JoinResult struct {
	Room    *model.PendingRoom
	Session *model.Session
}

// JoinRoom adds the identity to a pending room. Filling the room promotes
// it to a session and retires the room; symbol assignment and turn order
// are identical to queue matching.
func (e *Engine) JoinRoom(ctx context.Context, code string, joiner model.Identity) (*JoinResult, error) {
	if !joiner.Valid() {
		return nil, model.ErrInvalidIdentity
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	room, ok := e.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	if room.Full() {
		return nil, model.ErrRoomFull
	}
	if room.Occupant(joiner.ID) != nil {
		return nil, model.ErrDuplicateJoin
	}

	room.Players = append(room.Players, joiner)
	result := &JoinResult{Room: room}

	if room.Full() {
		s, err := e.sessions.Create(ctx, room.Players[0], joiner, model.OriginPrivate)
		if err != nil {
			return nil, err
		}
		delete(e.rooms, code)
		result.Session = s

		e.logger.Info("private room promoted",
			slog.String("room_code", code),
			slog.String("session_id", string(s.ID)),
		)
	}

	return result, nil
}

// Room returns the pending room for a code, or nil
func (e *Engine) Room(code string) *model.PendingRoom {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rooms[code]
}

// DropPlayer removes every queue entry and room occupancy the player
// holds. Rooms left without occupants are destroyed. Safe to call for
// players with no matchmaking state at all.
func (e *Engine) DropPlayer(id model.PlayerID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.removeLocked(id)

	for code, room := range e.rooms {
		for i, p := range room.Players {
			if p.ID == id {
				room.Players = append(room.Players[:i], room.Players[i+1:]...)
				break
			}
		}
		if len(room.Players) == 0 {
			delete(e.rooms, code)
			e.logger.Info("private room destroyed", slog.String("room_code", code))
		}
	}
}

// SweepQueue evicts entries that have waited past the timeout, plus any
// whose connection has died without an explicit disconnect. Only timed-out
// entries are returned; their owners should be told the wait is over.
func (e *Engine) SweepQueue() []model.QueueEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	var expired []model.QueueEntry
	kept := e.queue[:0]
	for _, entry := range e.queue {
		switch {
		case now.Sub(entry.EnqueuedAt) > e.queueTimeout:
			expired = append(expired, entry)
		case !e.presence.IsConnected(entry.ID):
			// Dropped silently; nobody is listening for a notification
		default:
			kept = append(kept, entry)
		}
	}
	e.queue = kept

	if len(expired) > 0 {
		e.logger.Info("queue entries expired", slog.Int("evicted", len(expired)))
	}

	return expired
}

// validRoomCode enforces the shape of client-supplied codes: short,
// shareable, uppercase alphanumeric.
func validRoomCode(code string) bool {
	if len(code) < 4 || len(code) > 10 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
