package model

import "time"

// QueueEntry is an identity waiting for a random opponent. Entries are
// matched in insertion order.
type QueueEntry struct {
	Identity
	EnqueuedAt time.Time
}

// RoomCapacity is the fixed occupancy at which a pending room becomes a session
const RoomCapacity = 2

// PendingRoom is a private, code-addressed rendezvous point awaiting a
// second participant. It never outlives occupancy 2: the join that fills
// it promotes it to a Session.
type PendingRoom struct {
	Code      string
	Host      Identity
	Players   []Identity
	CreatedAt time.Time
}

// Occupant returns the occupant with the given player ID, or nil
func (r *PendingRoom) Occupant(id PlayerID) *Identity {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// Full reports whether the room has reached capacity
func (r *PendingRoom) Full() bool {
	return len(r.Players) >= RoomCapacity
}
