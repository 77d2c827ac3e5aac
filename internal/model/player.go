package model

import "strings"

// PlayerID uniquely identifies a player across the system.
// It is chosen by the client and survives reconnects, unlike the
// websocket connection carrying it.
type PlayerID string

// Identity is the persistent half of a connected player: who they are,
// independent of which connection they currently hold.
type Identity struct {
	ID   PlayerID `json:"playerId"`
	Name string   `json:"name"`
}

// Valid reports whether the identity is usable for matchmaking.
func (i Identity) Valid() bool {
	return i.ID != "" && strings.TrimSpace(i.Name) != ""
}
