package model

import "errors"

// Common errors used across the application
var (
	// Validation errors
	ErrInvalidIdentity = errors.New("missing or invalid player identity")
	ErrInvalidRoomCode = errors.New("invalid room code")
	ErrInvalidCell     = errors.New("invalid board cell")

	// Room errors
	ErrRoomCodeConflict = errors.New("room code already exists")
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrDuplicateJoin    = errors.New("player is already in this room")

	// Session errors
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionNotPlaying = errors.New("session is not in play")
	ErrOutOfTurn         = errors.New("not this player's turn")
	ErrCellOccupied      = errors.New("cell is already taken")
	ErrSymbolMismatch    = errors.New("symbol does not match assignment")
	ErrNoActiveSession   = errors.New("no active session found")
)
