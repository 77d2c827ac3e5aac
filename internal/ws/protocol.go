package ws

import (
	"encoding/json"

	"github.com/ttt-arcade/tictactoe-server/internal/model"
)

// Message is the envelope for all client-to-server traffic. The payload
// stays raw until the event type is known, then it is decoded into the
// matching typed struct and validated before any game logic runs.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Envelope is the server-to-client counterpart
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Inbound event types
const (
	EventJoinQueue  = "join_queue"
	EventLeaveQueue = "leave_queue"
	EventCreateRoom = "create_room"
	EventJoinRoom   = "join_room"
	EventPlayerMove = "playerMove"
	EventResumeGame = "resume_game"
	EventLeaveRoom  = "leave_room"
)

// Outbound event types
const (
	EventWaiting              = "waiting"
	EventQueueLeft            = "queue_left"
	EventQueueTimeout         = "queue_timeout"
	EventMatchFound           = "match_found"
	EventRoomCreated          = "room_created"
	EventRoomJoined           = "room_joined"
	EventPlayerJoined         = "player_joined"
	EventOpponentMove         = "opponentMove"
	EventGameOver             = "game_over"
	EventOpponentDisconnected = "opponent_disconnected"
	EventResumeSuccess        = "resume_success"
	EventResumeFail           = "resume_fail"
	EventError                = "error"
)

// JoinQueuePayload is the body of a join_queue event
type JoinQueuePayload struct {
	PlayerID   model.PlayerID `json:"playerId"`
	PlayerName string         `json:"playerName"`
}

// CreateRoomPayload is the body of a create_room event
type CreateRoomPayload struct {
	PlayerID   model.PlayerID `json:"playerId"`
	PlayerName string         `json:"playerName"`
	RoomCode   string         `json:"roomCode"`
}

// JoinRoomPayload is the body of a join_room event
type JoinRoomPayload struct {
	PlayerID   model.PlayerID `json:"playerId"`
	PlayerName string         `json:"playerName"`
	RoomCode   string         `json:"roomCode"`
}

// MovePayload is the body of a playerMove event
type MovePayload struct {
	Room   model.SessionID `json:"room"`
	Index  int             `json:"index"`
	Symbol model.Symbol    `json:"symbol"`
}

// ResumePayload is the body of a resume_game event
type ResumePayload struct {
	PlayerID model.PlayerID `json:"playerId"`
}

// LeaveRoomPayload is the body of a leave_room event
type LeaveRoomPayload struct {
	Room model.SessionID `json:"room"`
}

// WaitingPayload acknowledges a queue insertion
type WaitingPayload struct {
	Message       string `json:"message"`
	QueuePosition int    `json:"queuePosition"`
}

// MatchFoundPayload tells one participant their match is ready. Symbol
// assignment is server-authoritative; clients must not assume who got X.
type MatchFoundPayload struct {
	Room        model.SessionID     `json:"room"`
	Players     []model.Participant `json:"players"`
	YourSymbol  model.Symbol        `json:"yourSymbol"`
	CurrentTurn model.PlayerID      `json:"currentTurn"`
}

// RoomCreatedPayload acknowledges a private room creation
type RoomCreatedPayload struct {
	RoomCode string `json:"roomCode"`
}

// RoomJoinedPayload acknowledges a room join to the joiner
type RoomJoinedPayload struct {
	RoomCode string `json:"roomCode"`
}

// PlayerJoinedPayload tells existing occupants someone arrived
type PlayerJoinedPayload struct {
	PlayerID   model.PlayerID `json:"playerId"`
	PlayerName string         `json:"playerName"`
}

// OpponentMovePayload broadcasts a non-terminal move to the session
type OpponentMovePayload struct {
	Index         int            `json:"index"`
	Symbol        model.Symbol   `json:"symbol"`
	Board         model.Board    `json:"board"`
	NextTurn      model.PlayerID `json:"nextTurn"`
	CurrentPlayer model.PlayerID `json:"currentPlayer"`
}

// GameOverPayload broadcasts a terminal state. Winner and WinningLine are
// null for draws.
type GameOverPayload struct {
	Winner      *model.Participant `json:"winner"`
	Board       model.Board        `json:"board"`
	WinningLine []int              `json:"winningLine"`
}

// OpponentDisconnectedPayload informs the remaining participant
type OpponentDisconnectedPayload struct {
	Message string `json:"message"`
	Player  string `json:"player"`
}

// ResumeSuccessPayload returns full session state so a reconnecting client
// can resynchronize.
type ResumeSuccessPayload struct {
	*model.Session
	YourSymbol  model.Symbol   `json:"yourSymbol"`
	CurrentTurn model.PlayerID `json:"currentTurn"`
}

// ResumeFailPayload explains why resume was refused
type ResumeFailPayload struct {
	Message string `json:"message"`
}

// ErrorPayload carries a user-facing error message
type ErrorPayload struct {
	Message string `json:"message"`
}
