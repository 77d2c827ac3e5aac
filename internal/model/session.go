package model

import "time"

// SessionID uniquely identifies an active match
type SessionID string

// SessionStatus represents the current phase of a session
type SessionStatus string

const (
	SessionPlaying SessionStatus = "playing"
	SessionWon     SessionStatus = "won"
	SessionDraw    SessionStatus = "draw"
)

// SessionOrigin records how the two players were paired
type SessionOrigin string

const (
	OriginQuick   SessionOrigin = "quick"   // random queue match
	OriginPrivate SessionOrigin = "private" // room-code match
)

// Participant is an Identity bound to a symbol within one session
type Participant struct {
	Identity
	Symbol Symbol `json:"symbol"`
}

// Session is the authoritative unit of a match: board, participants and
// turn state. Exactly one participant holds each symbol; Turn references
// one of the two participants while Status is playing.
type Session struct {
	ID           SessionID      `json:"room"`
	Participants [2]Participant `json:"players"`
	Board        Board          `json:"board"`
	Turn         PlayerID       `json:"turn"`
	Status       SessionStatus  `json:"status"`
	Origin       SessionOrigin  `json:"origin"`
	Winner       *Participant   `json:"winner,omitempty"`
	WinningLine  []int          `json:"winningLine,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ParticipantByID returns the participant with the given player ID, or nil
func (s *Session) ParticipantByID(id PlayerID) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return &s.Participants[i]
		}
	}
	return nil
}

// Opponent returns the participant other than the given player ID, or nil
// if the ID is not a participant.
func (s *Session) Opponent(id PlayerID) *Participant {
	if s.ParticipantByID(id) == nil {
		return nil
	}
	for i := range s.Participants {
		if s.Participants[i].ID != id {
			return &s.Participants[i]
		}
	}
	return nil
}

// HasParticipant reports whether the player is part of this session
func (s *Session) HasParticipant(id PlayerID) bool {
	return s.ParticipantByID(id) != nil
}
