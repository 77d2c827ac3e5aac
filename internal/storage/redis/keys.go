package redis

import "github.com/ttt-arcade/tictactoe-server/internal/model"

// Key prefixes for Redis storage
const (
	sessionPrefix     = "ttt:session:"
	playerIndexPrefix = "ttt:player-session:"
	sessionIndexKey   = "ttt:sessions"
)

func sessionKey(id model.SessionID) string {
	return sessionPrefix + string(id)
}

func playerIndexKey(id model.PlayerID) string {
	return playerIndexPrefix + string(id)
}
