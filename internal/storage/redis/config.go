package redis

import "time"

// Config holds Redis connection and TTL settings
type Config struct {
	// URL is the Redis connection URL (redis://...)
	URL string

	// PoolSize is the maximum number of connections
	PoolSize int

	// MinIdleConns is the minimum number of idle connections
	MinIdleConns int

	// SessionTTL bounds how long a session key lives without being
	// re-saved. It is a backstop against leaked sessions, not a game
	// timer; every move refreshes it.
	SessionTTL time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		PoolSize:     10,
		MinIdleConns: 2,
		SessionTTL:   24 * time.Hour,
	}
}
