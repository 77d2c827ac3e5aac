package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ttt-arcade/tictactoe-server/internal/dependencies/clock"
	"github.com/ttt-arcade/tictactoe-server/internal/dependencies/random"
	"github.com/ttt-arcade/tictactoe-server/internal/services/matchmaking"
	"github.com/ttt-arcade/tictactoe-server/internal/services/report"
	"github.com/ttt-arcade/tictactoe-server/internal/services/session"
	"github.com/ttt-arcade/tictactoe-server/internal/storage"
	"github.com/ttt-arcade/tictactoe-server/internal/storage/memory"
	redisstorage "github.com/ttt-arcade/tictactoe-server/internal/storage/redis"
	"github.com/ttt-arcade/tictactoe-server/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage
	Clock   clock.Clock
	Random  random.Random

	Sessions    *session.Controller
	Engine      *matchmaking.Engine
	Reporter    *report.Reporter
	Hub         *ws.Hub
	Coordinator *ws.Coordinator
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// ResultsURL is the persistence API endpoint for finished games.
	// Empty disables reporting.
	ResultsURL string
	// QueueTimeout is how long a queue entry may wait before eviction
	QueueTimeout time.Duration
	// Coordinator holds retire-grace and idle-session tunables
	Coordinator ws.CoordinatorConfig
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	sessions := session.NewController(store, clk, rnd, logger)
	hub := ws.NewHub(logger)
	engine := matchmaking.NewEngine(sessions, hub, clk, cfg.QueueTimeout, logger)
	reporter := report.New(cfg.ResultsURL, logger)
	coordinator := ws.NewCoordinator(hub, engine, sessions, reporter, clk, cfg.Coordinator, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Sessions:    sessions,
		Engine:      engine,
		Reporter:    reporter,
		Hub:         hub,
		Coordinator: coordinator,
	}
}
