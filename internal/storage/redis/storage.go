package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ttt-arcade/tictactoe-server/internal/model"
	"github.com/ttt-arcade/tictactoe-server/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	key := sessionKey(session.ID)

	// Pipeline the value, the per-player lookup index and the listing index
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.cfg.SessionTTL)
	for _, p := range session.Participants {
		pipe.Set(ctx, playerIndexKey(p.ID), string(session.ID), s.cfg.SessionTTL)
	}
	pipe.SAdd(ctx, sessionIndexKey, key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessionKey(id))
	for _, p := range session.Participants {
		// Only drop the index entry if it still points at this session;
		// the player may already be in a newer one.
		current, err := s.client.Get(ctx, playerIndexKey(p.ID)).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return err
		}
		if current == string(id) {
			pipe.Del(ctx, playerIndexKey(p.ID))
		}
	}
	pipe.SRem(ctx, sessionIndexKey, sessionKey(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) FindSessionByPlayer(ctx context.Context, id model.PlayerID) (*model.Session, error) {
	sid, err := s.client.Get(ctx, playerIndexKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	return s.GetSession(ctx, model.SessionID(sid))
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	keys, err := s.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return []*model.Session{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(values))
	stale := make([]any, 0)
	for i, val := range values {
		if val == nil {
			// Session expired but its index entry lingers; clean it up
			stale = append(stale, keys[i])
			continue
		}
		var session model.Session
		if err := json.Unmarshal([]byte(val.(string)), &session); err != nil {
			continue // Skip invalid data
		}
		sessions = append(sessions, &session)
	}

	if len(stale) > 0 {
		_ = s.client.SRem(ctx, sessionIndexKey, stale...).Err()
	}

	return sessions, nil
}
