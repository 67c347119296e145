package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/LunZaiZai0223/YelpCamp-v2/internal/platform/logger"
)

// TTL is the sliding session expiry: every save pushes it out another 7 days.
const TTL = 7 * 24 * time.Hour

// Store persists session records keyed by an opaque token.
type Store interface {
	// Get returns nil, nil when no record exists for the token.
	Get(ctx context.Context, token string) (*Data, error)
	Save(ctx context.Context, token string, data *Data) error
	Delete(ctx context.Context, token string) error
}

// NewToken generates an opaque session token.
func NewToken() string {
	return uuid.New().String()
}

// RedisStore is the production Store, keeping session records in Redis as
// JSON under "session:<token>".
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewRedisStore(rdb *redis.Client, log *logger.Logger) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		ttl:    TTL,
		logger: log.Named("SessionStore"),
	}
}

func sessionKey(token string) string {
	return "session:" + token
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Data, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to load session from redis", zap.Error(err))
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		// A corrupted record is treated as absent so the client gets a
		// fresh anonymous session instead of an error page.
		s.logger.Warn("Discarding corrupted session record", zap.Error(err))
		return nil, nil
	}
	return &data, nil
}

// Save writes the record and refreshes the sliding expiry.
func (s *RedisStore) Save(ctx context.Context, token string, data *Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(token), raw, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to save session to redis", zap.Error(err))
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		s.logger.Error("Failed to delete session from redis", zap.Error(err))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
