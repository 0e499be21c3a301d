package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned by a TokenStore when no token is persisted.
var ErrTokenNotFound = errors.New("session token not found")

// ErrRedisUnavailable wraps Redis transport failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// DefaultTokenTTL is the lifetime of a persisted session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenStore persists the raw session token between process restarts.
//
// Delete must be idempotent: removing an absent token is not an error.
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string, ttl time.Duration) error
	Delete(ctx context.Context) error
}

// RedisTokenStore keeps the session token in a single Redis key with an expiry.
type RedisTokenStore struct {
	redis  redis.UniversalClient
	prefix string
	name   string
}

// NewRedisTokenStore creates a [RedisTokenStore]. prefix sets the key namespace and
// name the token key, producing keys of the form "<prefix>:token:<name>".
func NewRedisTokenStore(client redis.UniversalClient, prefix, name string) *RedisTokenStore {
	if prefix == "" {
		prefix = "gc"
	}
	if name == "" {
		name = "authToken"
	}
	return &RedisTokenStore{
		redis:  client,
		prefix: prefix,
		name:   name,
	}
}

// Key returns the Redis key holding the token.
func (s *RedisTokenStore) Key() string {
	return s.prefix + ":token:" + s.name
}

// Get returns the persisted token or [ErrTokenNotFound].
func (s *RedisTokenStore) Get(ctx context.Context) (string, error) {
	token, err := s.redis.Get(ctx, s.Key()).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// Set persists token with the given TTL, replacing any previous token.
// A non-positive ttl falls back to [DefaultTokenTTL].
func (s *RedisTokenStore) Set(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if err := s.redis.Set(ctx, s.Key(), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Delete removes the persisted token.
func (s *RedisTokenStore) Delete(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.Key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
