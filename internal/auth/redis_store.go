package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis as JSON under "session:<tokenHash>" with
// TTL = expiresAt - now, so expiry is handled by Redis itself.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed session store. Prefix may be empty.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(tokenHash string) string {
	return s.prefix + tokenHash
}

// Save stores the session with a TTL derived from its expiry.
func (s *RedisStore) Save(ctx context.Context, session Session, tokenHash string) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		// never store an already-expired session without a TTL
		ttl = time.Second
	}
	return s.client.Set(ctx, s.key(tokenHash), b, ttl).Err()
}

// FindByTokenHash returns the stored session, or nil when missing or expired.
func (s *RedisStore) FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	b, err := s.client.Get(ctx, s.key(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(b, &session); err != nil {
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.client.Del(ctx, s.key(tokenHash)).Err()
		return nil, nil
	}
	return &session, nil
}

// DeleteByTokenHash removes the session, if present.
func (s *RedisStore) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, s.key(tokenHash)).Err()
}

// DeleteExpired is a no-op; Redis evicts expired keys on its own.
func (s *RedisStore) DeleteExpired(context.Context) (int, error) {
	return 0, nil
}
