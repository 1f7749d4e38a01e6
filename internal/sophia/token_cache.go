package sophia

import (
	"context"
	"sync"
	"time"

	"portal/internal/platform/metrics"
)

// DefaultTokenTTL matches how long Sophia keeps a system token valid.
const DefaultTokenTTL = 1800 * time.Second

// tokenSource is the subset of Client the cache depends on.
type tokenSource interface {
	Authenticate(ctx context.Context) (string, error)
}

// TokenCache holds the single system token in memory and refreshes it once
// its TTL has elapsed. The lock is held across the refresh so concurrent
// callers share one upstream request.
type TokenCache struct {
	source tokenSource
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenCache constructs a TokenCache around the given source. A zero ttl
// falls back to DefaultTokenTTL.
func NewTokenCache(source tokenSource, ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

// SystemToken returns the cached token while it is unexpired, otherwise
// fetches a fresh one and stores it with a new expiry. On upstream failure
// the cached slot is left untouched and the error propagates.
func (c *TokenCache) SystemToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		metrics.SophiaTokenCache.WithLabelValues("hit").Inc()
		return c.token, nil
	}

	token, err := c.source.Authenticate(ctx)
	if err != nil {
		metrics.SophiaTokenCache.WithLabelValues("error").Inc()
		return "", err
	}

	c.token = token
	c.expiresAt = c.now().Add(c.ttl)
	metrics.SophiaTokenCache.WithLabelValues("refresh").Inc()
	return token, nil
}

// Invalidate drops the cached token so the next call refreshes.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}
