package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates no cached verification exists for the token.
	ErrCacheMiss = errors.New("session cache miss")

	// ErrInvalidEntry indicates the cached entry is corrupted.
	ErrInvalidEntry = errors.New("invalid session cache entry")
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cms_session_cache_hits_total",
		Help: "Total number of session verifications served from cache",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cms_session_cache_misses_total",
		Help: "Total number of session verifications that had to call the auth service",
	})

	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_session_cache_errors_total",
		Help: "Total number of session cache operation errors",
	}, []string{"operation"}) // "get", "set", "delete"
)

// Cache holds verified sessions in redis for a short window. Tokens are
// never stored verbatim: the redis key is a SHA-256 digest of the token.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a session cache. ttl bounds how long a verification is
// trusted before the auth service is asked again.
func NewCache(redisClient *redis.Client, ttl time.Duration) *Cache {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{
		redis: redisClient,
		ttl:   ttl,
	}
}

// cacheKey derives the redis key for a token.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(sum[:16])
}

// Get returns the cached session for token.
// Returns ErrCacheMiss if no valid entry exists.
func (c *Cache) Get(ctx context.Context, token string) (*Session, error) {
	data, err := c.redis.Get(ctx, cacheKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			cacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if sess.Expired() {
		_ = c.Delete(ctx, token)
		cacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	cacheHits.Inc()
	return &sess, nil
}

// Set stores a verified session. The entry expires with the cache TTL, or
// with the session itself if that comes first.
func (c *Cache) Set(ctx context.Context, token string, sess *Session) error {
	if sess == nil {
		return fmt.Errorf("session cannot be nil")
	}

	ttl := c.ttl
	if !sess.ExpiresAt.IsZero() {
		if remaining := time.Until(sess.ExpiresAt); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		// Already expired, don't cache.
		return nil
	}

	data, err := json.Marshal(sess)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := c.redis.Set(ctx, cacheKey(token), data, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes the cached verification for token, e.g. on logout.
func (c *Cache) Delete(ctx context.Context, token string) error {
	if err := c.redis.Del(ctx, cacheKey(token)).Err(); err != nil {
		cacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
