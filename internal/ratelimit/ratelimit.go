// Package ratelimit provides a keyed rate limiter using the token bucket
// algorithm. Each key gets its own independent bucket, and buckets that sit
// idle are dropped so the map does not grow with client churn.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	idleAfter     = 3 * time.Minute
	sweepInterval = time.Minute
)

// KeyedLimiter manages per-key rate limiting.
type KeyedLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int

	done     chan struct{}
	stopOnce sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a keyed rate limiter.
// rps: requests per second allowed per key.
// burst: maximum burst size (tokens available immediately).
func New(rps float64, burst int) *KeyedLimiter {
	kl := &KeyedLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(rps),
		burst:   burst,
		done:    make(chan struct{}),
	}

	go kl.sweep()

	return kl
}

// Allow reports whether a request for the given key should be allowed.
// Returns immediately without blocking.
func (kl *KeyedLimiter) Allow(key string) bool {
	kl.mu.Lock()
	c, ok := kl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(kl.limit, kl.burst)}
		kl.clients[key] = c
	}
	c.lastSeen = time.Now()
	kl.mu.Unlock()

	return c.limiter.Allow()
}

// Len returns the number of keys currently tracked.
func (kl *KeyedLimiter) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.clients)
}

// Stop shuts down the sweep goroutine.
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() {
		close(kl.done)
	})
}

func (kl *KeyedLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-kl.done:
			return
		case <-ticker.C:
			kl.dropIdle(time.Now().Add(-idleAfter))
		}
	}
}

// dropIdle removes every key not seen since the cutoff.
func (kl *KeyedLimiter) dropIdle(cutoff time.Time) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	for key, c := range kl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(kl.clients, key)
		}
	}
}
