package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// refreshState tracks where one request is in the retry-once-on-403 cycle.
// The progression is strictly normal -> refreshing -> retried; a request in
// the retried state never refreshes again, which is what bounds the retry
// to exactly one.
type refreshState int

const (
	stateNormal refreshState = iota
	stateRefreshing
	stateRetried
)

// csrfSource owns the anti-forgery token: it warms it up via a lightweight
// GET, hands it out to mutations, and refreshes it when the backend rejects
// it as stale. Concurrent refreshes collapse into a single warm-up call.
type csrfSource struct {
	mu    sync.RWMutex
	token string

	group singleflight.Group

	httpClient *http.Client
	warmupURL  string
	cookieName string
	userAgent  string
	logger     zerolog.Logger
}

func newCSRFSource(httpClient *http.Client, warmupURL, cookieName, userAgent string, logger zerolog.Logger) *csrfSource {
	return &csrfSource{
		httpClient: httpClient,
		warmupURL:  warmupURL,
		cookieName: cookieName,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Token returns the current token, warming it up first if none is held.
func (s *csrfSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token != "" {
		return token, nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches a fresh token. Any number of concurrent callers share one
// warm-up request and all receive the token it produced.
func (s *csrfSource) Refresh(ctx context.Context) (string, error) {
	v, err, shared := s.group.Do("csrf-refresh", func() (interface{}, error) {
		token, err := s.warmup(ctx)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.token = token
		s.mu.Unlock()

		tokenRefreshesTotal.Inc()
		return token, nil
	})
	if err != nil {
		return "", err
	}

	if shared {
		s.logger.Debug().Msg("Token refresh shared with concurrent mutation")
	}
	return v.(string), nil
}

// warmup performs the GET that makes the backend set the anti-forgery cookie.
func (s *csrfSource) warmup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.warmupURL, nil)
	if err != nil {
		return "", fmt.Errorf("create warm-up request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token warm-up: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return "", fmt.Errorf("token warm-up returned %d", resp.StatusCode)
	}

	for _, c := range resp.Cookies() {
		if c.Name == s.cookieName && c.Value != "" {
			return c.Value, nil
		}
	}

	return "", fmt.Errorf("warm-up response did not set cookie %q", s.cookieName)
}
