package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Resolver verifies a session token and returns the caller identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Session, error)
}

// AuthConfig holds the auth service client configuration.
type AuthConfig struct {
	// BaseURL of the auth service.
	BaseURL string

	// VerifyPath is the session verification endpoint.
	VerifyPath string

	// Timeout bounds each verification call.
	Timeout time.Duration

	// UserAgent identifies this service to the auth service.
	UserAgent string
}

// DefaultAuthConfig returns a safe default configuration.
func DefaultAuthConfig(baseURL string) AuthConfig {
	return AuthConfig{
		BaseURL:    baseURL,
		VerifyPath: "/session/verify",
		Timeout:    5 * time.Second,
		UserAgent:  "tourwise-cms-client",
	}
}

// AuthResolver verifies tokens by calling the auth service.
type AuthResolver struct {
	httpClient *http.Client
	cfg        AuthConfig
	logger     zerolog.Logger
}

// NewAuthResolver creates a resolver against the auth service.
func NewAuthResolver(cfg AuthConfig) (*AuthResolver, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("auth base URL is required")
	}
	if cfg.VerifyPath == "" {
		cfg.VerifyPath = "/session/verify"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &AuthResolver{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     log.With().Str("component", "session").Logger(),
	}, nil
}

// Resolve asks the auth service to verify token. A rejected or expired token
// yields ErrUnauthenticated; transport failures are returned as-is so callers
// can distinguish "not logged in" from "auth service down".
func (r *AuthResolver) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+r.cfg.VerifyPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create verify request: %w", err)
	}

	// The token is forwarded under both cooperative cookie names so either
	// verification path of the auth service picks it up.
	for _, name := range CookieNames() {
		req.AddCookie(&http.Cookie{Name: name, Value: token})
	}
	if r.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", r.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("auth service returned %d", resp.StatusCode)
	}

	var sess Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Expired() {
		return nil, ErrUnauthenticated
	}

	return &sess, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (r *AuthResolver) SetHTTPClient(client *http.Client) {
	r.httpClient = client
}

// tokenCache is the slice of Cache the cached resolver needs.
type tokenCache interface {
	Get(ctx context.Context, token string) (*Session, error)
	Set(ctx context.Context, token string, sess *Session) error
}

// CachedResolver layers a short-lived verification cache over another
// resolver. Only successful verifications are cached; failures always reach
// the inner resolver on the next call.
type CachedResolver struct {
	inner  Resolver
	cache  tokenCache
	logger zerolog.Logger
}

// NewCachedResolver wraps inner with cache.
func NewCachedResolver(inner Resolver, cache tokenCache) *CachedResolver {
	return &CachedResolver{
		inner:  inner,
		cache:  cache,
		logger: log.With().Str("component", "session").Logger(),
	}
}

// Resolve returns a cached verification when present, otherwise delegates to
// the inner resolver and caches the result.
func (r *CachedResolver) Resolve(ctx context.Context, token string) (*Session, error) {
	sess, err := r.cache.Get(ctx, token)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		// Degraded cache never blocks verification.
		r.logger.Warn().Err(err).Msg("Session cache unavailable, verifying directly")
	}

	sess, err = r.inner.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, token, sess); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to cache session verification")
	}

	return sess, nil
}
