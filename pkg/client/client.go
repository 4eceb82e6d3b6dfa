// Package client provides the HTTP request layer for the Tourwise CMS
// backend: session forwarding, anti-forgery token handling with a single
// refresh-and-retry on stale-token rejections, and typed errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tourwise/cms-client/pkg/session"
)

// Prometheus metrics for backend requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_client_requests_total",
		Help: "Total backend requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cms_client_request_duration_seconds",
		Help:    "Backend request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cms_client_errors_total",
		Help: "Total backend request failures by error class",
	}, []string{"class"})

	tokenRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cms_client_token_refreshes_total",
		Help: "Total anti-forgery token warm-up calls",
	})

	staleTokenRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cms_client_stale_token_retries_total",
		Help: "Total mutations retried after a stale-token 403",
	})
)

// Client talks to the CMS backend on behalf of one logical principal. It
// owns the anti-forgery token the way a browser tab owns its cookie jar.
type Client struct {
	httpClient *http.Client
	csrf       *csrfSource
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the CMS backend (e.g. "https://api.tourwise.example").
	BaseURL string

	// UserAgent sent on every request.
	UserAgent string

	// SessionCookieNames are the cookie names the session token is forwarded
	// under. Both are sent so either backend verification path accepts it.
	SessionCookieNames []string

	// CSRFCookieName is the cookie the backend sets on the warm-up call.
	CSRFCookieName string

	// CSRFHeaderName is the header the token is mirrored into on mutations.
	CSRFHeaderName string

	// CSRFWarmupPath is the lightweight GET that makes the backend set the
	// anti-forgery cookie.
	CSRFWarmupPath string

	// Timeout bounds each request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:            baseURL,
		UserAgent:          "tourwise-cms-client/1.0",
		SessionCookieNames: session.CookieNames(),
		CSRFCookieName:     "tw_csrf",
		CSRFHeaderName:     "X-CSRF-Token",
		CSRFWarmupPath:     "/auth/csrf",
		Timeout:            30 * time.Second,
	}
}

// New creates a CMS backend client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if len(cfg.SessionCookieNames) == 0 {
		cfg.SessionCookieNames = session.CookieNames()
	}
	if cfg.CSRFCookieName == "" {
		cfg.CSRFCookieName = "tw_csrf"
	}
	if cfg.CSRFHeaderName == "" {
		cfg.CSRFHeaderName = "X-CSRF-Token"
	}
	if cfg.CSRFWarmupPath == "" {
		cfg.CSRFWarmupPath = "/auth/csrf"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "cms-client").Logger()

	httpClient := &http.Client{Timeout: cfg.Timeout}

	warmupURL := strings.TrimRight(cfg.BaseURL, "/") + cfg.CSRFWarmupPath
	csrf := newCSRFSource(httpClient, warmupURL, cfg.CSRFCookieName, cfg.UserAgent, logger)

	return &Client{
		httpClient: httpClient,
		csrf:       csrf,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Request describes one backend call.
type Request struct {
	// Method is the HTTP method; GET when empty.
	Method string

	// Path is the endpoint path (e.g. "/posts/abc123").
	Path string

	// Query holds the query parameters.
	Query url.Values

	// Body is JSON-marshaled into the request body when non-nil.
	Body interface{}

	// SessionToken is forwarded under the configured cookie names.
	// Empty means an unauthenticated call.
	SessionToken string
}

// isMutation reports whether the request uses a state-changing method.
func (r Request) isMutation() bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Do performs a backend request.
//
// State-changing methods carry the anti-forgery token as cookie plus
// mirrored header. A 403 specifically attributable to a stale or missing
// token triggers one token refresh and one retry; a second rejection is
// returned as an auth error wrapping ErrStaleToken. The retry cycle is a
// strict progression (normal -> refreshing -> retried), never a loop.
//
// Transport failures (no response) and application failures (non-2xx with a
// body) are both returned as *APIError with the class telling them apart.
// A 204 or empty body yields a Response with NoContent set, not an error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	endpoint := req.Path

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Marshal the body once; each attempt gets a fresh reader over it.
	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	state := stateNormal

	for {
		var csrfToken string
		if req.isMutation() {
			token, err := c.csrf.Token(ctx)
			if err != nil {
				errorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
				return nil, &APIError{
					ErrorClass: ErrorClassTransport,
					Message:    "anti-forgery token warm-up failed",
					Err:        err,
				}
			}
			csrfToken = token
		}

		httpReq, err := c.buildRequest(ctx, req, payload, csrfToken)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Request failed without response")
			errorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
			requestsTotal.WithLabelValues(endpoint, req.Method, "transport_error").Inc()
			return nil, &APIError{
				ErrorClass: ErrorClassTransport,
				Message:    "request failed",
				Err:        err,
			}
		}

		out, err := newResponse(resp)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
			return nil, &APIError{
				ErrorClass: ErrorClassTransport,
				Message:    "response body unreadable",
				Err:        err,
			}
		}

		requestsTotal.WithLabelValues(endpoint, req.Method, strconv.Itoa(out.StatusCode)).Inc()

		if out.StatusCode >= 200 && out.StatusCode < 300 {
			return out, nil
		}

		// A stale-token 403 on a mutation gets one refresh and one retry.
		if req.isMutation() && isStaleTokenResponse(out.StatusCode, out.Body) {
			if state == stateNormal {
				state = stateRefreshing
				c.logger.Warn().
					Str("endpoint", endpoint).
					Str("method", req.Method).
					Msg("Stale anti-forgery token, refreshing once")

				if _, err := c.csrf.Refresh(ctx); err != nil {
					errorsTotal.WithLabelValues(string(ErrorClassAuth)).Inc()
					return nil, &APIError{
						StatusCode: out.StatusCode,
						ErrorClass: ErrorClassAuth,
						Message:    "token refresh failed",
						Err:        err,
					}
				}

				state = stateRetried
				staleTokenRetriesTotal.Inc()
				continue
			}

			// Already retried once: surface as an auth error, never loop.
			errorsTotal.WithLabelValues(string(ErrorClassAuth)).Inc()
			return nil, &APIError{
				StatusCode: out.StatusCode,
				ErrorClass: ErrorClassAuth,
				Message:    parseErrorMessage(out.StatusCode, out.Body),
				Err:        ErrStaleToken,
			}
		}

		class := classifyStatus(out.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Str("method", req.Method).
			Int("status", out.StatusCode).
			Str("error_class", string(class)).
			Msg("Backend request error")

		return nil, &APIError{
			StatusCode: out.StatusCode,
			ErrorClass: class,
			Message:    parseErrorMessage(out.StatusCode, out.Body),
		}
	}
}

// buildRequest assembles one HTTP request attempt.
func (c *Client) buildRequest(ctx context.Context, req Request, payload []byte, csrfToken string) (*http.Request, error) {
	u := strings.TrimRight(c.config.BaseURL, "/") + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body *bytes.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	// The session token travels under both cooperative cookie names.
	if req.SessionToken != "" {
		for _, name := range c.config.SessionCookieNames {
			httpReq.AddCookie(&http.Cookie{Name: name, Value: req.SessionToken})
		}
	}

	// Mutations carry the anti-forgery token as cookie plus mirrored header.
	if csrfToken != "" {
		httpReq.AddCookie(&http.Cookie{Name: c.config.CSRFCookieName, Value: csrfToken})
		httpReq.Header.Set(c.config.CSRFHeaderName, csrfToken)
	}

	return httpReq, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values, sessionToken string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, SessionToken: sessionToken})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}, sessionToken string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, SessionToken: sessionToken})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}, sessionToken string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body, SessionToken: sessionToken})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}, sessionToken string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body, SessionToken: sessionToken})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, sessionToken string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, SessionToken: sessionToken})
}

// PrimeCSRF forces an anti-forgery token warm-up and returns the fresh
// token. Front-ends call this once on load so their first mutation does not
// pay the warm-up round trip.
func (c *Client) PrimeCSRF(ctx context.Context) (string, error) {
	return c.csrf.Refresh(ctx)
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
	c.csrf.httpClient = client
}
