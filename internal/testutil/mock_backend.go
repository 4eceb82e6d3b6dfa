// Package testutil provides testing utilities for the CMS client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/tourwise/cms-client/pkg/relay"
	"github.com/tourwise/cms-client/pkg/session"
)

// MockResponse defines the behavior for a mock backend endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockBackend is a configurable mock CMS backend. It implements the contract
// the client depends on: the anti-forgery warm-up endpoint, the double-submit
// check on every mutation, and session verification under both cookie names.
type MockBackend struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	sessions map[string]session.Session

	// RequireCSRF enables the double-submit check on mutations (default true).
	RequireCSRF bool

	csrfSerial int
	csrfToken  string

	// Tracking
	RequestCount      int
	WarmupCount       int
	RejectedCount     int
	LastRequestHeader http.Header
	LastSessionToken  string
}

// NewMockBackend creates a mock CMS backend.
func NewMockBackend() *MockBackend {
	mock := &MockBackend{
		handlers:    make(map[string]func(w http.ResponseWriter, r *http.Request)),
		sessions:    make(map[string]session.Session),
		RequireCSRF: true,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.dispatch))

	return mock
}

func (m *MockBackend) dispatch(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.RequestCount++
	m.LastRequestHeader = r.Header.Clone()
	if token, ok := session.TokenFromRequest(r); ok {
		m.LastSessionToken = token
	}
	m.mu.Unlock()

	switch r.URL.Path {
	case "/auth/csrf":
		m.handleWarmup(w)
		return
	case "/session/verify":
		m.handleVerify(w, r)
		return
	}

	if isMutation(r.Method) && !m.checkCSRF(w, r) {
		return
	}

	m.mu.RLock()
	handler, exists := m.handlers[r.URL.Path]
	m.mu.RUnlock()

	if exists {
		handler(w, r)
		return
	}

	m.defaultHandler(w)
}

// handleWarmup issues a fresh anti-forgery token. Every warm-up rotates the
// token, matching a backend that regenerates per priming request.
func (m *MockBackend) handleWarmup(w http.ResponseWriter) {
	m.mu.Lock()
	m.WarmupCount++
	m.csrfSerial++
	m.csrfToken = fmt.Sprintf("csrf-%d", m.csrfSerial)
	token := m.csrfToken
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "tw_csrf", Value: token, Path: "/"})
	w.WriteHeader(http.StatusNoContent)
}

// handleVerify resolves the session cookie against the configured sessions.
func (m *MockBackend) handleVerify(w http.ResponseWriter, r *http.Request) {
	token, ok := session.TokenFromRequest(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	m.mu.RLock()
	sess, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(sess)
}

// checkCSRF enforces the double-submit contract: the cookie and the header
// must both carry the current token. Returns false after writing the 403.
func (m *MockBackend) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	m.mu.RLock()
	require := m.RequireCSRF
	current := m.csrfToken
	m.mu.RUnlock()

	if !require {
		return true
	}

	cookie, err := r.Cookie("tw_csrf")
	header := r.Header.Get("X-CSRF-Token")
	if err != nil || cookie.Value == "" || cookie.Value != header || cookie.Value != current {
		m.mu.Lock()
		m.RejectedCount++
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "invalid csrf token"}`))
		return false
	}

	return true
}

// URL returns the mock server URL.
func (m *MockBackend) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockBackend) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.WarmupCount = 0
	m.RejectedCount = 0
	m.LastRequestHeader = nil
	m.LastSessionToken = ""
}

// SetSession registers a session token the verify endpoint will accept.
func (m *MockBackend) SetSession(token string, sess session.Session) {
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = time.Now().Add(time.Hour)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = sess
}

// RotateCSRF invalidates the current anti-forgery token without telling the
// client, so its next mutation is rejected until it re-primes.
func (m *MockBackend) RotateCSRF() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.csrfSerial++
	m.csrfToken = fmt.Sprintf("csrf-%d", m.csrfSerial)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockBackend) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockBackend) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockBackend) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetWarmupCount returns the number of anti-forgery warm-up calls.
func (m *MockBackend) GetWarmupCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.WarmupCount
}

// GetRejectedCount returns the number of mutations rejected by the
// double-submit check.
func (m *MockBackend) GetRejectedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RejectedCount
}

func (m *MockBackend) defaultHandler(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// NewJSONResponse creates a standard 200 OK response with a JSON body.
func NewJSONResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewErrorResponse creates an error response with the backend's envelope.
func NewErrorResponse(status int, message string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{"message": %q}`, message),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// ScriptedEvent is one server-sent event for NewStreamHandler.
type ScriptedEvent struct {
	Name string
	Data string
}

// NewStreamHandler creates a handler that plays back a scripted event stream,
// flushing after every event, then closes. Data must be valid JSON.
func NewStreamHandler(events ...ScriptedEvent) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)

		flusher, _ := w.(http.Flusher)
		for _, ev := range events {
			_ = relay.WriteEvent(w, ev.Name, json.RawMessage(ev.Data))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
