// Package session resolves and caches the caller identity behind the
// Tourwise session cookie. Verification is delegated to the auth service;
// results are held in a short-lived redis cache so hot paths do not hammer it.
package session

import (
	"errors"
	"net/http"
	"time"
)

// The session token travels under two cooperative cookie names so both
// verification paths of the auth service accept it.
const (
	// CookieName is the plain session cookie.
	CookieName = "tw_session"

	// SecureCookieName is the host-locked variant set on HTTPS origins.
	SecureCookieName = "__Secure-tw_session"
)

var (
	// ErrUnauthenticated indicates the token is missing, expired or rejected
	// by the auth service.
	ErrUnauthenticated = errors.New("session: unauthenticated")
)

// Session is the verified identity of a caller.
type Session struct {
	// Subject is the stable user identifier.
	Subject string `json:"subject"`

	// Name is the display name.
	Name string `json:"name"`

	// Role is the coarse authorization role (e.g. "admin", "editor").
	Role string `json:"role"`

	// ExpiresAt is when the auth service will stop honoring the token.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// CookieNames returns the cookie names checked for the session token, in
// precedence order.
func CookieNames() []string {
	return []string{SecureCookieName, CookieName}
}

// TokenFromRequest extracts the session token from the request cookies,
// trying the secure name first.
func TokenFromRequest(r *http.Request) (string, bool) {
	for _, name := range CookieNames() {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}
