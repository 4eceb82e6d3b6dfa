package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/tourwise/cms-client/internal/id"
	"github.com/tourwise/cms-client/internal/response"
	"github.com/tourwise/cms-client/pkg/session"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	contextKeySession contextKey = "session"
	contextKeyToken   contextKey = "token"
)

// requestID attaches an identifier to every request. Incoming X-Request-ID
// headers are trusted so a front-end can correlate its own traces.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			generated, err := id.Generate("req")
			if err == nil {
				reqID = generated
			}
		}

		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireSession verifies the session cookie and rejects the request when it
// is missing or stale. An auth service outage is reported as 502, not 401,
// so a logged-in editor is never silently logged out by an upstream blip.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := session.TokenFromRequest(r)
		if !ok {
			response.Unauthorized(w, "Authentication required")
			return
		}

		sess, err := s.resolver.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrUnauthenticated) {
				response.Unauthorized(w, "Invalid or expired session")
				return
			}
			s.logger.Error().Err(err).Msg("Session verification unavailable")
			response.BadGateway(w, "Authentication service unavailable")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeySession, sess)
		ctx = context.WithValue(ctx, contextKeyToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalSession attaches a session when the cookie verifies but lets the
// request through anonymously otherwise. Public reads and visitor
// submissions use it.
func (s *Server) optionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := session.TokenFromRequest(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := s.resolver.Resolve(r.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrUnauthenticated) {
				s.logger.Warn().Err(err).Msg("Session verification unavailable, continuing anonymously")
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeySession, sess)
		ctx = context.WithValue(ctx, contextKeyToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// mutationLimit applies the per-caller token bucket to write endpoints.
// Authenticated callers are keyed by subject, anonymous ones by IP.
func (s *Server) mutationLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + clientIP(r)
		if sess, ok := currentSession(r.Context()); ok {
			key = "user:" + sess.Subject
		}

		if !s.limiter.Allow(key) {
			s.logger.Warn().
				Str("key", key).
				Str("path", r.URL.Path).
				Msg("Rate limit exceeded")
			response.TooManyRequests(w, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sessionToken returns the verified session token, or "" for anonymous
// requests.
func sessionToken(ctx context.Context) string {
	token, _ := ctx.Value(contextKeyToken).(string)
	return token
}

// currentSession returns the verified session attached by the middleware.
func currentSession(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(contextKeySession).(*session.Session)
	return sess, ok && sess != nil
}

// clientIP extracts the caller address. RealIP middleware has already folded
// X-Forwarded-For into RemoteAddr by the time this runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
