// Package relay proxies the backend's notification event stream to browser
// clients, authenticating each connection before any upstream dial.
//
// A stream passes through three states: authenticating, relaying, closed.
// Authentication failures end with 401 and never touch the upstream. An
// upstream failure before the first byte yields 502; after bytes have
// flowed, the stream simply ends and the client is expected to reconnect.
// Client aborts propagate to the upstream request through context
// cancellation, and closing is idempotent no matter which side goes first.
package relay

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tourwise/cms-client/internal/id"
	"github.com/tourwise/cms-client/pkg/logging"
	"github.com/tourwise/cms-client/pkg/session"
)

// Config configures a Relay.
type Config struct {
	// UpstreamURL is the absolute URL of the backend event stream.
	UpstreamURL string

	// UserAgent identifies the relay to the upstream.
	UserAgent string

	// SessionCookieNames are the cookie names the session token is
	// forwarded under. Defaults to the two cooperative names.
	SessionCookieNames []string

	// OnEvent, when set, is called with the name of every named event
	// relayed downstream. The gateway uses it to invalidate cached
	// notification reads when the backend pushes fresh ones.
	OnEvent func(event string)
}

// Relay is an http.Handler that copies one upstream event stream per
// authenticated client connection.
type Relay struct {
	cfg        Config
	resolver   session.Resolver
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a relay. The HTTP client deliberately carries no overall
// timeout; streams live until either side ends them.
func New(cfg Config, resolver session.Resolver) (*Relay, error) {
	if cfg.UpstreamURL == "" {
		return nil, errors.New("upstream URL is required")
	}
	if resolver == nil {
		return nil, errors.New("session resolver is required")
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "tourwise-cms-relay"
	}
	if len(cfg.SessionCookieNames) == 0 {
		cfg.SessionCookieNames = session.CookieNames()
	}

	return &Relay{
		cfg:        cfg,
		resolver:   resolver,
		httpClient: &http.Client{},
		logger:     logging.NewLogger("relay"),
	}, nil
}

// SetHTTPClient replaces the upstream HTTP client. Useful for testing.
func (rl *Relay) SetHTTPClient(c *http.Client) {
	rl.httpClient = c
}

// ServeHTTP relays one client connection.
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	streamID, err := id.Generate("stream")
	if err != nil {
		streamID = "stream-unidentified"
	}
	logger := rl.logger.With().Str("stream_id", streamID).Logger()

	// Authenticating: resolve the session before anything upstream opens.
	token, _ := session.TokenFromRequest(r)
	sess, err := rl.resolver.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			streamsTotal.WithLabelValues("denied").Inc()
			http.Error(w, "authentication required", http.StatusUnauthorized)
		} else {
			streamsTotal.WithLabelValues("auth_unavailable").Inc()
			logger.Error().Err(err).Msg("Session resolution failed")
			http.Error(w, "authentication unavailable", http.StatusBadGateway)
		}
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	st := newStream(streamID, cancel, logger)

	upReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rl.cfg.UpstreamURL, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid upstream URL")
		http.Error(w, "relay misconfigured", http.StatusInternalServerError)
		return
	}
	upReq.Header.Set("Accept", "text/event-stream")
	upReq.Header.Set("Cache-Control", "no-cache")
	upReq.Header.Set("User-Agent", rl.cfg.UserAgent)
	for _, name := range rl.cfg.SessionCookieNames {
		upReq.AddCookie(&http.Cookie{Name: name, Value: token})
	}

	resp, err := rl.httpClient.Do(upReq)
	if err != nil {
		// No bytes have flowed yet, so the client gets a real status.
		st.close("upstream dial failed")
		streamsTotal.WithLabelValues("upstream_failed").Inc()
		logger.Warn().Err(err).Msg("Upstream stream connection failed")
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		st.close("upstream rejected")
		streamsTotal.WithLabelValues("upstream_failed").Inc()
		logger.Warn().Int("status", resp.StatusCode).Msg("Upstream refused the stream")
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}

	if !st.enterRelaying() {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		st.close("streaming unsupported")
		logger.Error().Err(err).Msg("Response writer does not support streaming")
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	streamsActive.Inc()
	defer streamsActive.Dec()
	logger.Info().Str("subject", sess.Subject).Msg("Stream relaying")

	// Explicit abort listener: a client disconnect cancels the upstream
	// request rather than waiting for the next write to fail.
	go func() {
		<-ctx.Done()
		st.close("client disconnected")
	}()

	outcome := rl.copy(st, w, rc, resp.Body)
	st.close(outcome)
	streamsTotal.WithLabelValues(outcome).Inc()
}

// copy moves the stream line by line, flushing at every event boundary so
// the client sees events as they happen, not when a buffer fills.
func (rl *Relay) copy(st *stream, w io.Writer, rc *http.ResponseController, body io.Reader) string {
	reader := bufio.NewReader(body)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if _, werr := w.Write(line); werr != nil {
				return "client_closed"
			}
			bytesRelayed.Add(float64(len(line)))

			if name := eventName(line); name != "" {
				eventsRelayed.WithLabelValues(name).Inc()
				if rl.cfg.OnEvent != nil {
					rl.cfg.OnEvent(name)
				}
			}
			if blankLine(line) {
				if ferr := rc.Flush(); ferr != nil {
					return "client_closed"
				}
			}
		}
		if err != nil {
			rc.Flush()
			if errors.Is(err, io.EOF) {
				return "completed"
			}
			if st.State() == StateClosed || errors.Is(err, context.Canceled) {
				return "client_closed"
			}
			return "upstream_ended"
		}
	}
}
