package relay

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// State identifies where a relayed stream is in its lifecycle.
type State int32

const (
	// StateAuthenticating covers session resolution. Nothing upstream is
	// open yet, so a failure here costs the caller only a 401.
	StateAuthenticating State = iota

	// StateRelaying means the upstream stream is open and bytes are being
	// copied to the client.
	StateRelaying

	// StateClosed means both sides have been released.
	StateClosed
)

// String returns the state name for logs and metrics.
func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateRelaying:
		return "relaying"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// stream tracks one client connection through the lifecycle. The explicit
// abort listener and natural stream completion both funnel into close, which
// releases the upstream read side exactly once. The client write side closes
// when the handler returns.
type stream struct {
	id     string
	state  atomic.Int32
	cancel context.CancelFunc
	logger zerolog.Logger

	closeOnce sync.Once
}

func newStream(id string, cancel context.CancelFunc, logger zerolog.Logger) *stream {
	return &stream{id: id, cancel: cancel, logger: logger}
}

// State returns the current lifecycle state.
func (st *stream) State() State {
	return State(st.state.Load())
}

// enterRelaying moves authenticating to relaying. It reports false when the
// stream was already closed by a concurrent abort.
func (st *stream) enterRelaying() bool {
	return st.state.CompareAndSwap(int32(StateAuthenticating), int32(StateRelaying))
}

// close cancels the upstream side and seals the state. Safe to call from
// multiple paths in any order; only the first call acts.
func (st *stream) close(reason string) {
	st.closeOnce.Do(func() {
		st.state.Store(int32(StateClosed))
		st.cancel()
		st.logger.Debug().Str("reason", reason).Msg("Stream closed")
	})
}
