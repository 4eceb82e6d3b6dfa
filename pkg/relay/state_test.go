package relay

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateAuthenticating, "authenticating"},
		{StateRelaying, "relaying"},
		{StateClosed, "closed"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.state.String())
	}
}

func TestStream_CloseIsIdempotent(t *testing.T) {
	cancels := 0
	st := newStream("stream-1", func() { cancels++ }, zerolog.Nop())

	st.close("upstream ended")
	st.close("client disconnected")
	st.close("client disconnected")

	assert.Equal(t, 1, cancels, "the upstream side must be released exactly once")
	assert.Equal(t, StateClosed, st.State())
}

func TestStream_CloseFromEitherPathFirst(t *testing.T) {
	// Natural completion first, then the abort listener.
	cancels := 0
	st := newStream("stream-1", func() { cancels++ }, zerolog.Nop())
	st.enterRelaying()
	st.close("completed")
	st.close("client disconnected")
	assert.Equal(t, 1, cancels)

	// Abort listener first, then natural completion.
	cancels = 0
	st = newStream("stream-2", func() { cancels++ }, zerolog.Nop())
	st.enterRelaying()
	st.close("client disconnected")
	st.close("completed")
	assert.Equal(t, 1, cancels)
}

func TestStream_EnterRelaying(t *testing.T) {
	st := newStream("stream-1", func() {}, zerolog.Nop())

	assert.Equal(t, StateAuthenticating, st.State())
	assert.True(t, st.enterRelaying())
	assert.Equal(t, StateRelaying, st.State())
	assert.False(t, st.enterRelaying(), "relaying is entered once")
}

func TestStream_AbortDuringHandshake(t *testing.T) {
	st := newStream("stream-1", func() {}, zerolog.Nop())

	st.close("client disconnected")

	assert.False(t, st.enterRelaying(), "a closed stream must not start relaying")
	assert.Equal(t, StateClosed, st.State())
}
