package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Event names emitted by the notification stream and relayed verbatim.
const (
	EventConnected    = "connected"
	EventNotification = "notification"
	EventUnreadCount  = "unread_count"
	EventHeartbeat    = "heartbeat"
)

// WriteEvent writes one event in SSE wire format: an event line, a data line
// carrying the JSON payload, and the terminating blank line.
func WriteEvent(w io.Writer, name string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
	return err
}

var eventPrefix = []byte("event:")

// eventName extracts the name from an SSE "event:" line. Returns "" for
// data, id, comment and blank lines.
func eventName(line []byte) string {
	if !bytes.HasPrefix(line, eventPrefix) {
		return ""
	}
	return string(bytes.TrimSpace(line[len(eventPrefix):]))
}

// blankLine reports whether line is an event boundary.
func blankLine(line []byte) bool {
	trimmed := bytes.TrimRight(line, "\r\n")
	return len(trimmed) == 0
}
