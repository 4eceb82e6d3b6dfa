package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrNoContent is returned by Response.Decode when the backend answered
	// with 204 or an empty body.
	ErrNoContent = errors.New("no content")

	// ErrStaleToken is returned when a mutation still fails with 403 after
	// the single token refresh and retry.
	ErrStaleToken = errors.New("anti-forgery token rejected after refresh")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassTransport represents failures where no response arrived
	// (network failure, timeout, cancelled request).
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassAuth represents 401/403 responses.
	ErrorClassAuth ErrorClass = "auth"

	// ErrorClassClient represents other 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"
)

// APIError is the typed error for backend interactions. Transport failures
// carry StatusCode 0 and wrap the underlying error; application failures
// carry the HTTP status and the backend's structured message.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cms %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("cms %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Transport reports whether the request never produced a response.
func (e *APIError) Transport() bool {
	return e.ErrorClass == ErrorClassTransport
}

// classifyStatus maps an HTTP status to an error class.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorClassAuth
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		// No usable status means the response never arrived.
		return ErrorClassTransport
	}
}

// errorBody is the backend's structured error payload. Both field names are
// in use across endpoints.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// parseErrorMessage extracts the user-facing message from an error payload,
// falling back to the HTTP status text.
func parseErrorMessage(status int, body []byte) string {
	if len(body) > 0 {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err == nil {
			if eb.Error != "" {
				return eb.Error
			}
			if eb.Message != "" {
				return eb.Message
			}
		}
	}
	return http.StatusText(status)
}

// isStaleTokenResponse reports whether a 403 is specifically attributable to
// a stale or missing anti-forgery token, as opposed to an authorization
// denial. Only these 403s qualify for the refresh-and-retry path.
func isStaleTokenResponse(status int, body []byte) bool {
	if status != http.StatusForbidden {
		return false
	}
	return strings.Contains(strings.ToLower(parseErrorMessage(status, body)), "csrf")
}
