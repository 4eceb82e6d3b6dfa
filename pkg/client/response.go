package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Response is the decoded outcome of a successful backend call.
type Response struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Header holds the response headers.
	Header http.Header

	// Body is the raw JSON payload; nil when NoContent is true.
	Body json.RawMessage

	// NoContent is true for 204 responses and empty bodies. It is an
	// explicit value, not an error: deletes and acknowledgements resolve
	// this way routinely.
	NoContent bool
}

// Decode unmarshals the response body into v.
// Returns ErrNoContent when there is no body to decode.
func (r *Response) Decode(v interface{}) error {
	if r.NoContent {
		return ErrNoContent
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// newResponse drains resp and converts it into a Response. The body is
// always consumed and closed so the underlying connection is reusable.
func newResponse(resp *http.Response) (*Response, error) {
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	r := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
	}

	if resp.StatusCode == http.StatusNoContent || len(body) == 0 {
		r.NoContent = true
		return r, nil
	}

	r.Body = body
	return r, nil
}
