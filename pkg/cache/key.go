package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Signature is the canonical identity of one read request: the endpoint plus
// its normalized parameters, optionally scoped to a caller. Two reads with
// the same signature share one cache entry.
type Signature struct {
	// Endpoint is the backend path (e.g. "/posts").
	Endpoint string

	// Params are the query parameters (e.g. {"page": ["2"], "limit": ["10"]})
	Params url.Values

	// Scope separates entries that must not be shared between callers
	// (e.g. a session subject for admin reads). Empty means shared.
	Scope string
}

// NewSignature builds a signature for an endpoint and its parameters.
func NewSignature(endpoint string, params url.Values) Signature {
	return Signature{Endpoint: endpoint, Params: params}
}

// WithScope returns a copy of the signature bound to the given scope.
func (s Signature) WithScope(scope string) Signature {
	s.Scope = scope
	return s
}

// String generates a deterministic signature string.
// Format: cms:endpoint:param1=val1:param2=val2:scope=subject
//
// Example:
//
//	cms:posts:limit=10:page=2
func (s Signature) String() string {
	parts := []string{"cms"}

	endpoint := strings.Trim(s.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Params sorted for determinism; multi-value params joined in order.
	if len(s.Params) > 0 {
		keys := make([]string, 0, len(s.Params))
		for key := range s.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(s.Params[key], ",")))
		}
	}

	if s.Scope != "" {
		parts = append(parts, fmt.Sprintf("scope=%s", s.Scope))
	}

	return strings.Join(parts, ":")
}
