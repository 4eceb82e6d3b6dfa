package cache

import (
	"net/url"
	"testing"
)

func TestSignature_String(t *testing.T) {
	tests := []struct {
		name string
		sig  Signature
		want string
	}{
		{
			name: "simple endpoint no params",
			sig: Signature{
				Endpoint: "/posts",
			},
			want: "cms:posts",
		},
		{
			name: "endpoint with query params",
			sig: Signature{
				Endpoint: "/comments",
				Params: url.Values{
					"status": []string{"pending"},
				},
			},
			want: "cms:comments:status=pending",
		},
		{
			name: "endpoint with multiple query params (sorted)",
			sig: Signature{
				Endpoint: "/posts",
				Params: url.Values{
					"page":  []string{"2"},
					"limit": []string{"10"},
				},
			},
			want: "cms:posts:limit=10:page=2",
		},
		{
			name: "multi-value param joined in order",
			sig: Signature{
				Endpoint: "/events",
				Params: url.Values{
					"region": []string{"north", "south"},
				},
			},
			want: "cms:events:region=north,south",
		},
		{
			name: "scoped signature",
			sig: Signature{
				Endpoint: "/notifications",
				Scope:    "usr-9f2k",
			},
			want: "cms:notifications:scope=usr-9f2k",
		},
		{
			name: "complex signature with all parts",
			sig: Signature{
				Endpoint: "/comments",
				Params: url.Values{
					"status": []string{"pending"},
					"page":   []string{"1"},
				},
				Scope: "usr-9f2k",
			},
			want: "cms:comments:page=1:status=pending:scope=usr-9f2k",
		},
		{
			name: "deterministic ordering with many params",
			sig: Signature{
				Endpoint: "/hotels",
				Params: url.Values{
					"region": []string{"coastal"},
					"stars":  []string{"4"},
					"page":   []string{"3"},
				},
			},
			want: "cms:hotels:page=3:region=coastal:stars=4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sig.String()
			if got != tt.want {
				t.Errorf("Signature.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSignature_Determinism ensures same input always produces same signature
func TestSignature_Determinism(t *testing.T) {
	sig := Signature{
		Endpoint: "/posts",
		Params: url.Values{
			"page":   []string{"2"},
			"limit":  []string{"10"},
			"status": []string{"published"},
		},
		Scope: "usr-9f2k",
	}

	results := make([]string, 10)
	for i := 0; i < 10; i++ {
		results[i] = sig.String()
	}

	first := results[0]
	for i, result := range results {
		if result != first {
			t.Errorf("result[%d] = %v, want %v (not deterministic)", i, result, first)
		}
	}
}

func TestSignature_WithScope(t *testing.T) {
	base := NewSignature("/posts", url.Values{"page": {"1"}})
	scoped := base.WithScope("usr-1")

	if base.Scope != "" {
		t.Errorf("WithScope mutated the receiver: scope = %q", base.Scope)
	}
	if scoped.Scope != "usr-1" {
		t.Errorf("scoped.Scope = %q, want usr-1", scoped.Scope)
	}
	if base.String() == scoped.String() {
		t.Error("scoped and unscoped signatures must differ")
	}
}
