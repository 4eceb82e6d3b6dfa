package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newCSRFTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *csrfSource) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	source := newCSRFSource(srv.Client(), srv.URL+"/auth/csrf", "tw_csrf", "TestApp/1.0", zerolog.Nop())
	return srv, source
}

func TestCSRFSource_TokenIsCachedAfterWarmup(t *testing.T) {
	var warmups atomic.Int32
	_, source := newCSRFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		warmups.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "tw_csrf", Value: "token-1"})
		w.WriteHeader(http.StatusNoContent)
	})

	for i := 0; i < 3; i++ {
		token, err := source.Token(context.Background())
		if err != nil {
			t.Fatalf("Token call %d failed: %v", i, err)
		}
		if token != "token-1" {
			t.Errorf("Token call %d = %q, want token-1", i, token)
		}
	}

	if warmups.Load() != 1 {
		t.Errorf("warm-up calls = %d, want 1", warmups.Load())
	}
}

func TestCSRFSource_RefreshReplacesToken(t *testing.T) {
	var warmups atomic.Int32
	_, source := newCSRFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := warmups.Add(1)
		value := "token-1"
		if n > 1 {
			value = "token-2"
		}
		http.SetCookie(w, &http.Cookie{Name: "tw_csrf", Value: value})
		w.WriteHeader(http.StatusNoContent)
	})

	first, err := source.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first != "token-1" {
		t.Errorf("first token = %q", first)
	}

	refreshed, err := source.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if refreshed != "token-2" {
		t.Errorf("refreshed token = %q, want token-2", refreshed)
	}

	// Subsequent Token calls see the refreshed value without another warm-up.
	cached, err := source.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cached != "token-2" {
		t.Errorf("cached token after refresh = %q, want token-2", cached)
	}
	if warmups.Load() != 2 {
		t.Errorf("warm-up calls = %d, want 2", warmups.Load())
	}
}

func TestCSRFSource_WarmupServerError(t *testing.T) {
	_, source := newCSRFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := source.Token(context.Background())
	if err == nil {
		t.Fatal("expected error from failed warm-up")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should name the status, got %v", err)
	}
}

func TestCSRFSource_WarmupWithoutCookie(t *testing.T) {
	_, source := newCSRFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent) // no Set-Cookie
	})

	_, err := source.Token(context.Background())
	if err == nil {
		t.Fatal("expected error when the cookie is missing")
	}
	if !strings.Contains(err.Error(), "tw_csrf") {
		t.Errorf("error should name the missing cookie, got %v", err)
	}
}

func TestCSRFSource_ConcurrentWarmupsAreShared(t *testing.T) {
	var warmups atomic.Int32
	_, source := newCSRFTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		warmups.Add(1)
		time.Sleep(100 * time.Millisecond) // keep the flight open
		http.SetCookie(w, &http.Cookie{Name: "tw_csrf", Value: "shared-token"})
		w.WriteHeader(http.StatusNoContent)
	})

	const callers = 10
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = source.Token(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Errorf("caller %d: %v", i, errs[i])
		}
		if tokens[i] != "shared-token" {
			t.Errorf("caller %d token = %q", i, tokens[i])
		}
	}
	if warmups.Load() != 1 {
		t.Errorf("warm-up calls = %d, want 1 shared flight", warmups.Load())
	}
}
