package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tourwise/cms-client/internal/gateway"
	"github.com/tourwise/cms-client/internal/ratelimit"
	"github.com/tourwise/cms-client/internal/testutil"
	"github.com/tourwise/cms-client/pkg/cache"
	"github.com/tourwise/cms-client/pkg/client"
	"github.com/tourwise/cms-client/pkg/relay"
	"github.com/tourwise/cms-client/pkg/resources"
	"github.com/tourwise/cms-client/pkg/session"
)

const editorToken = "tok-editor"

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})
	t.Cleanup(func() { redisClient.Close() })

	return redisClient
}

// setupGateway assembles the full stack: mock backend, HTTP client, resource
// cache, Redis-backed session verification, relay and the gateway server.
func setupGateway(t *testing.T, redisClient *redis.Client) (*httptest.Server, *testutil.MockBackend) {
	t.Helper()

	backend := testutil.NewMockBackend()
	t.Cleanup(backend.Close)
	backend.SetSession(editorToken, session.Session{Subject: "editor-1", Name: "Edna", Role: "editor"})

	c, err := client.New(client.DefaultConfig(backend.URL()))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	store := cache.NewStore(cache.DefaultConfig())
	t.Cleanup(store.Close)

	api := resources.New(c, store)

	auth, err := session.NewAuthResolver(session.DefaultAuthConfig(backend.URL()))
	if err != nil {
		t.Fatalf("Failed to create resolver: %v", err)
	}
	resolver := session.NewCachedResolver(auth, session.NewCache(redisClient, time.Minute))

	rly, err := relay.New(relay.Config{
		UpstreamURL: backend.URL() + "/notifications/stream",
		OnEvent: func(event string) {
			switch event {
			case relay.EventNotification:
				api.Notifications.Invalidate(
					cache.ListTag(resources.TypeNotification),
					cache.UnreadCountTag(resources.TypeNotification),
				)
			case relay.EventUnreadCount:
				api.Notifications.Invalidate(cache.UnreadCountTag(resources.TypeNotification))
			}
		},
	}, resolver)
	if err != nil {
		t.Fatalf("Failed to create relay: %v", err)
	}

	limiter := ratelimit.New(100, 100)
	t.Cleanup(limiter.Stop)

	srv, err := gateway.NewServer(gateway.Config{
		API:      api,
		Client:   c,
		Relay:    rly,
		Resolver: resolver,
		Limiter:  limiter,
	})
	if err != nil {
		t.Fatalf("Failed to create gateway: %v", err)
	}

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return ts, backend
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Success bool            `json:"success"`
}

// doRequest performs one request against the gateway as the editor.
func doRequest(t *testing.T, ts *httptest.Server, method, path, body string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: editorToken})
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("Failed to decode envelope %q: %v", raw, err)
		}
	}
	return resp, env
}

// TestEditorialFlow tests the complete read-mutate-read cycle: a cached list
// is served without backend traffic until a mutation marks it stale.
func TestEditorialFlow(t *testing.T) {
	redisClient := setupRedis(t)
	ts, backend := setupGateway(t, redisClient)

	listFetches := 0
	backend.SetHandler("/posts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Method == http.MethodGet {
			listFetches++
			fmt.Fprintf(w, `{"data": [{"id": "p1", "title": "A"}], "total": %d, "page": 1, "limit": 20, "total_pages": 1}`, listFetches)
			return
		}
		fmt.Fprint(w, `{"id": "p2", "title": "Launch"}`)
	})

	// Request 1: cache miss, fetched from the backend.
	t.Log("Request 1: list fetch")
	resp, _ := doRequest(t, ts, http.MethodGet, "/api/posts", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("List status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if listFetches != 1 {
		t.Errorf("Backend list fetches = %d, want 1", listFetches)
	}

	// Request 2: served from the cache.
	t.Log("Request 2: cache hit")
	doRequest(t, ts, http.MethodGet, "/api/posts", "")
	if listFetches != 1 {
		t.Errorf("Backend list fetches = %d, want 1 (cache hit)", listFetches)
	}

	// Mutation: the anti-forgery token is primed automatically and the
	// list entry is marked stale before the response returns.
	t.Log("Request 3: create post")
	resp, _ = doRequest(t, ts, http.MethodPost, "/api/posts", `{"title": "Launch"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if backend.GetWarmupCount() != 1 {
		t.Errorf("Warm-up calls = %d, want 1", backend.GetWarmupCount())
	}

	// Request 4: the stale list refetches.
	t.Log("Request 4: refetch after invalidation")
	doRequest(t, ts, http.MethodGet, "/api/posts", "")
	if listFetches != 2 {
		t.Errorf("Backend list fetches = %d, want 2 (refetched after mutation)", listFetches)
	}
}

// TestSessionVerificationCachedInRedis tests that a verified session is
// served from Redis on subsequent requests instead of re-verifying.
func TestSessionVerificationCachedInRedis(t *testing.T) {
	redisClient := setupRedis(t)
	ts, backend := setupGateway(t, redisClient)

	backend.SetResponse("/comments", testutil.NewJSONResponse(
		`{"data": [], "total": 0, "page": 1, "limit": 20, "total_pages": 0}`))

	// First request verifies against the auth endpoint and fetches the list.
	resp, _ := doRequest(t, ts, http.MethodGet, "/api/comments", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if backend.GetRequestCount() != 2 {
		t.Fatalf("Backend requests = %d, want 2 (verify + list)", backend.GetRequestCount())
	}

	// Second request: session comes from Redis, list comes from the cache.
	resp, _ = doRequest(t, ts, http.MethodGet, "/api/comments", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if backend.GetRequestCount() != 2 {
		t.Errorf("Backend requests = %d, want 2 (no re-verification, no refetch)", backend.GetRequestCount())
	}
}

// TestRotatedTokenRecoveredWithOneRetry tests the anti-forgery refresh cycle:
// a mutation rejected with a stale token refreshes once and retries once.
func TestRotatedTokenRecoveredWithOneRetry(t *testing.T) {
	redisClient := setupRedis(t)
	ts, backend := setupGateway(t, redisClient)

	resp, _ := doRequest(t, ts, http.MethodPost, "/api/posts", `{"title": "First"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("First create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if backend.GetWarmupCount() != 1 {
		t.Fatalf("Warm-up calls = %d, want 1", backend.GetWarmupCount())
	}

	// The backend rotates the token without telling the client.
	backend.RotateCSRF()

	resp, _ = doRequest(t, ts, http.MethodPost, "/api/posts", `{"title": "Second"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Second create status = %d, want %d (recovered after refresh)", resp.StatusCode, http.StatusCreated)
	}
	if backend.GetRejectedCount() != 1 {
		t.Errorf("Rejected mutations = %d, want 1", backend.GetRejectedCount())
	}
	if backend.GetWarmupCount() != 2 {
		t.Errorf("Warm-up calls = %d, want 2 (one refresh)", backend.GetWarmupCount())
	}
}

// TestOutageServesLastGoodValue tests that a failed refetch keeps serving
// the last good value alongside the error, and recovers once the backend is
// healthy again.
func TestOutageServesLastGoodValue(t *testing.T) {
	redisClient := setupRedis(t)
	ts, backend := setupGateway(t, redisClient)

	backendUp := true
	backend.SetHandler("/posts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"id": "p2"}`)
			return
		}
		if !backendUp {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message": "backend exploded"}`)
			return
		}
		fmt.Fprint(w, `{"data": [{"id": "p1"}], "total": 1, "page": 1, "limit": 20, "total_pages": 1}`)
	})

	// Prime the cache, then invalidate it with a mutation.
	resp, _ := doRequest(t, ts, http.MethodGet, "/api/posts", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Prime status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp, _ = doRequest(t, ts, http.MethodPost, "/api/posts", `{"title": "Launch"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	// The refetch fails, but the previous value rides along with the error.
	backendUp = false
	resp, env := doRequest(t, ts, http.MethodGet, "/api/posts", "")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Outage status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
	if env.Success {
		t.Error("Outage response should not be marked successful")
	}
	if env.Error != "backend exploded" {
		t.Errorf("Outage error = %q, want %q", env.Error, "backend exploded")
	}
	var page resources.Page[resources.Post]
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("Failed to decode stale page: %v", err)
	}
	if page.Total != 1 || len(page.Data) != 1 {
		t.Errorf("Stale page = total %d with %d rows, want the last good value", page.Total, len(page.Data))
	}

	// The entry stays stale, so the next read after recovery refetches.
	backendUp = true
	resp, env = doRequest(t, ts, http.MethodGet, "/api/posts", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Recovery status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !env.Success {
		t.Error("Recovered response should be successful")
	}
}

// TestStreamEventRefreshesSubscribedCounter tests the push path: an event
// relayed while the unread counter is subscribed refetches it immediately.
func TestStreamEventRefreshesSubscribedCounter(t *testing.T) {
	redisClient := setupRedis(t)
	ts, backend := setupGateway(t, redisClient)

	var countFetches atomic.Int32
	backend.SetHandler("/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if countFetches.Add(1) == 1 {
			fmt.Fprint(w, `{"count": 1}`)
			return
		}
		fmt.Fprint(w, `{"count": 2}`)
	})
	backend.SetHandler("/notifications/stream", testutil.NewStreamHandler(
		testutil.ScriptedEvent{Name: "connected", Data: `{}`},
		testutil.ScriptedEvent{Name: "notification", Data: `{"id": "n1"}`},
	))

	resp, env := doRequest(t, ts, http.MethodGet, "/api/notifications/unread-count", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Count status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var count struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &count); err != nil {
		t.Fatalf("Failed to decode count: %v", err)
	}
	if count.Count != 1 {
		t.Fatalf("Initial count = %d, want 1", count.Count)
	}

	// Open the stream; the relayed notification event invalidates the
	// subscribed counter, which refetches without any client poll.
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/notifications/stream", nil)
	if err != nil {
		t.Fatalf("Failed to build stream request: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: editorToken})

	streamResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Stream request failed: %v", err)
	}
	streamBody, _ := io.ReadAll(streamResp.Body)
	streamResp.Body.Close()
	if !strings.Contains(string(streamBody), "event: notification") {
		t.Fatalf("Stream body missing notification event: %q", streamBody)
	}

	// The refetch runs in the background; give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, env = doRequest(t, ts, http.MethodGet, "/api/notifications/unread-count", "")
		if err := json.Unmarshal(env.Data, &count); err != nil {
			t.Fatalf("Failed to decode count: %v", err)
		}
		if count.Count == 2 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if count.Count != 2 {
		t.Errorf("Count after stream event = %d, want 2", count.Count)
	}
}
