package integration

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/paged-api-client/internal/testutil"
	"github.com/Sternrassler/paged-api-client/pkg/auth"
	"github.com/Sternrassler/paged-api-client/pkg/client"
	"github.com/Sternrassler/paged-api-client/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/oauth2"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

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

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// countingSource issues a fresh token per call and counts the calls.
type countingSource struct {
	calls atomic.Int32
}

func (s *countingSource) Token() (*oauth2.Token, error) {
	s.calls.Add(1)
	return &oauth2.Token{
		AccessToken: "integration-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

func newClient(t *testing.T, baseURL string, tokens oauth2.TokenSource) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig(baseURL, "TestApp/1.0.0 (integration@test.com)")
	cfg.TokenSource = tokens
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

type track struct {
	ID string `json:"id"`
}

// TestFullAggregationFlow tests Token Store → Client → Offset Pages → Aggregation.
func TestFullAggregationFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeOffsetChain("/v1/me/tracks",
		[]any{map[string]any{"id": "a"}, nil},
		[]any{map[string]any{"id": "b"}},
		[]any{map[string]any{"id": "c"}},
	)

	ctx := context.Background()
	store := auth.NewStore(redisClient)
	key := auth.TokenKey{Name: "integration", Scopes: []string{"library-read"}}
	upstream := &countingSource{}

	c := newClient(t, mock.URL(), auth.CachedTokenSource(ctx, store, key, upstream))

	// Start in the middle so both directions are walked
	middle, err := pagination.FetchOffsetPage[track](ctx, c, "/v1/me/tracks", []pagination.QueryParam{{Key: "offset", Value: "2"}})
	if err != nil {
		t.Fatalf("First page failed: %v", err)
	}

	agg := pagination.NewAggregator(pagination.Config{Interval: 10 * time.Millisecond})
	items, err := middle.All(ctx, c, agg)
	if err != nil {
		t.Fatalf("Aggregation failed: %v", err)
	}

	var ids []string
	for _, item := range items {
		if v, ok := item.Get(); ok {
			ids = append(ids, v.ID)
		} else {
			ids = append(ids, "<null>")
		}
	}
	want := []string{"a", "<null>", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("Aggregated ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}

	requests := mock.Requests()
	if len(requests) != 3 {
		t.Errorf("API requests = %d, want 3", len(requests))
	}
	for i, req := range requests {
		if got := req.Header.Get("Authorization"); got != "Bearer integration-token" {
			t.Errorf("request %d Authorization = %q", i, got)
		}
		if i > 0 && req.Query.Get("limit") != "50" {
			t.Errorf("request %d limit = %q, want 50", i, req.Query.Get("limit"))
		}
	}

	if upstream.calls.Load() != 1 {
		t.Errorf("Upstream token calls = %d, want 1", upstream.calls.Load())
	}

	// The token is shared: a second client never reaches the upstream
	entry, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Token not stored: %v", err)
	}
	if entry.AccessToken != "integration-token" {
		t.Errorf("Stored token = %q", entry.AccessToken)
	}

	ttl := redisClient.TTL(ctx, key.String()).Val()
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("Stored TTL = %v, want within (0, 1h]", ttl)
	}

	second := &countingSource{}
	c2 := newClient(t, mock.URL(), auth.CachedTokenSource(ctx, store, key, second))
	if _, err := pagination.FetchOffsetPage[track](ctx, c2, "/v1/me/tracks", nil); err != nil {
		t.Fatalf("Second client request failed: %v", err)
	}
	if second.calls.Load() != 0 {
		t.Errorf("Second upstream calls = %d, want 0", second.calls.Load())
	}
}

// TestCursorAggregationInterval tests the delay between continuation fetches.
func TestCursorAggregationInterval(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeCursorChain("/v1/me/player/recently-played", 0,
		[]any{map[string]any{"id": "1"}},
		[]any{map[string]any{"id": "2"}},
		[]any{map[string]any{"id": "3"}},
	)

	ctx := context.Background()
	key := auth.TokenKey{Name: "cursor-integration"}
	c := newClient(t, mock.URL(), auth.CachedTokenSource(ctx, auth.NewStore(redisClient), key, &countingSource{}))

	first, err := pagination.FetchCursorPage[track](ctx, c, pagination.Path("/v1/me/player/recently-played"), nil)
	if err != nil {
		t.Fatalf("First page failed: %v", err)
	}

	interval := 30 * time.Millisecond
	start := time.Now()
	items, err := first.Remaining(ctx, c, pagination.NewAggregator(pagination.Config{Interval: interval}))
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Aggregation failed: %v", err)
	}

	if len(items) != 3 {
		t.Errorf("Aggregated items = %d, want 3", len(items))
	}
	// Two continuation fetches, each followed by one interval
	if elapsed < 2*interval {
		t.Errorf("Aggregation took %v, want at least %v", elapsed, 2*interval)
	}
}

// TestAggregationServerError tests that a failing continuation discards partial results.
func TestAggregationServerError(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.ServeOffsetChain("/v1/items", []any{1}, []any{2}, []any{3})

	ctx := context.Background()
	key := auth.TokenKey{Name: "error-integration"}
	c := newClient(t, mock.URL(), auth.CachedTokenSource(ctx, auth.NewStore(redisClient), key, &countingSource{}))

	first, err := pagination.FetchOffsetPage[int](ctx, c, "/v1/items", nil)
	if err != nil {
		t.Fatalf("First page failed: %v", err)
	}

	mock.FailAfter(2, http.StatusBadGateway)

	items, err := first.Remaining(ctx, c, pagination.NewAggregator(pagination.Config{}))
	if err == nil {
		t.Fatal("Expected aggregation error")
	}
	if items != nil {
		t.Errorf("Partial items returned: %v", items)
	}
	if got := client.StatusCode(err); got != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want %d", got, http.StatusBadGateway)
	}
}
