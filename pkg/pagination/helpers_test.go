package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://api.example"

type track struct {
	ID string `json:"id"`
}

type request struct {
	path  string
	query []QueryParam
}

func (r request) param(key string) (string, bool) {
	for _, q := range r.query {
		if q.Key == key {
			return q.Value, true
		}
	}
	return "", false
}

// fakeGetter serves canned JSON bodies keyed by path plus every non-limit query param.
type fakeGetter struct {
	mu       sync.Mutex
	base     string
	bodies   map[string]string
	failAt   int
	failErr  error
	requests []request
}

func newFakeGetter() *fakeGetter {
	return &fakeGetter{base: testBaseURL, bodies: make(map[string]string)}
}

func (f *fakeGetter) BaseURL() string { return f.base }

func (f *fakeGetter) Get(_ context.Context, path string, query []QueryParam, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, request{path: path, query: query})
	if f.failAt > 0 && len(f.requests) == f.failAt {
		return f.failErr
	}

	body, ok := f.bodies[requestKey(path, query)]
	if !ok {
		return fmt.Errorf("unexpected request %s %v", path, query)
	}
	return json.Unmarshal([]byte(body), out)
}

func (f *fakeGetter) serve(t *testing.T, key string, page any) {
	t.Helper()
	data, err := json.Marshal(page)
	require.NoError(t, err)
	f.bodies[key] = string(data)
}

func requestKey(path string, query []QueryParam) string {
	key := path
	for _, q := range query {
		if q.Key == "limit" {
			continue
		}
		key += "|" + q.Key + "=" + q.Value
	}
	return key
}

func strPtr(s string) *string { return &s }

func tracks(ids ...string) []Nullable[track] {
	items := make([]Nullable[track], 0, len(ids))
	for _, id := range ids {
		if id == "" {
			items = append(items, None[track]())
			continue
		}
		items = append(items, Some(track{ID: id}))
	}
	return items
}

func offsetPath(offset int) string {
	return fmt.Sprintf("/v1/tracks?offset=%d", offset)
}

func offsetURL(offset int) *string {
	return strPtr(testBaseURL + offsetPath(offset))
}

// recordingWait counts pauses instead of sleeping.
type recordingWait struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *recordingWait) wait(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, d)
	return nil
}

func (r *recordingWait) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestAggregator(rec *recordingWait) *Aggregator {
	a := NewAggregator(DefaultConfig())
	a.wait = rec.wait
	return a
}
