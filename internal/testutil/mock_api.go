// Package testutil provides a mock paginated JSON API for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
)

// RecordedRequest is one request received by the mock.
type RecordedRequest struct {
	Path   string
	Query  url.Values
	Header http.Header
}

// MockAPI is a configurable mock API server.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	requests []RecordedRequest

	failAfter  int
	failStatus int
}

// NewMockAPI starts a new mock server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		})
		failing := mock.failAfter > 0 && len(mock.requests) > mock.failAfter
		status := mock.failStatus
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if failing {
			writeJSON(w, status, map[string]any{"error": map[string]any{"status": status, "message": "injected failure"}})
			return
		}
		if !exists {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"status": 404, "message": "no such endpoint"}})
			return
		}
		handler(w, r)
	}))

	return mock
}

// URL returns the mock server origin.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Requests returns a copy of every request received so far.
func (m *MockAPI) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RecordedRequest(nil), m.requests...)
}

// Reset clears recorded requests and injected failures.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.failAfter = 0
	m.failStatus = 0
}

// FailAfter makes every request after the first n respond with status.
func (m *MockAPI) FailAfter(n, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	m.failStatus = status
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// ServeOffsetChain serves pages of items at path, selected by the offset query
// param. Every page links its neighbours with absolute URLs on the mock origin.
// A nil item is served as JSON null.
func (m *MockAPI) ServeOffsetChain(path string, pages ...[]any) {
	offsets := make([]int, len(pages))
	total := 0
	for i, items := range pages {
		offsets[i] = total
		total += len(items)
	}

	link := func(i int) any {
		if i < 0 || i >= len(pages) {
			return nil
		}
		return fmt.Sprintf("%s%s?offset=%d&limit=%d", m.URL(), path, offsets[i], len(pages[i]))
	}

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		for i, start := range offsets {
			if start != offset {
				continue
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"href":     fmt.Sprintf("%s%s?offset=%d", m.URL(), path, start),
				"limit":    limitOf(r, len(pages[i])),
				"offset":   start,
				"total":    total,
				"next":     link(i + 1),
				"previous": link(i - 1),
				"items":    nonNil(pages[i]),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"status": 400, "message": "bad offset"}})
	})
}

// CursorToken is the token the mock issues for the i-th page of a cursor chain.
func CursorToken(i int) string {
	return "c" + strconv.Itoa(i)
}

// ServeCursorChain serves pages of items at path. A request without a token gets
// the first page listed in start; after=CursorToken(i) and before=CursorToken(i)
// both resolve to page i.
func (m *MockAPI) ServeCursorChain(path string, start int, pages ...[]any) {
	token := func(i int) any {
		if i < 0 || i >= len(pages) {
			return nil
		}
		return CursorToken(i)
	}

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		index := start
		switch {
		case q.Has("after"):
			index = indexOf(q.Get("after"), len(pages))
		case q.Has("before"):
			index = indexOf(q.Get("before"), len(pages))
		}
		if index < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"status": 400, "message": "bad cursor"}})
			return
		}

		var next any
		if after := token(index + 1); after != nil {
			next = fmt.Sprintf("%s%s?after=%s", m.URL(), path, after)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"href":    m.URL() + r.URL.RequestURI(),
			"limit":   limitOf(r, len(pages[index])),
			"next":    next,
			"cursors": map[string]any{"after": token(index + 1), "before": token(index - 1)},
			"items":   nonNil(pages[index]),
		})
	})
}

func indexOf(token string, n int) int {
	for i := 0; i < n; i++ {
		if CursorToken(i) == token {
			return i
		}
	}
	return -1
}

func limitOf(r *http.Request, fallback int) int {
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		return limit
	}
	return fallback
}

func nonNil(items []any) []any {
	if items == nil {
		return []any{}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
