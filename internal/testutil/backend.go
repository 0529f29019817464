package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// APIPrefix is the path the fake backend mounts its API under.
const APIPrefix = "/core/api"

// Request is one call observed by the fake backend. Path excludes APIPrefix.
type Request struct {
	Method    string
	Path      string
	Auth      string
	RequestID string
	Body      []byte
}

// Decode unmarshals the recorded body into v.
func (r Request) Decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode recorded body %q: %v", r.Body, err)
	}
}

// Backend is an httptest server standing in for the dispatch API.
// Unregistered routes answer 404 like the real router does.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []Request
}

// NewBackend starts a fake backend closed via t.Cleanup.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{routes: map[string]http.HandlerFunc{}}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API base URL clients should be configured with.
func (b *Backend) URL() string { return b.Server.URL + APIPrefix }

// Handle registers h for method and path (e.g. "GET", "/pedidos/").
func (b *Backend) Handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

// JSON registers a fixed JSON response.
func (b *Backend) JSON(method, path string, status int, body any) {
	b.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Requests returns a copy of everything observed so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Count returns how many calls matched method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Mutations counts non-GET calls.
func (b *Backend) Mutations() int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method != http.MethodGet {
			n++
		}
	}
	return n
}

// Last returns the most recent call matching method and path.
func (b *Backend) Last(method, path string) (Request, bool) {
	reqs := b.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return Request{}, false
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, APIPrefix)

	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method:    r.Method,
		Path:      path,
		Auth:      r.Header.Get("Authorization"),
		RequestID: r.Header.Get("X-Request-ID"),
		Body:      body,
	})
	h, ok := b.routes[r.Method+" "+path]
	b.mu.Unlock()

	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	h(w, r)
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
