// Package testutil holds shared test fixtures.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// GeminiServer is an httptest server that speaks the Gemini streaming and
// model-listing wire formats.
type GeminiServer struct {
	*httptest.Server

	units     []string
	status    int
	errorBody string
	models    []string

	mu       sync.Mutex
	requests []string
}

// NewGeminiServer starts a fake Gemini upstream. With no options every
// stream completes immediately without content. The server is closed when
// the test ends.
func NewGeminiServer(t testing.TB, opts ...func(*GeminiServer)) *GeminiServer {
	t.Helper()
	g := &GeminiServer{models: []string{"gemini-test"}}
	for _, opt := range opts {
		opt(g)
	}
	g.Server = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.Close)
	return g
}

// TextUnit returns one streamed response unit whose first candidate carries text.
func TextUnit(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"role":"model","parts":[{"text":%q}]}}]}`, text)
}

// WithFragments streams one unit per text, in order.
func WithFragments(texts ...string) func(*GeminiServer) {
	return func(g *GeminiServer) {
		for _, text := range texts {
			g.units = append(g.units, TextUnit(text))
		}
	}
}

// WithRawUnits streams the given JSON units verbatim.
func WithRawUnits(units ...string) func(*GeminiServer) {
	return func(g *GeminiServer) { g.units = append(g.units, units...) }
}

// WithError makes every request fail with a Google API error body.
func WithError(code int, message, status string) func(*GeminiServer) {
	return func(g *GeminiServer) {
		g.status = code
		g.errorBody = fmt.Sprintf(`{"error":{"code":%d,"message":%q,"status":%q}}`, code, message, status)
	}
}

// WithModels sets the model names returned by the list endpoint.
func WithModels(names ...string) func(*GeminiServer) {
	return func(g *GeminiServer) { g.models = names }
}

// Requests returns the bodies of every streaming request received so far.
func (g *GeminiServer) Requests() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.requests))
	copy(out, g.requests)
	return out
}

func (g *GeminiServer) serve(w http.ResponseWriter, r *http.Request) {
	if g.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(g.status)
		_, _ = io.WriteString(w, g.errorBody)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, ":streamGenerateContent"):
		body, _ := io.ReadAll(r.Body)
		g.mu.Lock()
		g.requests = append(g.requests, string(body))
		g.mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, u := range g.units {
			_, _ = fmt.Fprintf(w, "data: %s\r\n\r\n", u)
			if flusher != nil {
				flusher.Flush()
			}
		}
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/models"):
		w.Header().Set("Content-Type", "application/json")
		entries := make([]string, 0, len(g.models))
		for _, m := range g.models {
			entries = append(entries, fmt.Sprintf(`{"name":"models/%s"}`, m))
		}
		_, _ = fmt.Fprintf(w, `{"models":[%s]}`, strings.Join(entries, ","))
	default:
		http.NotFound(w, r)
	}
}
