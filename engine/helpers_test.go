package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	mirage "github.com/Paranoid-AF/mirage"
)

// makeResults builds a valid document with n results.
func makeResults(n int, withPanel bool) *mirage.SearchResults {
	r := &mirage.SearchResults{Results: make([]mirage.SearchResult, n)}
	for i := range r.Results {
		r.Results[i] = mirage.SearchResult{
			Title:   fmt.Sprintf("Result %d", i+1),
			Excerpt: fmt.Sprintf("Excerpt for result %d.", i+1),
		}
	}
	if withPanel {
		r.KnowledgePanel = &mirage.KnowledgePanel{
			Name:     "Cats",
			Blurb:    "Small domesticated carnivorous mammals.",
			Metadata: map[string]string{"Kingdom": "Animalia", "Order": "Carnivora"},
		}
	}
	return r
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// envelope wraps content the way the completion service does: as a JSON
// string inside a JSON object.
func envelope(t *testing.T, content string) string {
	t.Helper()
	return mustJSON(t, map[string]string{"content": content})
}

// fakeService is a stand-in completion service that counts requests and
// records the last request body.
type fakeService struct {
	server   *httptest.Server
	calls    atomic.Int64
	lastBody atomic.Value // string
}

func newFakeService(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *fakeService {
	t.Helper()
	fs := &fakeService{}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		fs.lastBody.Store(string(body))
		handler(w, r)
	}))
	t.Cleanup(fs.server.Close)
	return fs
}

// respondWith returns a handler that always answers with body.
func respondWith(body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

func (fs *fakeService) body() string {
	s, _ := fs.lastBody.Load().(string)
	return s
}

func (fs *fakeService) engine(opts ...Option) *Engine {
	base := []Option{
		WithClient(NewClient(fs.server.URL+"/completion", 0)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(append(base, opts...)...)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := mirage.ErrorCode(err); got != code {
		t.Errorf("expected code %q, got %q (%v)", code, got, err)
	}
}

func assertContains(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Errorf("expected %q to contain %q", s, sub)
	}
}
