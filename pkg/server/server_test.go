package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/cratecat/pkg/cache"
	"github.com/matzehuels/cratecat/pkg/observability"
	"github.com/matzehuels/cratecat/pkg/pipeline"
)

func sampleMetadata(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "deps", "rust", "testdata", "sample_metadata.json"))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(cache.NewMemoryCache(16, time.Hour), nil, logger)
	ts := httptest.NewServer(New(runner, opts, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postCatalog(t *testing.T, ts *httptest.Server, query string, body []byte) (*http.Response, []byte) {
	t.Helper()
	url := ts.URL + "/v1/catalog"
	if query != "" {
		url += "?" + query
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

// metadata builds a single-root cargo metadata document where the root
// depends on every given (name, version) pair under the registry source.
func metadata(pkgs ...[2]string) []byte {
	type pkg struct {
		Name    string  `json:"name"`
		Version string  `json:"version"`
		ID      string  `json:"id"`
		Source  *string `json:"source"`
	}
	type dep struct {
		Name     string           `json:"name"`
		Pkg      string           `json:"pkg"`
		DepKinds []map[string]any `json:"dep_kinds"`
	}
	type node struct {
		ID   string `json:"id"`
		Deps []dep  `json:"deps"`
	}
	registry := "registry+https://github.com/rust-lang/crates.io-index"
	packages := []pkg{{Name: "app", Version: "0.1.0", ID: "app"}}
	root := node{ID: "app", Deps: []dep{}}
	nodes := []node{}
	for _, p := range pkgs {
		id := p[0] + " " + p[1]
		packages = append(packages, pkg{Name: p[0], Version: p[1], ID: id, Source: &registry})
		root.Deps = append(root.Deps, dep{Name: p[0], Pkg: id, DepKinds: []map[string]any{{"kind": nil, "target": nil}}})
		nodes = append(nodes, node{ID: id, Deps: []dep{}})
	}
	data, _ := json.Marshal(map[string]any{
		"version":           1,
		"packages":          packages,
		"workspace_members": []string{"app"},
		"resolve":           map[string]any{"root": "app", "nodes": append([]node{root}, nodes...)},
	})
	return data
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "ok" {
		t.Errorf("GET /healthz = %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	ts := newTestServer(t, Options{})
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestCatalog(t *testing.T) {
	ts := newTestServer(t, Options{})
	raw := sampleMetadata(t)

	resp, body := postCatalog(t, ts, "", raw)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var got CatalogResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.CacheHit {
		t.Error("first request should miss the cache")
	}
	if len(got.DocumentHash) != 64 {
		t.Errorf("document_hash = %q", got.DocumentHash)
	}
	if len(got.Dependencies) != 10 {
		t.Fatalf("len(dependencies) = %d, want 10", len(got.Dependencies))
	}
	if e := got.Dependencies[0]; e.Name != "cc" || e.Epoch != "v1" {
		t.Errorf("first entry = %s@%s, want cc@v1", e.Name, e.Epoch)
	}

	_, body = postCatalog(t, ts, "", raw)
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if !got.CacheHit {
		t.Error("second request should hit the cache")
	}

	_, body = postCatalog(t, ts, "refresh=true", raw)
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.CacheHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestCatalog_KindsQuery(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, body := postCatalog(t, ts, "kinds=normal", sampleMetadata(t))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var got CatalogResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Dependencies) != 8 {
		t.Errorf("len(dependencies) = %d, want 8", len(got.Dependencies))
	}
}

func TestCatalog_EmptyGraph(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, body := postCatalog(t, ts, "", metadata())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"dependencies":[]`) {
		t.Errorf("body = %s", body)
	}
}

func TestCatalog_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		body   []byte
		status int
		code   string
	}{
		{"empty body", "", nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"not json", "", []byte(`{"version":`), http.StatusBadRequest, "INVALID_METADATA"},
		{"future version", "", []byte(`{"version": 2, "packages": [], "resolve": {"nodes": []}}`), http.StatusBadRequest, "UNSUPPORTED_FORMAT_VERSION"},
		{"malformed version", "", metadata([2]string{"log", "0.4"}), http.StatusBadRequest, "MALFORMED_VERSION"},
		{"conflict", "", metadata([2]string{"log", "0.4.17"}, [2]string{"log", "0.4.20"}), http.StatusUnprocessableEntity, "CONFLICTING_VERSIONS"},
		{"bad kind", "kinds=optional", metadata(), http.StatusBadRequest, "INVALID_INPUT"},
		{"bad bool", "refresh=maybe", metadata(), http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", "format=npm", metadata(), http.StatusBadRequest, "UNSUPPORTED"},
	}
	ts := newTestServer(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postCatalog(t, ts, tt.query, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			var e ErrorResponse
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatalf("decode error body %q: %v", body, err)
			}
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
			if e.Message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestCatalog_BodyTooLarge(t *testing.T) {
	ts := newTestServer(t, Options{MaxBody: 64})
	resp, body := postCatalog(t, ts, "", sampleMetadata(t))
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413 (%s)", resp.StatusCode, body)
	}
}

func TestMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	m := observability.NewPrometheus(prometheus.NewRegistry())
	observability.SetHTTPHooks(m)

	logger := log.New(io.Discard)
	h := New(pipeline.NewRunner(nil, nil, logger), Options{Metrics: m.Handler()}, logger).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/catalog", bytes.NewReader(metadata())))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /v1/catalog = %d: %s", rec.Code, rec.Body)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/catalog?kinds=bogus", bytes.NewReader(metadata())))

	if n := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/v1/catalog", "200")); n != 1 {
		t.Errorf("POST /v1/catalog 200 count = %v, want 1", n)
	}
	if n := testutil.ToFloat64(m.HTTPErrors.WithLabelValues("POST", "/v1/catalog", "INVALID_INPUT")); n != 1 {
		t.Errorf("INVALID_INPUT count = %v, want 1", n)
	}
	if n := testutil.ToFloat64(m.HTTPInFlight); n != 0 {
		t.Errorf("in flight = %v, want 0", n)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "cratecat_http_requests_total") {
		t.Errorf("GET /metrics = %d, body lacks cratecat_http_requests_total", rec.Code)
	}
}

func TestServe_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	s := New(pipeline.NewRunner(nil, nil, logger), Options{ShutdownTimeout: time.Second}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
