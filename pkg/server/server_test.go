package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/cybergraph/pkg/graph"
	"github.com/matzehuels/cybergraph/pkg/httputil"
	"github.com/matzehuels/cybergraph/pkg/observability"
	"github.com/matzehuels/cybergraph/pkg/pipeline"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	doc := `{
		"entities": [
			{"name": "Domain: example.com", "attributes": {"type": "Domain", "vulnerability_score": 2}},
			{"name": "IP: 192.168.1.1", "attributes": {"type": "IP", "vulnerability_score": 8}},
			{"name": "Person: Alice", "attributes": {"type": "Person"}},
			{"name": "Person: Mallory", "attributes": {"type": "Person"}}
		],
		"relationships": [
			{"source": "Domain: example.com", "target": "IP: 192.168.1.1", "attributes": {"relationship": "Resolves to"}},
			{"source": "Person: Alice", "target": "Domain: example.com", "attributes": {"relationship": "Owns"}}
		]
	}`
	g, err := graph.ReadGraph(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	s := New(testGraph(t), nil, opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestViews(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    string
	}{
		{"/graph.svg", http.StatusOK, "image/svg+xml", "<svg"},
		{"/graph.svg?layout=circular&title=Lab", http.StatusOK, "image/svg+xml", "Lab"},
		{"/graph.dot?layout=kamada_kawai", http.StatusOK, "text/vnd.graphviz", `mode="KK"`},
		{"/graph.pdf", http.StatusBadRequest, "application/json", "INVALID_FORMAT"},
		{"/graph.svg?seed=abc", http.StatusBadRequest, "application/json", "INVALID_INPUT"},
		{"/heatmap/vulnerability_score.svg", http.StatusOK, "image/svg+xml", "<svg"},
		{"/path.svg?source=Person:%20Alice&target=IP:%20192.168.1.1", http.StatusOK, "image/svg+xml", "<svg"},
		{"/path.svg?source=Person:%20Alice", http.StatusBadRequest, "application/json", "INVALID_INPUT"},
		{"/path.svg?source=Person:%20Alice&target=Person:%20Eve", http.StatusNotFound, "application/json", "ENTITY_NOT_FOUND"},
		{"/path.svg?source=Person:%20Alice&target=Person:%20Mallory", http.StatusNotFound, "text/plain", "no path between Person: Alice and Person: Mallory"},
		{"/export/csv", http.StatusOK, "text/csv", "Entity,Type,Attributes"},
		{"/export/json", http.StatusOK, "application/json", `"relationships"`},
		{"/export/gexf", http.StatusOK, "application/gexf+xml", "<gexf"},
		{"/export/xml", http.StatusBadRequest, "application/json", "INVALID_FORMAT"},
		{"/", http.StatusOK, "text/html", "Person: Mallory"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path, nil)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (body %q)", resp.StatusCode, tt.status, body)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want prefix %q", ct, tt.contentType)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("body does not contain %q", tt.contains)
			}
			if resp.Header.Get(httputil.RequestIDHeader) == "" {
				t.Error("missing request ID header")
			}
		})
	}
}

func TestExportAttachment(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	resp, _ := get(t, ts.URL+"/export/gexf", nil)
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="graph.gexf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestETagAndCluster(t *testing.T) {
	var saved int
	_, ts := newTestServer(t, Options{OnChange: func(*graph.Graph) error {
		saved++
		return nil
	}})

	resp, _ := get(t, ts.URL+"/graph.dot", nil)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	resp, body := get(t, ts.URL+"/graph.dot", http.Header{"If-None-Match": {etag}})
	if resp.StatusCode != http.StatusNotModified || body != "" {
		t.Errorf("conditional GET = %d %q, want 304", resp.StatusCode, body)
	}

	post, err := http.Post(ts.URL+"/cluster", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer post.Body.Close()
	if post.StatusCode != http.StatusOK {
		t.Fatalf("POST /cluster status = %d", post.StatusCode)
	}
	var cr clusterResponse
	if err := json.NewDecoder(post.Body).Decode(&cr); err != nil {
		t.Fatal(err)
	}
	if len(cr.Labels) != 4 || cr.Clusters < 2 {
		t.Errorf("cluster response = %+v", cr)
	}
	if saved != 1 {
		t.Errorf("OnChange called %d times, want 1", saved)
	}

	resp, body = get(t, ts.URL+"/graph.dot", http.Header{"If-None-Match": {etag}})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("after clustering status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "cluster: ") {
		t.Error("clustered graph should expose cluster labels in tooltips")
	}

	_, index := get(t, ts.URL+"/", nil)
	if strings.Contains(index, "<td>-</td>") {
		t.Error("index should show cluster labels after clustering")
	}
}

func TestETagRandomLayout(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	tests := []struct {
		query    string
		wantETag bool
	}{
		{"?layout=random", false},
		{"?layout=no_such_layout", false},
		{"?layout=random&seed=7", true},
		{"?layout=circular", true},
	}
	for _, tt := range tests {
		resp, _ := get(t, ts.URL+"/graph.dot"+tt.query, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.query, resp.StatusCode)
		}
		if got := resp.Header.Get("ETag") != ""; got != tt.wantETag {
			t.Errorf("%s: has ETag = %v, want %v", tt.query, got, tt.wantETag)
		}
	}

	resp, _ := get(t, ts.URL+"/graph.dot?layout=random", http.Header{"If-None-Match": {"*"}})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("unseeded random view answered %d to If-None-Match, want 200", resp.StatusCode)
	}
}

func TestClusterMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	resp, _ := get(t, ts.URL+"/cluster", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /cluster status = %d, want 405", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	s, ts := newTestServer(t, Options{})
	resp, body := get(t, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h healthResponse
	if err := json.Unmarshal([]byte(body), &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "healthy" || h.Entities != 4 || h.Relationships != 2 {
		t.Errorf("health = %+v", h)
	}
	if h.Instance != s.instance {
		t.Errorf("instance = %q, want %q", h.Instance, s.instance)
	}
	if _, err := time.Parse(time.RFC3339, h.Timestamp); err != nil {
		t.Errorf("timestamp %q: %v", h.Timestamp, err)
	}
}

type recordingHooks struct {
	observability.NoopServerHooks
	mu     sync.Mutex
	routes []string
}

func (h *recordingHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func TestServerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetServerHooks(hooks)
	defer observability.Reset()

	_, ts := newTestServer(t, Options{})
	get(t, ts.URL+"/export/csv", nil)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 1 || hooks.routes[0] != "GET /export/{format}" {
		t.Errorf("routes = %v", hooks.routes)
	}
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := New(testGraph(t), pipeline.NewRunner(nil, nil, nil), Options{
		Logger: log.NewWithOptions(io.Discard, log.Options{}),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, _ := get(t, "http://"+ln.Addr().String()+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Cleanup(observability.Reset)
	reg := prometheus.NewRegistry()
	observability.SetHooks(observability.NewMetricsHooks(reg))

	s, ts := newTestServer(t, Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})
	if entities, rels := s.Counts(); entities != 4 || rels != 2 {
		t.Errorf("Counts() = %d, %d", entities, rels)
	}

	get(t, ts.URL+"/graph.dot", nil)
	resp, body := get(t, ts.URL+"/metrics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{
		`cybergraph_http_requests_total{method="GET",route="/graph.{format}",status="200"} 1`,
		"cybergraph_render_duration_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetricsEndpointDisabled(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	if resp, _ := get(t, ts.URL+"/metrics", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
