// Package server implements the preview HTTP server.
//
// The server holds one graph in memory and serves its views as images, so a
// browser replaces the plot window of an interactive session. Handlers only
// read the graph; POST /cluster recomputes community labels under the write
// lock and bumps the generation so cached ETags go stale.
//
// Routes:
//
//	GET  /                       HTML index with links to every view
//	GET  /graph.{svg,png,jpg,dot} full graph (?layout=&title=&seed=)
//	GET  /heatmap/{metric}.svg   heatmap of a numeric attribute
//	GET  /path.svg               shortest path (?source=&target=)
//	POST /cluster                recompute cluster labels
//	GET  /export/{csv,json,gexf} download the graph
//	GET  /healthz                liveness and build info
//	GET  /metrics                Prometheus metrics, when Options.Metrics is set
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/cybergraph/pkg/graph"
	"github.com/matzehuels/cybergraph/pkg/httputil"
	"github.com/matzehuels/cybergraph/pkg/observability"
	"github.com/matzehuels/cybergraph/pkg/pipeline"
)

// DefaultAddr is the listen address used when Options.Addr is empty.
const DefaultAddr = "127.0.0.1:8080"

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Addr string
	// Defaults are applied to every view before query parameters.
	Defaults pipeline.Options
	// Metric is the heatmap attribute linked from the index page.
	Metric string
	Logger *log.Logger
	// OnChange is called under the write lock after the graph was modified,
	// typically to save it back to disk.
	OnChange func(*graph.Graph) error
	// Metrics, if set, is served at GET /metrics (usually promhttp).
	Metrics http.Handler
}

// Server serves one graph over HTTP.
type Server struct {
	runner   *pipeline.Runner
	opts     Options
	logger   *log.Logger
	instance string
	started  time.Time

	mu         sync.RWMutex
	g          *graph.Graph
	generation uint64
}

// New creates a server for g. The runner renders every view; a nil runner
// renders without a cache.
func New(g *graph.Graph, runner *pipeline.Runner, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Metric == "" {
		opts.Metric = pipeline.DefaultMetric
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	return &Server{
		runner:   runner,
		opts:     opts,
		logger:   opts.Logger,
		instance: uuid.NewString(),
		started:  time.Now(),
		g:        g,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.opts.Addr }

// Counts returns the current number of entities and relationships.
func (s *Server) Counts() (entities, relationships int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.EntityCount(), s.g.RelationshipCount()
}

// Handler returns the router with all routes and middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httputil.RequestID)
	r.Use(s.instrument)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/graph.{format}", s.handleGraph)
	r.Get("/heatmap/{metric}.svg", s.handleHeatmap)
	r.Get("/path.svg", s.handlePath)
	r.Post("/cluster", s.handleCluster)
	r.Get("/export/{format}", s.handleExport)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}
	return r
}

// ListenAndServe listens on the configured address and serves until ctx is
// canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving preview", "url", "http://"+ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("preview stopped")
	return nil
}

// instrument reports requests to the server hooks and the debug log.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", d,
			"request_id", httputil.RequestIDFrom(r.Context()))
	})
}
