package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cybergraph/pkg/buildinfo"
	"github.com/matzehuels/cybergraph/pkg/cache"
	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
	"github.com/matzehuels/cybergraph/pkg/graph"
	"github.com/matzehuels/cybergraph/pkg/httputil"
	cgio "github.com/matzehuels/cybergraph/pkg/io"
	"github.com/matzehuels/cybergraph/pkg/pipeline"
)

type renderFunc func(ctx context.Context, g *graph.Graph, opts pipeline.Options) (*pipeline.Result, error)

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := s.viewOptions(r)
	if err != nil {
		httputil.RespondError(w, r, err)
		return
	}
	opts.Format = chi.URLParam(r, "format")
	s.serveView(w, r, opts, s.runner.Visualize)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	opts, err := s.viewOptions(r)
	if err != nil {
		httputil.RespondError(w, r, err)
		return
	}
	opts.Metric = chi.URLParam(r, "metric")
	opts.Format = "svg"
	s.serveView(w, r, opts, s.runner.Heatmap)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	source, target := r.URL.Query().Get("source"), r.URL.Query().Get("target")
	if source == "" || target == "" {
		httputil.RespondError(w, r, cgerrors.New(cgerrors.ErrCodeInvalidInput, "source and target are required"))
		return
	}
	opts, err := s.viewOptions(r)
	if err != nil {
		httputil.RespondError(w, r, err)
		return
	}
	opts.Format = "svg"

	s.mu.RLock()
	etag := s.etag(r, &opts)
	res, err := s.runner.HighlightPath(r.Context(), s.g, source, target, opts)
	s.mu.RUnlock()

	if err != nil {
		httputil.RespondError(w, r, err)
		return
	}
	if !res.Found {
		http.Error(w, fmt.Sprintf("no path between %s and %s", source, target), http.StatusNotFound)
		return
	}
	httputil.RespondArtifact(w, r, res.Format.ContentType(), etag, res.Artifact)
}

func (s *Server) serveView(w http.ResponseWriter, r *http.Request, opts pipeline.Options, render renderFunc) {
	s.mu.RLock()
	etag := s.etag(r, &opts)
	res, err := render(r.Context(), s.g, opts)
	s.mu.RUnlock()

	if err != nil {
		httputil.RespondError(w, r, err)
		return
	}
	httputil.RespondArtifact(w, r, res.Format.ContentType(), etag, res.Artifact)
}

// clusterResponse is the JSON payload returned by POST /cluster.
type clusterResponse struct {
	Clusters   int            `json:"clusters"`
	Modularity float64        `json:"modularity"`
	Labels     map[string]int `json:"labels"`
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p := s.runner.Cluster(r.Context(), s.g)
	s.generation++
	var err error
	if s.opts.OnChange != nil {
		err = s.opts.OnChange(s.g)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("saving clustered graph", "err", err)
		httputil.RespondError(w, r, pipeline.Classify(err))
		return
	}
	httputil.RespondJSON(w, http.StatusOK, clusterResponse{
		Clusters:   len(p.Clusters),
		Modularity: p.Modularity,
		Labels:     p.Labels,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := cgio.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		httputil.RespondError(w, r, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "export format"))
		return
	}

	var buf bytes.Buffer
	s.mu.RLock()
	err = cgio.Write(s.g, &buf, format)
	s.mu.RUnlock()
	if err != nil {
		httputil.RespondError(w, r, pipeline.Classify(err))
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cgio.DefaultFileName(format)))
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(buf.Bytes())
}

// healthResponse is the JSON payload returned by GET /healthz.
type healthResponse struct {
	Status        string         `json:"status"`
	Service       string         `json:"service"`
	Timestamp     string         `json:"timestamp"`
	Uptime        string         `json:"uptime"`
	Instance      string         `json:"instance"`
	Entities      int            `json:"entities"`
	Relationships int            `json:"relationships"`
	Build         buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	entities, rels := s.Counts()
	httputil.RespondJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		Service:       "cybergraph",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Uptime:        time.Since(s.started).Round(time.Second).String(),
		Instance:      s.instance,
		Entities:      entities,
		Relationships: rels,
		Build:         buildinfo.Current(),
	})
}

// viewOptions applies the query parameters layout, title and seed on top
// of the server defaults.
func (s *Server) viewOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.opts.Defaults
	q := r.URL.Query()
	if v := q.Get("layout"); v != "" {
		opts.Layout = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, cgerrors.New(cgerrors.ErrCodeInvalidInput, "seed must be a non-negative integer: %q", v)
		}
		opts.Seed = seed
	}
	opts.Logger = s.logger
	return opts, nil
}

// etag identifies one view of one graph generation served by this process.
// Views that differ on every render get no ETag. Callers must hold s.mu.
func (s *Server) etag(r *http.Request, opts *pipeline.Options) string {
	if !opts.Reproducible() {
		return ""
	}
	h := cache.Hash([]byte(r.URL.Path + "?" + r.URL.RawQuery))
	return fmt.Sprintf(`"%s-%d-%s"`, s.instance[:8], s.generation, h[:16])
}
