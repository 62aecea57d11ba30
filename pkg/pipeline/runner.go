package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cybergraph/pkg/analysis"
	"github.com/matzehuels/cybergraph/pkg/cache"
	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
	"github.com/matzehuels/cybergraph/pkg/graph"
	cgio "github.com/matzehuels/cybergraph/pkg/io"
	"github.com/matzehuels/cybergraph/pkg/observability"
	"github.com/matzehuels/cybergraph/pkg/render/nodelink"
)

// DefaultTTL is how long rendered artifacts stay cached.
const DefaultTTL = 24 * time.Hour

// Runner encapsulates view rendering with caching.
// Both CLI and preview server use this to avoid duplicating caching logic.
//
// The Runner holds no graph state; every call takes the graph it works on.
// Multiple goroutines can use the same Runner as long as they do not
// mutate the same graph concurrently.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Visualize renders every entity and relationship with the base style.
func (r *Runner) Visualize(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	dot := nodelink.ToDOT(g, opts.DOTOptions())
	return r.renderView(ctx, g, ViewGraph, dot, opts)
}

// Heatmap renders entities sized and shaded by opts.Metric, which defaults
// to [DefaultMetric]. Entities without a numeric value count as 0.
func (r *Runner) Heatmap(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if opts.Metric == "" {
		opts.Metric = DefaultMetric
	}
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	dot := nodelink.HeatmapDOT(g, opts.Metric, opts.DOTOptions())
	return r.renderView(ctx, g, ViewHeatmap, dot, opts)
}

// HighlightPath renders the graph with the shortest path from source to
// target in the highlight colour.
//
// A missing endpoint is an ENTITY_NOT_FOUND error. When the endpoints are not
// connected nothing is rendered: the runner logs a warning and returns a
// result with Found set to false and a nil error.
func (r *Runner) HighlightPath(ctx context.Context, g *graph.Graph, source, target string, opts Options) (*Result, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	start := time.Now()
	path, err := analysis.ShortestPath(g, source, target)
	hops := max(len(path)-1, 0)
	observability.Pipeline().OnPathComplete(ctx, source, target, hops, err == nil, time.Since(start))

	switch {
	case errors.Is(err, analysis.ErrNoPath):
		r.Logger.Warn(fmt.Sprintf("No path found between %s and %s", source, target))
		return &Result{
			View:   ViewPath,
			Layout: opts.ResolvedLayout(),
			Format: opts.ResolvedFormat(),
			Stats:  Stats{Entities: g.EntityCount(), Relationships: g.RelationshipCount()},
		}, nil
	case err != nil:
		return nil, Classify(err)
	}

	dot := nodelink.HighlightDOT(g, analysis.PathEdges(path), opts.DOTOptions())
	res, err := r.renderView(ctx, g, ViewPath, dot, opts)
	if err != nil {
		return nil, err
	}
	res.Path = path
	return res, nil
}

// Cluster assigns community labels to every entity and returns the
// partition.
func (r *Runner) Cluster(ctx context.Context, g *graph.Graph) analysis.Partition {
	start := time.Now()
	p := analysis.Cluster(g)
	d := time.Since(start)
	observability.Pipeline().OnClusterComplete(ctx, g.EntityCount(), len(p.Clusters), d)
	r.Logger.Info("clustered entities",
		"entities", g.EntityCount(),
		"clusters", len(p.Clusters),
		"modularity", fmt.Sprintf("%.3f", p.Modularity),
		"duration", d)
	return p
}

// Export writes g to path in the given format.
func (r *Runner) Export(ctx context.Context, g *graph.Graph, path string, format cgio.Format) error {
	if err := cgerrors.ValidateOutputPath(path); err != nil {
		return err
	}
	start := time.Now()
	err := cgio.Export(g, path, format)
	observability.Pipeline().OnExportComplete(ctx, string(format), time.Since(start), err)
	if err != nil {
		return Classify(err)
	}
	r.Logger.Debug("exported graph", "format", format, "path", path)
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) prepare(opts *Options) error {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	return opts.ValidateAndSetDefaults()
}
