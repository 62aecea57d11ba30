package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/cybergraph/pkg/cache"
	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
	"github.com/matzehuels/cybergraph/pkg/graph"
	"github.com/matzehuels/cybergraph/pkg/observability"
	"github.com/matzehuels/cybergraph/pkg/render/nodelink"
)

// renderView renders dot in the requested format, consulting the cache first.
func (r *Runner) renderView(ctx context.Context, g *graph.Graph, view, dot string, opts Options) (*Result, error) {
	layout, format := opts.ResolvedLayout(), opts.ResolvedFormat()
	res := &Result{
		View:   view,
		Layout: layout,
		Format: format,
		DOT:    dot,
		Found:  true,
		Stats:  Stats{Entities: g.EntityCount(), Relationships: g.RelationshipCount()},
	}

	key := r.Keyer.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{
		Engine: string(layout.Engine()),
		Format: string(format),
	})
	useCache := opts.cacheable() && format != nodelink.DOT

	if useCache && !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			r.Logger.Warn("cache read failed", "err", err)
		case hit:
			observability.Cache().OnCacheHit(ctx, "artifact")
			res.Artifact = data
			res.CacheHit = true
			return res, nil
		default:
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
	}

	observability.Pipeline().OnRenderStart(ctx, view, string(format))
	start := time.Now()
	data, err := nodelink.Render(ctx, dot, layout, format)
	res.Stats.RenderTime = time.Since(start)
	observability.Pipeline().OnRenderComplete(ctx, view, string(format), res.Stats.RenderTime, err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, cgerrors.Wrap(cgerrors.ErrCodeRenderFailed, err, "render %s view", view)
	}
	res.Artifact = data

	if useCache {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	r.Logger.Debug("rendered view",
		"view", view,
		"layout", layout,
		"format", format,
		"bytes", len(data),
		"duration", res.Stats.RenderTime)
	return res, nil
}
