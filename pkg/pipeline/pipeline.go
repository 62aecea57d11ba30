// Package pipeline ties the graph store, the derived views, the renderer and
// the artifact cache together.
//
// This package implements the operations shared by the CLI and the preview
// server, so both entry points render, cluster and export identically.
//
// # Views
//
// A [Runner] produces three views of a graph:
//
//  1. Visualize: every entity and relationship in the base style
//  2. Heatmap: entities sized and shaded by a numeric attribute
//  3. HighlightPath: the shortest path between two entities drawn in red
//
// Each view is built as DOT, then rendered by Graphviz into the requested
// format. Rendered artifacts are cached by a hash of the DOT source, the
// layout engine and the format.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Visualize(ctx, g, pipeline.Options{Layout: "circular"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("graph.svg", res.Artifact, 0o644)
//
// HighlightPath reports a missing path through [Result.Found] rather than an
// error; the runner logs a warning instead.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	cgerrors "github.com/matzehuels/cybergraph/pkg/errors"
	"github.com/matzehuels/cybergraph/pkg/render/nodelink"
)

// View names.
const (
	ViewGraph   = "graph"
	ViewHeatmap = "heatmap"
	ViewPath    = "path"
)

// DefaultMetric is the heatmap attribute used when none is given.
const DefaultMetric = "vulnerability_score"

// =============================================================================
// Options - View Configuration
// =============================================================================

// Options configures one rendered view. The zero value renders the spring
// layout as SVG with the default style and title.
type Options struct {
	Layout string `json:"layout,omitempty"`
	Title  string `json:"title,omitempty"`
	Format string `json:"format,omitempty"`
	// Metric is the heatmap attribute.
	Metric string `json:"metric,omitempty"`
	// Seed fixes the random layout. Zero draws fresh positions and bypasses
	// the cache.
	Seed  uint64         `json:"seed,omitempty"`
	Style nodelink.Style `json:"-"`
	// Refresh skips the cache lookup but still stores the new artifact.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	layout    nodelink.Layout
	format    nodelink.Format
	validated bool
}

// ValidateAndSetDefaults checks the options and fills defaults.
// This method is idempotent. Unknown layouts are not an error; they fall
// back to random with a warning.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Layout == "" {
		o.Layout = string(nodelink.Spring)
	}
	layout, ok := nodelink.LookupLayout(o.Layout)
	if !ok {
		o.Logger.Warn("unknown layout, using random", "layout", o.Layout)
	}
	o.layout = layout

	if o.Format == "" {
		o.Format = string(nodelink.SVG)
	}
	format, err := nodelink.ParseFormat(o.Format)
	if err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "render format")
	}
	o.format = format

	if o.Title == "" {
		o.Title = nodelink.DefaultTitle
	}
	if err := cgerrors.ValidateTitle(o.Title); err != nil {
		return err
	}
	if o.Metric != "" {
		if err := cgerrors.ValidateAttributeKey(o.Metric); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ResolvedLayout returns the layout after validation.
func (o *Options) ResolvedLayout() nodelink.Layout { return o.layout }

// ResolvedFormat returns the format after validation.
func (o *Options) ResolvedFormat() nodelink.Format { return o.format }

// DOTOptions returns the options for the DOT builders.
func (o *Options) DOTOptions() nodelink.Options {
	return nodelink.Options{
		Title:  o.Title,
		Layout: o.layout,
		Style:  o.Style,
		Seed:   o.Seed,
	}
}

// Reproducible reports whether rendering the same graph with o twice yields
// the same artifact. Only an unseeded random layout does not. It may be
// called before ValidateAndSetDefaults.
func (o *Options) Reproducible() bool {
	if o.Seed != 0 {
		return true
	}
	layout := o.layout
	if !o.validated {
		name := o.Layout
		if name == "" {
			name = string(nodelink.Spring)
		}
		layout = nodelink.ParseLayout(name)
	}
	return layout != nodelink.Random
}

// cacheable reports whether identical inputs render identical artifacts.
func (o *Options) cacheable() bool { return o.Reproducible() }

// =============================================================================
// Result - View Output
// =============================================================================

// Result contains one rendered view.
type Result struct {
	View   string
	Layout nodelink.Layout
	Format nodelink.Format

	// DOT is the Graphviz source of the view.
	DOT string
	// Artifact is the rendered output in Format.
	Artifact []byte

	// Path is the highlighted entity sequence (path view only).
	Path []string
	// Found is false when the path view had no path to draw.
	Found bool

	Stats    Stats
	CacheHit bool
}

// Stats contains view statistics.
type Stats struct {
	Entities      int
	Relationships int
	RenderTime    time.Duration
}
