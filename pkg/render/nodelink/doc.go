// Package nodelink draws entity graphs as node-link diagrams with Graphviz.
//
// # Overview
//
// Drawing is split in two steps. The DOT builders turn a [graph.Graph] into
// Graphviz source with the visual constants applied, and [Render] lays that
// source out with the engine of a [Layout] and produces SVG, PNG or JPEG.
//
//	dot := nodelink.ToDOT(g, nodelink.DefaultOptions())
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Spring)
//
// # Views
//
//   - [ToDOT]: every entity in the node colour, every relationship in the
//     edge colour.
//   - [HeatmapDOT]: entity area is 500 + 100*value and fill is a shade of
//     the reds9 scheme spanning the observed range of the metric.
//   - [HighlightDOT]: relationships on a path are drawn in the highlight
//     colour.
//
// # Layouts
//
// [ParseLayout] maps the layout names onto Graphviz engines:
//
//   - spring: fdp
//   - circular: circo
//   - kamada_kawai: neato with mode=KK
//   - random: neato with every position pinned
//
// Unknown names fall back to random. Use [LookupLayout] to detect them.
//
// # Sizes
//
// Node sizes are areas in square points. [Diameter] converts them to the
// inch widths Graphviz expects.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
