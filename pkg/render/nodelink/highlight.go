package nodelink

import "github.com/matzehuels/cybergraph/pkg/graph"

// HighlightDOT draws the graph with the relationships in path coloured in the
// highlight colour and every other relationship in the base edge colour.
func HighlightDOT(g *graph.Graph, path map[graph.EdgeKey]bool, opts Options) string {
	opts = opts.normalized()
	plain := nodeLook{fill: opts.Style.NodeColor, area: opts.Style.NodeSize}
	return build(g, opts,
		func(graph.Entity) nodeLook { return plain },
		func(r graph.Relationship) string {
			if path[r.Key()] {
				return opts.Style.HighlightColor
			}
			return opts.Style.EdgeColor
		},
	)
}
