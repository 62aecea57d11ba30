package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

var (
	// ErrEntityNotFound is returned by [ShortestPath] when an endpoint does
	// not exist in the graph.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrNoPath is returned by [ShortestPath] when the endpoints are not
	// connected.
	ErrNoPath = errors.New("no path")
)

// ShortestPath returns a minimum-hop sequence of entity IDs from source to
// target, both included. Each consecutive pair is a relationship of g.
// If source equals target the path is [source].
func ShortestPath(g *graph.Graph, source, target string) ([]string, error) {
	u, ok := g.NodeID(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, source)
	}
	v, ok := g.NodeID(target)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, target)
	}

	shortest := path.DijkstraFrom(simple.Node(u), g.Topology())
	nodes, _ := shortest.To(v)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w between %s and %s", ErrNoPath, source, target)
	}

	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = g.EntityID(n.ID())
	}
	return out, nil
}

// PathEdges returns the relationship keys traversed by a path.
func PathEdges(p []string) map[graph.EdgeKey]bool {
	edges := make(map[graph.EdgeKey]bool, len(p))
	for i := 1; i < len(p); i++ {
		edges[graph.Key(p[i-1], p[i])] = true
	}
	return edges
}
