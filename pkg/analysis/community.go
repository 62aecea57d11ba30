package analysis

import (
	"cmp"
	"math"
	"slices"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

// ClusterAttribute is the entity attribute that holds the cluster label.
const ClusterAttribute = "cluster"

// resolution is the Louvain modularity resolution parameter.
const resolution = 1.0

// Partition is the result of community detection.
type Partition struct {
	// Labels maps every entity ID to its cluster index.
	Labels map[string]int
	// Clusters lists member entity IDs per cluster index, in insertion order.
	Clusters [][]string
	// Modularity is the Q score of the partition (0 for graphs without
	// relationships).
	Modularity float64
}

// Cluster detects communities, writes each entity's label to its "cluster"
// attribute and returns the partition. Relationship attributes are never
// modified. A graph without relationships gets one cluster per entity.
func Cluster(g *graph.Graph) Partition {
	var communities [][]gonum.Node
	modularity := 0.0

	// Self-relationships are not part of the topology.
	if g.Topology().Edges().Len() > 0 {
		reduced := community.Modularize(g.Topology(), resolution, nil)
		communities = reduced.Communities()
		if q := community.Q(g.Topology(), communities, resolution); !math.IsNaN(q) {
			modularity = q
		}
	}

	members := make([][]int64, 0, len(communities))
	for _, c := range communities {
		ids := make([]int64, 0, len(c))
		for _, n := range c {
			ids = append(ids, n.ID())
		}
		if len(ids) == 0 {
			continue
		}
		slices.Sort(ids)
		members = append(members, ids)
	}
	// Nodes missing from the reduction (no relationships at all) become
	// singletons.
	seen := make(map[int64]bool, g.EntityCount())
	for _, c := range members {
		for _, id := range c {
			seen[id] = true
		}
	}
	for _, id := range g.EntityIDs() {
		nid, _ := g.NodeID(id)
		if !seen[nid] {
			members = append(members, []int64{nid})
		}
	}
	slices.SortFunc(members, func(a, b []int64) int { return cmp.Compare(a[0], b[0]) })

	p := Partition{
		Labels:     make(map[string]int, g.EntityCount()),
		Clusters:   make([][]string, len(members)),
		Modularity: modularity,
	}
	for label, c := range members {
		names := make([]string, len(c))
		for i, nid := range c {
			id := g.EntityID(nid)
			names[i] = id
			p.Labels[id] = label
			g.SetEntityAttribute(id, ClusterAttribute, label)
		}
		p.Clusters[label] = names
	}
	return p
}
