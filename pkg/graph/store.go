package graph

import (
	"errors"
	"slices"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

var (
	// ErrInvalidEntityID is returned by [Graph.AddEntity] and
	// [Graph.AddRelationship] when an entity ID is empty.
	ErrInvalidEntityID = errors.New("entity ID must not be empty")

	// ErrUnknownEntity is returned by [Graph.AddRelationship] in strict mode
	// when either endpoint has not been added as an entity.
	ErrUnknownEntity = errors.New("unknown entity")
)

// Entity is a labelled vertex with attributes.
type Entity struct {
	ID    string
	Attrs Attributes
}

// Relationship is an undirected, attributed connection between two entities.
// Source and Target keep the orientation of the first insertion.
type Relationship struct {
	Source string
	Target string
	Attrs  Attributes
}

// Key returns the orientation-independent key of the relationship.
func (r Relationship) Key() EdgeKey { return Key(r.Source, r.Target) }

// EdgeKey identifies an undirected relationship independent of orientation.
type EdgeKey struct{ A, B string }

// Key returns the EdgeKey for the unordered pair {a, b}.
func Key(a, b string) EdgeKey {
	if b < a {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b}
}

// Option configures a Graph.
type Option func(*Graph)

// WithStrictRelationships makes AddRelationship fail with ErrUnknownEntity
// instead of creating missing endpoints.
func WithStrictRelationships() Option {
	return func(g *Graph) { g.strict = true }
}

// Graph is an undirected attributed graph of entities and relationships.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	topo   *simple.UndirectedGraph
	ids    map[string]int64 // entity ID -> gonum node ID
	names  []string         // gonum node ID -> entity ID
	attrs  []Attributes     // gonum node ID -> attributes
	index  map[EdgeKey]int  // edge key -> position in rels
	rels   []Relationship
	loops  map[int64]bool // entities with a self-relationship
	strict bool
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		topo:  simple.NewUndirectedGraph(),
		ids:   make(map[string]int64),
		index: make(map[EdgeKey]int),
		loops: make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Strict reports whether the graph rejects relationships to unknown entities.
func (g *Graph) Strict() bool { return g.strict }

// AddEntity inserts the entity or merges attrs into an existing one.
// Returns ErrInvalidEntityID if id is empty and ErrInvalidAttribute if a
// value has no JSON representation.
func (g *Graph) AddEntity(id string, attrs Attributes) error {
	if id == "" {
		return ErrInvalidEntityID
	}
	if err := attrs.Validate(); err != nil {
		return err
	}
	if nid, ok := g.ids[id]; ok {
		g.attrs[nid].Merge(attrs)
		return nil
	}
	g.addNode(id, attrs)
	return nil
}

func (g *Graph) addNode(id string, attrs Attributes) int64 {
	nid := int64(len(g.names))
	g.topo.AddNode(simple.Node(nid))
	g.ids[id] = nid
	g.names = append(g.names, id)
	g.attrs = append(g.attrs, attrs.Clone())
	return nid
}

// AddRelationship inserts an undirected relationship between id1 and id2 or
// merges attrs into the existing one. The pair is unordered: (a, b) and
// (b, a) address the same relationship.
//
// Missing endpoints are created as bare entities unless the graph is strict,
// in which case ErrUnknownEntity is returned and the graph is unchanged.
//
// A self-relationship (id1 == id2) is stored, exported and drawn like any
// other, but it is not part of the [Graph.Topology], so it never shortens a
// path or joins a cluster.
func (g *Graph) AddRelationship(id1, id2 string, attrs Attributes) error {
	if id1 == "" || id2 == "" {
		return ErrInvalidEntityID
	}
	if err := attrs.Validate(); err != nil {
		return err
	}
	if g.strict {
		if !g.HasEntity(id1) || !g.HasEntity(id2) {
			return ErrUnknownEntity
		}
	}

	key := Key(id1, id2)
	if i, ok := g.index[key]; ok {
		g.rels[i].Attrs.Merge(attrs)
		return nil
	}

	u := g.ensure(id1)
	v := g.ensure(id2)
	if u == v {
		g.loops[u] = true
	} else {
		g.topo.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
	}
	g.index[key] = len(g.rels)
	g.rels = append(g.rels, Relationship{Source: id1, Target: id2, Attrs: attrs.Clone()})
	return nil
}

func (g *Graph) ensure(id string) int64 {
	if nid, ok := g.ids[id]; ok {
		return nid
	}
	return g.addNode(id, nil)
}

// SetEntityAttribute sets a single attribute on an existing entity.
// It reports false if the entity does not exist or value has no JSON
// representation.
func (g *Graph) SetEntityAttribute(id, key string, value any) bool {
	nid, ok := g.ids[id]
	if !ok || !validValue(value) {
		return false
	}
	g.attrs[nid][key] = value
	return true
}

// HasEntity reports whether the entity exists.
func (g *Graph) HasEntity(id string) bool {
	_, ok := g.ids[id]
	return ok
}

// Entity returns a copy of the entity with the given ID.
func (g *Graph) Entity(id string) (Entity, bool) {
	nid, ok := g.ids[id]
	if !ok {
		return Entity{}, false
	}
	return Entity{ID: id, Attrs: g.attrs[nid].Clone()}, true
}

// Entities returns copies of all entities in insertion order.
func (g *Graph) Entities() []Entity {
	out := make([]Entity, len(g.names))
	for i, id := range g.names {
		out[i] = Entity{ID: id, Attrs: g.attrs[i].Clone()}
	}
	return out
}

// EntityIDs returns all entity IDs in insertion order.
func (g *Graph) EntityIDs() []string { return slices.Clone(g.names) }

// Relationship returns a copy of the relationship between a and b in either
// orientation.
func (g *Graph) Relationship(a, b string) (Relationship, bool) {
	i, ok := g.index[Key(a, b)]
	if !ok {
		return Relationship{}, false
	}
	r := g.rels[i]
	r.Attrs = r.Attrs.Clone()
	return r, true
}

// Relationships returns copies of all relationships in insertion order.
func (g *Graph) Relationships() []Relationship {
	out := make([]Relationship, len(g.rels))
	for i, r := range g.rels {
		r.Attrs = r.Attrs.Clone()
		out[i] = r
	}
	return out
}

// Neighbors returns the IDs of entities adjacent to id in insertion order.
// An entity with a self-relationship is its own neighbor.
// Returns nil if the entity does not exist or has no relationships.
func (g *Graph) Neighbors(id string) []string {
	nid, ok := g.ids[id]
	if !ok {
		return nil
	}
	var adj []int64
	if g.loops[nid] {
		adj = append(adj, nid)
	}
	for it := g.topo.From(nid); it.Next(); {
		adj = append(adj, it.Node().ID())
	}
	slices.Sort(adj)
	out := make([]string, len(adj))
	for i, n := range adj {
		out[i] = g.names[n]
	}
	return out
}

// EntityCount returns the number of entities.
func (g *Graph) EntityCount() int { return len(g.names) }

// RelationshipCount returns the number of relationships.
func (g *Graph) RelationshipCount() int { return len(g.rels) }

// =============================================================================
// gonum Interop
// =============================================================================

// Topology returns the underlying gonum graph. Callers must treat it as
// read-only; mutate through the Graph methods instead. Self-relationships
// are not included.
func (g *Graph) Topology() gonum.Undirected { return g.topo }

// NodeID returns the gonum node ID of an entity.
func (g *Graph) NodeID(id string) (int64, bool) {
	nid, ok := g.ids[id]
	return nid, ok
}

// EntityID returns the entity ID of a gonum node ID, or "" if unknown.
func (g *Graph) EntityID(nid int64) string {
	if nid < 0 || nid >= int64(len(g.names)) {
		return ""
	}
	return g.names[nid]
}
