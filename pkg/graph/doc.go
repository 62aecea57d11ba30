// Package graph provides the in-memory entity graph and its JSON exchange
// format.
//
// A [Graph] is an undirected, attributed graph: entities are identified by
// non-empty strings (for example "Domain: example.com" or "IP: 192.168.1.1")
// and relationships connect unordered pairs of entities. Both carry open
// [Attributes] maps. Topology is held by a gonum simple.UndirectedGraph so
// that the analysis package can run gonum algorithms over it directly.
//
// # Basic Usage
//
//	g := graph.New()
//	g.AddEntity("Domain: example.com", graph.Attributes{"type": "Domain"})
//	g.AddEntity("IP: 192.168.1.1", graph.Attributes{"type": "IP"})
//	g.AddRelationship("Domain: example.com", "IP: 192.168.1.1",
//	    graph.Attributes{"relationship": "Resolves to"})
//
// Adding an entity that already exists merges the new attributes into the
// existing ones. Adding a relationship between entities that do not exist
// creates them as bare entities, unless the graph was created with
// [WithStrictRelationships].
//
// # JSON Documents
//
// Graphs are exchanged as JSON documents:
//
//	{
//	  "entities": [{"name": "A", "attributes": {"type": "Domain"}}],
//	  "relationships": [{"source": "A", "target": "B", "attributes": {}}]
//	}
//
// [WriteDocument] output is always valid [ReadDocument] input, so a graph
// survives export → import unchanged (numbers come back as float64).
//
// # Ordering
//
// Entities and relationships are reported in insertion order. Serialized
// output is therefore deterministic for a given sequence of mutations.
//
// # Concurrency
//
// A Graph is not safe for concurrent use without external synchronization.
package graph
