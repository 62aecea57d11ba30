// Package analysis derives read-only views from an entity graph.
//
// Both operations delegate the actual computation to gonum:
//
//   - [Cluster] runs Louvain modularization (gonum graph/community) and writes
//     the resulting community index onto every entity's "cluster" attribute.
//   - [ShortestPath] finds an unweighted shortest path (gonum graph/path).
//
// Cluster labels are renumbered 0..k-1 in the insertion order of each
// community's first entity, so a graph whose partition is unambiguous gets
// the same labels on every run. Graphs with symmetric structure may still
// be partitioned differently across runs.
package analysis
