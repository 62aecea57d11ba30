// Package io writes entity graphs to flat files and reads them back.
//
// # Formats
//
//   - JSON: the entities/relationships document understood by
//     [graph.Graph.ImportJSON], indented with four spaces.
//   - CSV: two stacked sections in one file. The first section has the
//     header Entity,Type,Attributes; the second has Source,Target,Relationship.
//     Attribute maps are JSON-encoded into the last column.
//     [SplitCSVSections] separates the two blocks again.
//   - GEXF: GEXF 1.2 draft for Gephi and other graph tools. The graph is
//     undirected and static; attribute keys are declared per class with
//     types inferred from the values.
//
// # Export
//
// Each format has a writer and a file helper:
//
//	err := io.ExportCSV(g, "graph_summary.csv")
//	err = io.WriteGEXF(g, os.Stdout)
//
// [Export] and [Write] dispatch on a [Format]; [FormatFromPath] infers the
// format from a file extension.
//
// # Import
//
// [ImportJSON] and [ImportCSV] read files produced by the exporters into new
// graphs. Export followed by import yields the same entities, relationships
// and attributes, with numbers decoded as float64.
//
// # Concurrency
//
// Writers only read the graph and may run concurrently with other readers,
// but not with mutations of the same graph.
package io
