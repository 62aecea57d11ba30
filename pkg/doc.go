// Package pkg provides the core libraries for cybergraph.
//
// # Overview
//
// cybergraph models a cybersecurity investigation as an undirected graph of
// entities (domains, IPs, people, servers) and the relationships between
// them. Investigators import observations, detect communities, trace the
// shortest connection between two entities, and render or export the
// result. The pkg directory is organized into four areas:
//
//  1. [graph] and [analysis] - The entity store and graph algorithms
//  2. [render/nodelink] - DOT generation and Graphviz rendering
//  3. [io] - CSV, JSON and GEXF import/export
//  4. [pipeline] and [server] - Orchestration shared by the CLI and the
//     preview server
//
// # Architecture
//
// The typical data flow:
//
//	JSON document / CLI edits
//	         ↓
//	    [graph] package (entities + relationships, backed by gonum)
//	         ↓
//	    [analysis] package (Louvain clusters, shortest paths)
//	         ↓
//	    [render/nodelink] package (DOT → SVG/PNG/JPG)
//	         ↓
//	    [cache] package (rendered artifacts keyed by DOT hash)
//
// # Quick Start
//
//	g, _ := io.ImportJSON("examples/network.json")
//	analysis.Cluster(g)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.HighlightPath(ctx, g, "Person: Alice", "IP: 192.168.1.1", pipeline.Options{})
//	if res.Found {
//	    os.WriteFile("path.svg", res.Artifact, 0o644)
//	}
//
// # Main Packages
//
// [graph] - Undirected attributed graph with insertion-ordered entities and
// orientation-independent relationships, plus the JSON document format.
//
// [analysis] - Louvain community detection (labels stored in the "cluster"
// attribute) and breadth-first shortest paths.
//
// [render/nodelink] - Spring, circular, Kamada-Kawai and random layouts,
// the heatmap and path-highlight views, rendered in-process by go-graphviz.
//
// [io] - Two-section CSV, the JSON import document and GEXF 1.2.
//
// [cache] - Artifact cache with file, Redis and null backends.
//
// [pipeline] - Validation, caching and rendering of every view; the single
// code path used by the CLI and [server].
//
// [server] - chi-based preview server for browsing views over HTTP.
//
// [config], [errors], [observability], [httputil] and [buildinfo] - Shared
// configuration, coded errors, hooks, HTTP helpers and version metadata.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test ./pkg/analysis/...           # Specific package
//	go test -run Example ./pkg/...       # Examples only
//	REDIS_ADDR=localhost:6379 go test -tags integration ./pkg/cache/...
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/graph
// [analysis]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/analysis
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/render/nodelink
// [io]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/httputil
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/cybergraph/pkg/buildinfo
package pkg
