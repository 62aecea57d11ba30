package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

// ReadJSON decodes a JSON document from r into a new graph.
//
// The input is an object with "entities" and "relationships" arrays:
//
//	{
//	  "entities": [{"name": "a", "attributes": {"type": "Domain"}}],
//	  "relationships": [{"source": "a", "target": "b", "attributes": {}}]
//	}
//
// Missing arrays and missing "attributes" objects are treated as empty.
// A record without "name", "source" or "target" is an error. Relationships
// to entities not listed are created as bare entities unless opts make the
// graph strict.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader, opts ...graph.Option) (*graph.Graph, error) {
	return graph.ReadGraph(r, opts...)
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
// Errors wrap the underlying cause with the file path.
func ImportJSON(path string, opts ...graph.Option) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ReadJSON(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ImportCSV reads a file written by [ExportCSV] back into a new graph.
func ImportCSV(path string, opts ...graph.Option) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ReadCSV(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
