package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument converts a graph to indented JSON bytes.
func MarshalDocument(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDocumentTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDocument writes a graph as JSON to an io.Writer.
func WriteDocument(g *Graph, w io.Writer) error {
	return writeDocumentTo(g, w)
}

// WriteDocumentFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteDocumentFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeDocumentTo(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadDocument decodes a JSON document. Missing "entities" or
// "relationships" arrays are treated as empty; a record missing "name",
// "source" or "target" is an error.
func ReadDocument(r io.Reader) (Document, error) {
	var raw rawDocument
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	return raw.document()
}

// ReadGraph decodes a JSON document from r into a new graph.
func ReadGraph(r io.Reader, opts ...Option) (*Graph, error) {
	doc, err := ReadDocument(r)
	if err != nil {
		return nil, err
	}
	return ToGraph(doc, opts...)
}

// ReadGraphFile reads a JSON document file into a new graph.
func ReadGraphFile(path string, opts ...Option) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f, opts...)
}

// ImportJSON decodes a JSON document from r and adds its entities and
// relationships to g. The document is fully decoded and checked for missing
// keys before g is touched.
func (g *Graph) ImportJSON(r io.Reader) error {
	doc, err := ReadDocument(r)
	if err != nil {
		return err
	}
	return doc.ApplyTo(g)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeDocumentTo(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
