package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

// Format is a graph exchange file format.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	GEXF Format = "gexf"
)

// Formats lists every supported export format.
var Formats = []Format{CSV, JSON, GEXF}

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case CSV, JSON, GEXF:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want csv, json or gexf)", s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// DefaultFileName returns the conventional output name for a format.
func DefaultFileName(f Format) string {
	switch f {
	case CSV:
		return "graph_summary.csv"
	case JSON:
		return "graph_summary.json"
	}
	return "graph.gexf"
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case JSON:
		return "application/json"
	}
	return "application/gexf+xml"
}

// Write encodes g in the given format to w.
func Write(g *graph.Graph, w io.Writer, f Format) error {
	switch f {
	case CSV:
		return WriteCSV(g, w)
	case JSON:
		return WriteJSON(g, w)
	case GEXF:
		return WriteGEXF(g, w)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// Export writes g to a file at path in the given format.
func Export(g *graph.Graph, path string, f Format) error {
	return writeFile(path, func(w io.Writer) error { return Write(g, w, f) })
}

// WriteJSON writes g as the entities/relationships document accepted by
// [ReadJSON] and [graph.Graph.ImportJSON].
func WriteJSON(g *graph.Graph, w io.Writer) error {
	return graph.WriteDocument(g, w)
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *graph.Graph, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(g, w) })
}

// ExportCSV writes g to a two-section CSV file at path.
func ExportCSV(g *graph.Graph, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(g, w) })
}

// ExportGEXF writes g to a GEXF file at path.
func ExportGEXF(g *graph.Graph, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteGEXF(g, w) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
