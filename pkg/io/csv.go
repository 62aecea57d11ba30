package io

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

// CSV section headers.
var (
	EntityHeader       = []string{"Entity", "Type", "Attributes"}
	RelationshipHeader = []string{"Source", "Target", "Relationship"}
)

// ErrMissingSection is returned by [SplitCSVSections] when a header row is
// absent.
var ErrMissingSection = errors.New("missing CSV section header")

// WriteCSV writes g as two stacked CSV sections. The first has the header
// Entity,Type,Attributes and one row per entity: its ID, its "type"
// attribute (or N/A) and all attributes as JSON. The second has the header
// Source,Target,Relationship and one row per relationship with its
// attributes as JSON. Rows follow insertion order.
func WriteCSV(g *graph.Graph, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EntityHeader); err != nil {
		return err
	}
	for _, e := range g.Entities() {
		attrs, err := attrsJSON(e.Attrs)
		if err != nil {
			return fmt.Errorf("entity %s: %w", e.ID, err)
		}
		typ, ok := e.Attrs["type"]
		typeCol := "N/A"
		if ok {
			typeCol = scalarString(typ)
		}
		if err := cw.Write([]string{e.ID, typeCol, attrs}); err != nil {
			return err
		}
	}

	if err := cw.Write(RelationshipHeader); err != nil {
		return err
	}
	for _, r := range g.Relationships() {
		attrs, err := attrsJSON(r.Attrs)
		if err != nil {
			return fmt.Errorf("relationship %s-%s: %w", r.Source, r.Target, err)
		}
		if err := cw.Write([]string{r.Source, r.Target, attrs}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SplitCSVSections reads a file written by [WriteCSV] and returns the entity
// rows and relationship rows without their header rows.
func SplitCSVSections(r io.Reader) (entities, relationships [][]string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(records) == 0 || !slices.Equal(records[0], EntityHeader) {
		return nil, nil, fmt.Errorf("%w: %v", ErrMissingSection, EntityHeader)
	}
	split := slices.IndexFunc(records[1:], func(rec []string) bool {
		return slices.Equal(rec, RelationshipHeader)
	})
	if split < 0 {
		return nil, nil, fmt.Errorf("%w: %v", ErrMissingSection, RelationshipHeader)
	}
	split++
	return records[1:split], records[split+1:], nil
}

// ReadCSV decodes a file written by [WriteCSV] into a new graph.
func ReadCSV(r io.Reader, opts ...graph.Option) (*graph.Graph, error) {
	entities, relationships, err := SplitCSVSections(r)
	if err != nil {
		return nil, err
	}

	var doc graph.Document
	for i, rec := range entities {
		if len(rec) != len(EntityHeader) {
			return nil, fmt.Errorf("entity row %d: want %d fields, got %d", i+1, len(EntityHeader), len(rec))
		}
		attrs, err := parseAttrs(rec[2])
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", rec[0], err)
		}
		doc.Entities = append(doc.Entities, graph.EntityRecord{Name: rec[0], Attributes: attrs})
	}
	for i, rec := range relationships {
		if len(rec) != len(RelationshipHeader) {
			return nil, fmt.Errorf("relationship row %d: want %d fields, got %d", i+1, len(RelationshipHeader), len(rec))
		}
		attrs, err := parseAttrs(rec[2])
		if err != nil {
			return nil, fmt.Errorf("relationship %s-%s: %w", rec[0], rec[1], err)
		}
		doc.Relationships = append(doc.Relationships, graph.RelationshipRecord{Source: rec[0], Target: rec[1], Attributes: attrs})
	}
	return graph.ToGraph(doc, opts...)
}

func attrsJSON(a graph.Attributes) (string, error) {
	if a == nil {
		a = graph.Attributes{}
	}
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseAttrs(s string) (graph.Attributes, error) {
	attrs := graph.Attributes{}
	if s == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(s), &attrs); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}
	return attrs, nil
}

// scalarString formats a value for a single CSV cell.
func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
