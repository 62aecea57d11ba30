package graph

import (
	"errors"
	"fmt"
)

// Errors returned when a JSON document lacks a required key.
var (
	ErrMissingName   = errors.New(`entity is missing "name"`)
	ErrMissingSource = errors.New(`relationship is missing "source"`)
	ErrMissingTarget = errors.New(`relationship is missing "target"`)
)

// =============================================================================
// Document - JSON Exchange Format
// =============================================================================

// Document is the JSON exchange format for entity graphs.
// It is both the export format and the import format, so an exported
// document can be imported into a fresh graph.
type Document struct {
	Entities      []EntityRecord       `json:"entities"`
	Relationships []RelationshipRecord `json:"relationships"`
}

// EntityRecord is one entity in a Document.
type EntityRecord struct {
	Name       string     `json:"name"`
	Attributes Attributes `json:"attributes"`
}

// RelationshipRecord is one relationship in a Document.
type RelationshipRecord struct {
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	Attributes Attributes `json:"attributes"`
}

// rawDocument mirrors Document with pointer fields so that missing keys can
// be told apart from empty strings.
type rawDocument struct {
	Entities []struct {
		Name       *string    `json:"name"`
		Attributes Attributes `json:"attributes"`
	} `json:"entities"`
	Relationships []struct {
		Source     *string    `json:"source"`
		Target     *string    `json:"target"`
		Attributes Attributes `json:"attributes"`
	} `json:"relationships"`
}

func (raw rawDocument) document() (Document, error) {
	doc := Document{
		Entities:      make([]EntityRecord, len(raw.Entities)),
		Relationships: make([]RelationshipRecord, len(raw.Relationships)),
	}
	for i, e := range raw.Entities {
		if e.Name == nil {
			return Document{}, fmt.Errorf("entities[%d]: %w", i, ErrMissingName)
		}
		doc.Entities[i] = EntityRecord{Name: *e.Name, Attributes: e.Attributes.Clone()}
	}
	for i, r := range raw.Relationships {
		if r.Source == nil {
			return Document{}, fmt.Errorf("relationships[%d]: %w", i, ErrMissingSource)
		}
		if r.Target == nil {
			return Document{}, fmt.Errorf("relationships[%d]: %w", i, ErrMissingTarget)
		}
		doc.Relationships[i] = RelationshipRecord{
			Source:     *r.Source,
			Target:     *r.Target,
			Attributes: r.Attributes.Clone(),
		}
	}
	return doc, nil
}

// =============================================================================
// Graph ↔ Document Conversion
// =============================================================================

// FromGraph converts a graph to its exchange format.
// Entities and relationships keep insertion order; attribute maps are never nil.
func FromGraph(g *Graph) Document {
	doc := Document{
		Entities:      make([]EntityRecord, 0, g.EntityCount()),
		Relationships: make([]RelationshipRecord, 0, g.RelationshipCount()),
	}
	for _, e := range g.Entities() {
		doc.Entities = append(doc.Entities, EntityRecord{Name: e.ID, Attributes: e.Attrs})
	}
	for _, r := range g.Relationships() {
		doc.Relationships = append(doc.Relationships, RelationshipRecord{
			Source:     r.Source,
			Target:     r.Target,
			Attributes: r.Attrs,
		})
	}
	return doc
}

// ToGraph builds a new graph from a document.
func ToGraph(doc Document, opts ...Option) (*Graph, error) {
	g := New(opts...)
	if err := doc.ApplyTo(g); err != nil {
		return nil, err
	}
	return g, nil
}

// ApplyTo adds every entity, then every relationship, of the document to g
// in document order. Entries applied before a failing entry remain applied.
func (doc Document) ApplyTo(g *Graph) error {
	for _, e := range doc.Entities {
		if err := g.AddEntity(e.Name, e.Attributes); err != nil {
			return fmt.Errorf("add entity %q: %w", e.Name, err)
		}
	}
	for _, r := range doc.Relationships {
		if err := g.AddRelationship(r.Source, r.Target, r.Attributes); err != nil {
			return fmt.Errorf("add relationship %q-%q: %w", r.Source, r.Target, err)
		}
	}
	return nil
}
