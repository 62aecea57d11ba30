package graph

import (
	"errors"
	"reflect"
	"testing"
)

func TestAddEntity(t *testing.T) {
	tests := []struct {
		name    string
		build   func(g *Graph) error
		id      string
		want    Attributes
		wantErr error
		count   int
	}{
		{
			name:  "New",
			build: func(g *Graph) error { return g.AddEntity("Domain: example.com", Attributes{"type": "Domain"}) },
			id:    "Domain: example.com",
			want:  Attributes{"type": "Domain"},
			count: 1,
		},
		{
			name: "MergesAttributes",
			build: func(g *Graph) error {
				if err := g.AddEntity("a", Attributes{"type": "IP", "score": 1.0}); err != nil {
					return err
				}
				return g.AddEntity("a", Attributes{"score": 7.5, "owner": "alice"})
			},
			id:    "a",
			want:  Attributes{"type": "IP", "score": 7.5, "owner": "alice"},
			count: 1,
		},
		{
			name:  "NilAttributes",
			build: func(g *Graph) error { return g.AddEntity("a", nil) },
			id:    "a",
			want:  Attributes{},
			count: 1,
		},
		{
			name:    "EmptyID",
			build:   func(g *Graph) error { return g.AddEntity("", nil) },
			wantErr: ErrInvalidEntityID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			err := tt.build(g)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddEntity: %v", err)
			}
			if got := g.EntityCount(); got != tt.count {
				t.Errorf("EntityCount() = %d, want %d", got, tt.count)
			}
			e, ok := g.Entity(tt.id)
			if !ok {
				t.Fatalf("entity %q not found", tt.id)
			}
			if !reflect.DeepEqual(e.Attrs, tt.want) {
				t.Errorf("attrs = %v, want %v", e.Attrs, tt.want)
			}
		})
	}
}

func TestAddEntityIdempotent(t *testing.T) {
	g := New()
	attrs := Attributes{"type": "Person"}
	_ = g.AddEntity("Person: Alice", attrs)
	before := FromGraph(g)

	_ = g.AddEntity("Person: Alice", attrs)
	after := FromGraph(g)

	if !reflect.DeepEqual(before, after) {
		t.Errorf("second AddEntity changed state:\nbefore %v\nafter  %v", before, after)
	}
}

func TestAddEntityCopiesAttributes(t *testing.T) {
	g := New()
	attrs := Attributes{"type": "IP"}
	_ = g.AddEntity("ip", attrs)
	attrs["type"] = "mutated"

	e, _ := g.Entity("ip")
	if e.Attrs["type"] != "IP" {
		t.Errorf("caller mutation leaked into graph: %v", e.Attrs["type"])
	}

	e.Attrs["type"] = "mutated"
	e2, _ := g.Entity("ip")
	if e2.Attrs["type"] != "IP" {
		t.Errorf("returned copy mutation leaked into graph: %v", e2.Attrs["type"])
	}
}

func TestAddRelationship(t *testing.T) {
	g := New()
	_ = g.AddEntity("a", nil)

	if err := g.AddRelationship("a", "b", Attributes{"relationship": "Owns"}); err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}
	if !g.HasEntity("b") {
		t.Error("missing endpoint should be created")
	}
	if got := g.EntityCount(); got != 2 {
		t.Errorf("EntityCount() = %d, want 2", got)
	}

	// Reverse orientation addresses the same relationship.
	if err := g.AddRelationship("b", "a", Attributes{"weight": 2.0}); err != nil {
		t.Fatalf("AddRelationship reversed: %v", err)
	}
	if got := g.RelationshipCount(); got != 1 {
		t.Fatalf("RelationshipCount() = %d, want 1", got)
	}

	r, ok := g.Relationship("b", "a")
	if !ok {
		t.Fatal("relationship not found")
	}
	if r.Source != "a" || r.Target != "b" {
		t.Errorf("orientation = %s-%s, want a-b", r.Source, r.Target)
	}
	want := Attributes{"relationship": "Owns", "weight": 2.0}
	if !reflect.DeepEqual(r.Attrs, want) {
		t.Errorf("attrs = %v, want %v", r.Attrs, want)
	}
}

func TestAddRelationshipErrors(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		a, b    string
		wantErr error
	}{
		{name: "EmptySource", a: "", b: "x", wantErr: ErrInvalidEntityID},
		{name: "EmptyTarget", a: "x", b: "", wantErr: ErrInvalidEntityID},
		{name: "StrictUnknown", opts: []Option{WithStrictRelationships()}, a: "x", b: "y", wantErr: ErrUnknownEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.opts...)
			err := g.AddRelationship(tt.a, tt.b, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if g.EntityCount() != 0 || g.RelationshipCount() != 0 {
				t.Errorf("graph modified on error: %d entities, %d relationships",
					g.EntityCount(), g.RelationshipCount())
			}
		})
	}
}

func TestSelfRelationship(t *testing.T) {
	g := New()
	if err := g.AddRelationship("Server: mail01", "Server: mail01", Attributes{"relationship": "Relays"}); err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}
	_ = g.AddRelationship("Server: mail01", "IP: 10.0.0.5", nil)

	if g.EntityCount() != 2 || g.RelationshipCount() != 2 {
		t.Fatalf("counts = %d, %d; want 2, 2", g.EntityCount(), g.RelationshipCount())
	}
	r, ok := g.Relationship("Server: mail01", "Server: mail01")
	if !ok || r.Attrs["relationship"] != "Relays" {
		t.Errorf("self relationship = %+v, %v", r, ok)
	}
	if got := g.Topology().Edges().Len(); got != 1 {
		t.Errorf("topology edges = %d, want 1", got)
	}
	want := []string{"Server: mail01", "IP: 10.0.0.5"}
	if got := g.Neighbors("Server: mail01"); !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors = %v, want %v", got, want)
	}

	_ = g.AddRelationship("Server: mail01", "Server: mail01", Attributes{"since": 2021.0})
	r, _ = g.Relationship("Server: mail01", "Server: mail01")
	if g.RelationshipCount() != 2 || r.Attrs["since"] != 2021.0 || r.Attrs["relationship"] != "Relays" {
		t.Errorf("repeated self relationship did not merge: %d, %v", g.RelationshipCount(), r.Attrs)
	}

	strict := New(WithStrictRelationships())
	if err := strict.AddRelationship("x", "x", nil); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("strict self relationship error = %v, want ErrUnknownEntity", err)
	}
}

func TestStrictRelationshipKnownEntities(t *testing.T) {
	g := New(WithStrictRelationships())
	_ = g.AddEntity("x", nil)
	_ = g.AddEntity("y", nil)
	if err := g.AddRelationship("x", "y", nil); err != nil {
		t.Fatalf("AddRelationship: %v", err)
	}
	if !g.Strict() {
		t.Error("Strict() = false, want true")
	}
}

func TestNeighbors(t *testing.T) {
	g := New()
	_ = g.AddRelationship("hub", "c", nil)
	_ = g.AddRelationship("a", "hub", nil)
	_ = g.AddRelationship("hub", "b", nil)

	got := g.Neighbors("hub")
	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors(hub) = %v, want %v", got, want)
	}
	if g.Neighbors("missing") != nil {
		t.Error("Neighbors of unknown entity should be nil")
	}
}

func TestInsertionOrder(t *testing.T) {
	g := New()
	for _, id := range []string{"z", "a", "m"} {
		_ = g.AddEntity(id, nil)
	}
	want := []string{"z", "a", "m"}
	if got := g.EntityIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("EntityIDs() = %v, want %v", got, want)
	}
}

func TestTopologyInterop(t *testing.T) {
	g := New()
	_ = g.AddRelationship("a", "b", nil)

	na, ok := g.NodeID("a")
	if !ok {
		t.Fatal("NodeID(a) not found")
	}
	nb, _ := g.NodeID("b")
	if !g.Topology().HasEdgeBetween(na, nb) {
		t.Error("topology missing edge a-b")
	}
	if got := g.EntityID(nb); got != "b" {
		t.Errorf("EntityID(%d) = %q, want b", nb, got)
	}
	if got := g.EntityID(99); got != "" {
		t.Errorf("EntityID(99) = %q, want empty", got)
	}
}

func TestSetEntityAttribute(t *testing.T) {
	g := New()
	_ = g.AddEntity("a", nil)
	if !g.SetEntityAttribute("a", "cluster", 3) {
		t.Fatal("SetEntityAttribute(a) = false")
	}
	if g.SetEntityAttribute("missing", "cluster", 1) {
		t.Error("SetEntityAttribute(missing) = true")
	}
	e, _ := g.Entity("a")
	if e.Attrs["cluster"] != 3 {
		t.Errorf("cluster = %v, want 3", e.Attrs["cluster"])
	}
}
