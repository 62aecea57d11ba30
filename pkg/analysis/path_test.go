package analysis

import (
	"errors"
	"reflect"
	"testing"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

func TestShortestPath(t *testing.T) {
	// Two routes from a to e: a-b-c-d-e (4 hops) and a-x-e (2 hops).
	g := graph.New()
	for _, pair := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "e"}, {"a", "x"}, {"x", "e"}} {
		_ = g.AddRelationship(pair[0], pair[1], nil)
	}
	_ = g.AddEntity("island", nil)

	tests := []struct {
		name    string
		source  string
		target  string
		want    []string
		wantErr error
	}{
		{name: "Shortcut", source: "a", target: "e", want: []string{"a", "x", "e"}},
		{name: "Reverse", source: "e", target: "a", want: []string{"e", "x", "a"}},
		{name: "Adjacent", source: "b", target: "c", want: []string{"b", "c"}},
		{name: "Self", source: "c", target: "c", want: []string{"c"}},
		{name: "NoPath", source: "a", target: "island", wantErr: ErrNoPath},
		{name: "MissingSource", source: "ghost", target: "a", wantErr: ErrEntityNotFound},
		{name: "MissingTarget", source: "a", target: "ghost", wantErr: ErrEntityNotFound},
		{name: "BothMissing", source: "X", target: "Y", wantErr: ErrEntityNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShortestPath(g, tt.source, tt.target)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ShortestPath: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("path = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShortestPathIsValidAndMinimal(t *testing.T) {
	// 3x3 grid: minimal corner-to-corner distance is 4 hops.
	g := graph.New()
	id := func(r, c int) string { return string(rune('a'+r)) + string(rune('0'+c)) }
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if c+1 < 3 {
				_ = g.AddRelationship(id(r, c), id(r, c+1), nil)
			}
			if r+1 < 3 {
				_ = g.AddRelationship(id(r, c), id(r+1, c), nil)
			}
		}
	}

	p, err := ShortestPath(g, "a0", "c2")
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if len(p) != 5 {
		t.Errorf("path length = %d (%v), want 5 entities", len(p), p)
	}
	if p[0] != "a0" || p[len(p)-1] != "c2" {
		t.Errorf("path endpoints = %s..%s", p[0], p[len(p)-1])
	}
	for i := 1; i < len(p); i++ {
		if _, ok := g.Relationship(p[i-1], p[i]); !ok {
			t.Errorf("step %s-%s is not a relationship", p[i-1], p[i])
		}
	}
}

func TestPathEdges(t *testing.T) {
	edges := PathEdges([]string{"a", "b", "c"})
	if len(edges) != 2 {
		t.Fatalf("edges = %v, want 2", edges)
	}
	if !edges[graph.Key("b", "a")] || !edges[graph.Key("c", "b")] {
		t.Errorf("edges = %v, want a-b and b-c in either orientation", edges)
	}
	if len(PathEdges([]string{"a"})) != 0 {
		t.Error("single-entity path should have no edges")
	}
}
