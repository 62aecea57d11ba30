package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestAttributesFloat(t *testing.T) {
	a := Attributes{
		"f64":    7.5,
		"int":    3,
		"uint8":  uint8(2),
		"number": json.Number("9.25"),
		"bad":    json.Number("x"),
		"str":    "high",
		"bool":   true,
	}
	tests := []struct {
		key    string
		want   float64
		wantOK bool
	}{
		{"f64", 7.5, true},
		{"int", 3, true},
		{"uint8", 2, true},
		{"number", 9.25, true},
		{"bad", 0, false},
		{"str", 0, false},
		{"bool", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		got, ok := a.Float(tt.key)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Float(%q) = %v, %v; want %v, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestAttributesValidate(t *testing.T) {
	type custom struct{ X int }
	tests := []struct {
		name  string
		attrs Attributes
		ok    bool
	}{
		{"Nil", nil, true},
		{"Scalars", Attributes{"s": "x", "b": true, "n": nil, "i": 1, "f": 2.5}, true},
		{"Nested", Attributes{"tags": []any{"a", 1.0}, "meta": map[string]any{"k": []any{true}}}, true},
		{"NestedAttributes", Attributes{"meta": Attributes{"k": "v"}}, true},
		{"Struct", Attributes{"bad": custom{1}}, false},
		{"Func", Attributes{"bad": func() {}}, false},
		{"NestedStruct", Attributes{"meta": map[string]any{"bad": custom{}}}, false},
		{"SliceWithChan", Attributes{"bad": []any{make(chan int)}}, false},
		{"NaN", Attributes{"score": math.NaN()}, false},
		{"PosInf", Attributes{"score": math.Inf(1)}, false},
		{"NegInfFloat32", Attributes{"score": float32(math.Inf(-1))}, false},
		{"NaNInSlice", Attributes{"scores": []any{1.0, math.NaN()}}, false},
		{"InfInNestedMap", Attributes{"meta": map[string]any{"risk": math.Inf(1)}}, false},
		{"MaxFloat", Attributes{"score": math.MaxFloat64}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.attrs.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidAttribute) {
				t.Fatalf("Validate() = %v, want ErrInvalidAttribute", err)
			}
		})
	}
}

func TestInvalidAttributesRejected(t *testing.T) {
	g := New()
	bad := Attributes{"conn": make(chan int)}

	if err := g.AddEntity("a", bad); !errors.Is(err, ErrInvalidAttribute) {
		t.Fatalf("AddEntity error = %v, want ErrInvalidAttribute", err)
	}
	if g.HasEntity("a") {
		t.Fatal("entity added despite invalid attributes")
	}
	if err := g.AddRelationship("a", "b", bad); !errors.Is(err, ErrInvalidAttribute) {
		t.Fatalf("AddRelationship error = %v, want ErrInvalidAttribute", err)
	}
	if g.EntityCount() != 0 || g.RelationshipCount() != 0 {
		t.Fatalf("graph changed: %d entities, %d relationships", g.EntityCount(), g.RelationshipCount())
	}

	if err := g.AddEntity("a", Attributes{"score": math.NaN()}); !errors.Is(err, ErrInvalidAttribute) {
		t.Fatalf("AddEntity(NaN) error = %v, want ErrInvalidAttribute", err)
	}
	if g.HasEntity("a") {
		t.Fatal("entity added despite a NaN score")
	}

	_ = g.AddEntity("a", nil)
	if err := g.AddEntity("a", Attributes{"score": math.Inf(-1)}); !errors.Is(err, ErrInvalidAttribute) {
		t.Fatalf("AddEntity(-Inf) error = %v, want ErrInvalidAttribute", err)
	}
	if e, _ := g.Entity("a"); len(e.Attrs) != 0 {
		t.Errorf("rejected merge changed attributes: %v", e.Attrs)
	}
	if g.SetEntityAttribute("a", "score", math.NaN()) {
		t.Error("SetEntityAttribute accepted NaN")
	}
	var buf bytes.Buffer
	if err := WriteDocument(g, &buf); err != nil {
		t.Errorf("WriteDocument after rejected values: %v", err)
	}
	if g.SetEntityAttribute("a", "conn", make(chan int)) {
		t.Error("SetEntityAttribute accepted a channel")
	}
	if !g.SetEntityAttribute("a", "score", 4.0) {
		t.Error("SetEntityAttribute rejected a number")
	}
}

func TestAttributesClone(t *testing.T) {
	var nilAttrs Attributes
	if c := nilAttrs.Clone(); c == nil {
		t.Fatal("Clone of nil returned nil")
	}
	a := Attributes{"k": "v"}
	c := a.Clone()
	c["k"] = "changed"
	if a["k"] != "v" {
		t.Error("Clone shares storage with the original")
	}
}
