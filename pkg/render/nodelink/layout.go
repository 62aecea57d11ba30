package nodelink

import (
	"math/rand/v2"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Layout names a node placement algorithm.
type Layout string

const (
	// Spring is a force-directed placement (Graphviz fdp).
	Spring Layout = "spring"
	// Circular places entities on circles (Graphviz circo).
	Circular Layout = "circular"
	// KamadaKawai minimizes Kamada-Kawai energy (Graphviz neato, mode=KK).
	KamadaKawai Layout = "kamada_kawai"
	// Random pins every entity at a uniformly random position.
	Random Layout = "random"
)

// Layouts lists every recognised layout in presentation order.
var Layouts = []Layout{Spring, Circular, KamadaKawai, Random}

// LookupLayout resolves a layout name case-insensitively. The second result
// is false when the name is not recognised.
func LookupLayout(name string) (Layout, bool) {
	l := Layout(strings.ToLower(strings.TrimSpace(name)))
	switch l {
	case Spring, Circular, KamadaKawai, Random:
		return l, true
	}
	return Random, false
}

// ParseLayout resolves a layout name. Unrecognised names fall back to
// [Random] without error.
func ParseLayout(name string) Layout {
	l, _ := LookupLayout(name)
	return l
}

func (l Layout) String() string { return string(l) }

// Engine returns the Graphviz layout engine that implements l.
func (l Layout) Engine() graphviz.Layout {
	switch l {
	case Spring:
		return graphviz.FDP
	case Circular:
		return graphviz.CIRCO
	default:
		return graphviz.NEATO
	}
}

// graphAttrs returns the engine-specific graph attributes for l.
func (l Layout) graphAttrs() []string {
	switch l {
	case KamadaKawai:
		return []string{`mode="KK"`, `overlap="false"`}
	case Spring:
		return []string{`overlap="false"`, `splines="true"`}
	case Random:
		return []string{`overlap="true"`}
	}
	return nil
}

// randomPositions draws pinned coordinates (in points) inside a width x height
// inch canvas for the random layout.
func randomPositions(ids []string, width, height float64, seed uint64) map[string][2]float64 {
	var rng *rand.Rand
	if seed == 0 {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	} else {
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	pos := make(map[string][2]float64, len(ids))
	for _, id := range ids {
		pos[id] = [2]float64{rng.Float64() * width * 72, rng.Float64() * height * 72}
	}
	return pos
}
