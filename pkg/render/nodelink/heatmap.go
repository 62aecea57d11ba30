package nodelink

import (
	"math"
	"strconv"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

// Heatmap sizing: area = HeatBaseSize + HeatSizeFactor*value.
const (
	HeatBaseSize   = 500
	HeatSizeFactor = 100
	heatShades     = 9
)

// HeatValues reads the numeric attribute metric of every entity. Missing or
// non-numeric values count as 0.
func HeatValues(g *graph.Graph, metric string) map[string]float64 {
	values := make(map[string]float64, g.EntityCount())
	for _, e := range g.Entities() {
		v, _ := e.Attrs.Float(metric)
		values[e.ID] = v
	}
	return values
}

// HeatSize returns the node area for a metric value.
func HeatSize(v float64) float64 { return HeatBaseSize + HeatSizeFactor*v }

// HeatShade maps v onto shade 1 (lightest) to 9 (darkest) of a sequential
// colour scheme spanning lo..hi. When lo == hi every value gets shade 1.
func HeatShade(v, lo, hi float64) int {
	if hi <= lo {
		return 1
	}
	t := (v - lo) / (hi - lo)
	return 1 + int(math.Round(min(max(t, 0), 1)*(heatShades-1)))
}

// HeatmapDOT draws every entity sized and coloured by its metric value.
// Relationships keep the base edge colour.
func HeatmapDOT(g *graph.Graph, metric string, opts Options) string {
	opts = opts.normalized()
	values := HeatValues(g, metric)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	return build(g, opts,
		func(e graph.Entity) nodeLook {
			v := values[e.ID]
			return nodeLook{fill: strconv.Itoa(HeatShade(v, lo, hi)), area: HeatSize(v)}
		},
		func(graph.Relationship) string { return opts.Style.EdgeColor },
	)
}
