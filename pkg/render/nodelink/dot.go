package nodelink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

// DefaultTitle is the figure title used when none is given.
const DefaultTitle = "Cybersecurity Visualization"

// Style holds the fixed visual constants of a drawing. Node sizes are areas
// in square points; they are converted to Graphviz diameters in inches.
type Style struct {
	NodeColor      string  `toml:"node_color"`
	EdgeColor      string  `toml:"edge_color"`
	HighlightColor string  `toml:"highlight_color"`
	NodeSize       float64 `toml:"node_size"`
	FontSize       float64 `toml:"font_size"`
	FontColor      string  `toml:"font_color"`
	Width          float64 `toml:"width"`
	Height         float64 `toml:"height"`
	ColorScheme    string  `toml:"color_scheme"`
}

// DefaultStyle returns skyblue nodes of area 3000 on gray edges, size 10
// black labels and a 12x8 inch figure.
func DefaultStyle() Style {
	return Style{
		NodeColor:      "skyblue",
		EdgeColor:      "gray",
		HighlightColor: "red",
		NodeSize:       3000,
		FontSize:       10,
		FontColor:      "black",
		Width:          12,
		Height:         8,
		ColorScheme:    "reds9",
	}
}

// Options configures DOT generation.
type Options struct {
	// Title is drawn above the figure. Empty uses [DefaultTitle].
	Title string
	// Layout selects the placement algorithm. Empty uses [Random].
	Layout Layout
	Style  Style
	// Seed fixes the random layout. Zero draws fresh positions.
	Seed uint64
}

// DefaultOptions returns the spring layout with [DefaultStyle].
func DefaultOptions() Options {
	return Options{Title: DefaultTitle, Layout: Spring, Style: DefaultStyle()}
}

func (o Options) normalized() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Layout == "" {
		o.Layout = Random
	}
	d := DefaultStyle()
	s := &o.Style
	if s.NodeColor == "" {
		s.NodeColor = d.NodeColor
	}
	if s.EdgeColor == "" {
		s.EdgeColor = d.EdgeColor
	}
	if s.HighlightColor == "" {
		s.HighlightColor = d.HighlightColor
	}
	if s.NodeSize <= 0 {
		s.NodeSize = d.NodeSize
	}
	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	if s.FontColor == "" {
		s.FontColor = d.FontColor
	}
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if s.ColorScheme == "" {
		s.ColorScheme = d.ColorScheme
	}
	return o
}

// nodeLook is the per-entity fill and area.
type nodeLook struct {
	fill string
	area float64
}

type (
	nodeFunc func(graph.Entity) nodeLook
	edgeFunc func(graph.Relationship) string
)

// ToDOT converts the graph to Graphviz DOT with every entity and relationship
// drawn in the base style. Render the result with [Render] using the same
// layout.
func ToDOT(g *graph.Graph, opts Options) string {
	opts = opts.normalized()
	plain := nodeLook{fill: opts.Style.NodeColor, area: opts.Style.NodeSize}
	return build(g, opts,
		func(graph.Entity) nodeLook { return plain },
		func(graph.Relationship) string { return opts.Style.EdgeColor },
	)
}

func build(g *graph.Graph, opts Options, node nodeFunc, edge edgeFunc) string {
	s := opts.Style
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%q;\n", string(opts.Layout.Engine()))
	fmt.Fprintf(&buf, "  label=%q;\n", opts.Title)
	buf.WriteString("  labelloc=\"t\";\n")
	fmt.Fprintf(&buf, "  fontsize=%s;\n", num(s.FontSize*1.6))
	fmt.Fprintf(&buf, "  size=\"%s,%s\";\n", num(s.Width), num(s.Height))
	buf.WriteString("  bgcolor=\"white\";\n")
	for _, a := range opts.Layout.graphAttrs() {
		fmt.Fprintf(&buf, "  %s;\n", a)
	}
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, penwidth=0, fontsize=%s, fontcolor=%q];\n",
		num(s.FontSize), s.FontColor)
	fmt.Fprintf(&buf, "  edge [color=%q];\n", s.EdgeColor)
	buf.WriteString("\n")

	entities := g.Entities()
	var pos map[string][2]float64
	if opts.Layout == Random {
		ids := make([]string, len(entities))
		for i, e := range entities {
			ids[i] = e.ID
		}
		pos = randomPositions(ids, s.Width, s.Height, opts.Seed)
	}

	for _, e := range entities {
		look := node(e)
		attrs := []string{
			fmt.Sprintf("label=%q", e.ID),
			fmt.Sprintf("width=%s", num(Diameter(look.area))),
			fmt.Sprintf("tooltip=%q", tooltip(e.Attrs)),
		}
		attrs = append(attrs, fillAttrs(look.fill, s.ColorScheme)...)
		if p, ok := pos[e.ID]; ok {
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", num(p[0]), num(p[1])))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", e.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, r := range g.Relationships() {
		color := edge(r)
		if color == s.EdgeColor {
			fmt.Fprintf(&buf, "  %q -- %q;\n", r.Source, r.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [color=%q, penwidth=2];\n", r.Source, r.Target, color)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// fillAttrs renders a fill; a bare shade index ("1".."9") is resolved against
// the colour scheme.
func fillAttrs(fill, scheme string) []string {
	if len(fill) == 1 && fill[0] >= '1' && fill[0] <= '9' {
		return []string{fmt.Sprintf("colorscheme=%q", scheme), fmt.Sprintf("fillcolor=%q", fill)}
	}
	return []string{fmt.Sprintf("fillcolor=%q", fill)}
}

// Diameter converts a node area in square points to a diameter in inches.
func Diameter(area float64) float64 {
	return math.Sqrt(max(area, 1)) / 72
}

func tooltip(attrs graph.Attributes) string {
	lines := make([]string, 0, len(attrs))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		lines = append(lines, k+": "+attrString(attrs[k]))
	}
	return strings.Join(lines, "\n")
}

func attrString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*1e4)/1e4, 'f', -1, 64)
}
