package io

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/matzehuels/cybergraph/pkg/buildinfo"
	"github.com/matzehuels/cybergraph/pkg/graph"
)

// GEXF 1.2 draft namespace and version.
const (
	gexfNamespace = "http://www.gexf.net/1.2draft"
	gexfVersion   = "1.2"
)

// GEXF attribute value types.
const (
	gexfBoolean = "boolean"
	gexfLong    = "long"
	gexfDouble  = "double"
	gexfString  = "string"
)

type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	XMLNS   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Meta    gexfMeta  `xml:"meta"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfMeta struct {
	LastModified string `xml:"lastmodifieddate,attr"`
	Creator      string `xml:"creator"`
}

type gexfGraph struct {
	DefaultEdgeType string           `xml:"defaultedgetype,attr"`
	Mode            string           `xml:"mode,attr"`
	Attributes      []gexfAttributes `xml:"attributes"`
	Nodes           []gexfNode       `xml:"nodes>node"`
	Edges           []gexfEdge       `xml:"edges>edge"`
}

type gexfAttributes struct {
	Class string          `xml:"class,attr"`
	Mode  string          `xml:"mode,attr"`
	Attrs []gexfAttribute `xml:"attribute"`
}

type gexfAttribute struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type gexfNode struct {
	ID     string      `xml:"id,attr"`
	Label  string      `xml:"label,attr"`
	Values []gexfValue `xml:"attvalues>attvalue,omitempty"`
}

type gexfEdge struct {
	ID     string      `xml:"id,attr"`
	Source string      `xml:"source,attr"`
	Target string      `xml:"target,attr"`
	Values []gexfValue `xml:"attvalues>attvalue,omitempty"`
}

type gexfValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

// WriteGEXF writes g as an undirected static GEXF 1.2 document. Every
// attribute key is declared once per class with a type inferred from its
// values: boolean, long (integral numbers), double or string. Arrays and
// objects are written as JSON strings. Null values are omitted.
func WriteGEXF(g *graph.Graph, w io.Writer) error {
	entities := g.Entities()
	relationships := g.Relationships()

	nodeAttrs := make([]graph.Attributes, len(entities))
	for i, e := range entities {
		nodeAttrs[i] = e.Attrs
	}
	edgeAttrs := make([]graph.Attributes, len(relationships))
	for i, r := range relationships {
		edgeAttrs[i] = r.Attrs
	}
	nodeDecl := declare(nodeAttrs)
	edgeDecl := declare(edgeAttrs)

	doc := gexfDoc{
		XMLNS:   gexfNamespace,
		Version: gexfVersion,
		Meta: gexfMeta{
			LastModified: time.Now().Format(time.DateOnly),
			Creator:      "cybergraph " + buildinfo.Version,
		},
		Graph: gexfGraph{
			DefaultEdgeType: "undirected",
			Mode:            "static",
		},
	}
	if len(nodeDecl.order) > 0 {
		doc.Graph.Attributes = append(doc.Graph.Attributes, nodeDecl.section("node"))
	}
	if len(edgeDecl.order) > 0 {
		doc.Graph.Attributes = append(doc.Graph.Attributes, edgeDecl.section("edge"))
	}

	for _, e := range entities {
		values, err := nodeDecl.values(e.Attrs)
		if err != nil {
			return fmt.Errorf("entity %s: %w", e.ID, err)
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, gexfNode{ID: e.ID, Label: e.ID, Values: values})
	}
	for i, r := range relationships {
		values, err := edgeDecl.values(r.Attrs)
		if err != nil {
			return fmt.Errorf("relationship %s-%s: %w", r.Source, r.Target, err)
		}
		doc.Graph.Edges = append(doc.Graph.Edges, gexfEdge{
			ID:     strconv.Itoa(i),
			Source: r.Source,
			Target: r.Target,
			Values: values,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// declarations assigns ids and types to the attribute keys of one class.
type declarations struct {
	order []string
	ids   map[string]string
	types map[string]string
}

func declare(all []graph.Attributes) declarations {
	d := declarations{ids: map[string]string{}, types: map[string]string{}}
	for _, attrs := range all {
		for _, k := range sortedKeys(attrs) {
			t := valueType(attrs[k])
			if t == "" {
				continue
			}
			prev, seen := d.types[k]
			if !seen {
				d.ids[k] = strconv.Itoa(len(d.order))
				d.order = append(d.order, k)
				d.types[k] = t
				continue
			}
			d.types[k] = widen(prev, t)
		}
	}
	return d
}

func (d declarations) section(class string) gexfAttributes {
	s := gexfAttributes{Class: class, Mode: "static"}
	for _, k := range d.order {
		s.Attrs = append(s.Attrs, gexfAttribute{ID: d.ids[k], Title: k, Type: d.types[k]})
	}
	return s
}

func (d declarations) values(attrs graph.Attributes) ([]gexfValue, error) {
	var out []gexfValue
	for _, k := range d.order {
		v, ok := attrs[k]
		if !ok || v == nil {
			continue
		}
		s, err := formatValue(v, d.types[k])
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		out = append(out, gexfValue{For: d.ids[k], Value: s})
	}
	return out, nil
}

// valueType returns the narrowest GEXF type for v, or "" for null.
func valueType(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		return gexfBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return gexfLong
	case float32:
		return floatType(float64(v))
	case float64:
		return floatType(v)
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return gexfLong
		}
		return gexfDouble
	}
	return gexfString
}

func floatType(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return gexfLong
	}
	return gexfDouble
}

// widen returns the narrowest type that holds values of both a and b.
func widen(a, b string) string {
	switch {
	case a == b:
		return a
	case (a == gexfLong && b == gexfDouble) || (a == gexfDouble && b == gexfLong):
		return gexfDouble
	}
	return gexfString
}

func formatValue(v any, typ string) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		if typ == gexfLong {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case float32:
		return formatValue(float64(v), typ)
	case json.Number:
		return v.String(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
