package io

import (
	"bytes"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/cybergraph/pkg/graph"
)

func sample(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	steps := []error{
		g.AddEntity("Domain: example.com", graph.Attributes{"type": "Domain", "vulnerability_score": 7.0}),
		g.AddEntity("IP: 192.168.1.1", graph.Attributes{"type": "IP", "exposed": true, "score": 2.5}),
		g.AddEntity("Person: Alice", graph.Attributes{"type": "Person", "tags": []any{"admin", "oncall"}}),
		g.AddEntity("Unknown", nil),
		g.AddRelationship("Domain: example.com", "IP: 192.168.1.1", graph.Attributes{"relationship": "Resolves to"}),
		g.AddRelationship("Person: Alice", "Domain: example.com", graph.Attributes{"relationship": "Owns", "since": 2019.0}),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func assertSameGraph(t *testing.T, got, want *graph.Graph) {
	t.Helper()
	if !reflect.DeepEqual(got.Entities(), want.Entities()) {
		t.Errorf("entities = %v, want %v", got.Entities(), want.Entities())
	}
	if !reflect.DeepEqual(got.Relationships(), want.Relationships()) {
		t.Errorf("relationships = %v, want %v", got.Relationships(), want.Relationships())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", CSV, false},
		{"JSON", JSON, false},
		{".gexf", GEXF, false},
		{"graphml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if f, err := FormatFromPath("out/summary.csv"); err != nil || f != CSV {
		t.Errorf("FormatFromPath = %q, %v", f, err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := sample(t)
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	assertSameGraph(t, got, g)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n    \"entities\"") {
		t.Errorf("JSON not indented with four spaces:\n%s", data)
	}
}

func TestImportJSONErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ImportJSON(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"entities": [{"attributes": {}}]}`), 0o644)
	_, err := ImportJSON(bad)
	if !errors.Is(err, graph.ErrMissingName) {
		t.Errorf("error = %v, want ErrMissingName", err)
	}
	if err != nil && !strings.Contains(err.Error(), bad) {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestReadJSONSelfRelationship(t *testing.T) {
	doc := `{
		"entities": [{"name": "Server: mail01", "attributes": {"type": "Server"}}],
		"relationships": [{"source": "Server: mail01", "target": "Server: mail01", "attributes": {"relationship": "Relays"}}]
	}`
	g, err := ReadJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if g.RelationshipCount() != 1 {
		t.Fatalf("relationships = %d, want 1", g.RelationshipCount())
	}

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	assertSameGraph(t, back, g)

	buf.Reset()
	if err := WriteGEXF(g, &buf); err != nil {
		t.Fatalf("WriteGEXF: %v", err)
	}
	if !strings.Contains(buf.String(), `source="Server: mail01" target="Server: mail01"`) {
		t.Error("GEXF output lacks the self relationship")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(sample(t), &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := strings.Join([]string{
		`Entity,Type,Attributes`,
		`Domain: example.com,Domain,"{""type"":""Domain"",""vulnerability_score"":7}"`,
		`IP: 192.168.1.1,IP,"{""exposed"":true,""score"":2.5,""type"":""IP""}"`,
		`Person: Alice,Person,"{""tags"":[""admin"",""oncall""],""type"":""Person""}"`,
		`Unknown,N/A,{}`,
		`Source,Target,Relationship`,
		`Domain: example.com,IP: 192.168.1.1,"{""relationship"":""Resolves to""}"`,
		`Person: Alice,Domain: example.com,"{""relationship"":""Owns"",""since"":2019}"`,
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("CSV =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestSplitCSVSections(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(sample(t), &buf); err != nil {
		t.Fatal(err)
	}
	entities, relationships, err := SplitCSVSections(&buf)
	if err != nil {
		t.Fatalf("SplitCSVSections: %v", err)
	}
	if len(entities) != 4 || len(relationships) != 2 {
		t.Fatalf("sections = %d entities, %d relationships; want 4, 2", len(entities), len(relationships))
	}
	if entities[3][0] != "Unknown" || entities[3][1] != "N/A" {
		t.Errorf("bare entity row = %v", entities[3])
	}
	if relationships[1][0] != "Person: Alice" {
		t.Errorf("relationship row = %v", relationships[1])
	}
}

func TestSplitCSVSectionsEmptyGraph(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(graph.New(), &buf); err != nil {
		t.Fatal(err)
	}
	entities, relationships, err := SplitCSVSections(&buf)
	if err != nil {
		t.Fatalf("SplitCSVSections: %v", err)
	}
	if len(entities) != 0 || len(relationships) != 0 {
		t.Errorf("sections = %v, %v; want empty", entities, relationships)
	}
}

func TestSplitCSVSectionsMissingHeader(t *testing.T) {
	tests := map[string]string{
		"NoEntityHeader":       "a,b,c\n",
		"NoRelationshipHeader": "Entity,Type,Attributes\na,N/A,{}\n",
		"Empty":                "",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := SplitCSVSections(strings.NewReader(in))
			if !errors.Is(err, ErrMissingSection) {
				t.Errorf("error = %v, want ErrMissingSection", err)
			}
		})
	}
}

func TestCSVRoundTrip(t *testing.T) {
	g := sample(t)
	path := filepath.Join(t.TempDir(), "graph_summary.csv")
	if err := ExportCSV(g, path); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	got, err := ImportCSV(path)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	assertSameGraph(t, got, g)
}

// gexfIn mirrors the written structure for assertions.
type gexfIn struct {
	XMLName xml.Name `xml:"gexf"`
	Version string   `xml:"version,attr"`
	Graph   struct {
		DefaultEdgeType string `xml:"defaultedgetype,attr"`
		Attributes      []struct {
			Class string `xml:"class,attr"`
			Attrs []struct {
				ID    string `xml:"id,attr"`
				Title string `xml:"title,attr"`
				Type  string `xml:"type,attr"`
			} `xml:"attribute"`
		} `xml:"attributes"`
		Nodes []struct {
			ID     string `xml:"id,attr"`
			Label  string `xml:"label,attr"`
			Values []struct {
				For   string `xml:"for,attr"`
				Value string `xml:"value,attr"`
			} `xml:"attvalues>attvalue"`
		} `xml:"nodes>node"`
		Edges []struct {
			Source string `xml:"source,attr"`
			Target string `xml:"target,attr"`
		} `xml:"edges>edge"`
	} `xml:"graph"`
}

func TestWriteGEXF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGEXF(sample(t), &buf); err != nil {
		t.Fatalf("WriteGEXF: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<?xml") {
		t.Error("missing XML header")
	}

	var doc gexfIn
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}
	if doc.XMLName.Space != "http://www.gexf.net/1.2draft" {
		t.Errorf("namespace = %q, want http://www.gexf.net/1.2draft", doc.XMLName.Space)
	}
	if doc.Version != "1.2" || doc.Graph.DefaultEdgeType != "undirected" {
		t.Errorf("version=%q edgetype=%q", doc.Version, doc.Graph.DefaultEdgeType)
	}
	if len(doc.Graph.Nodes) != 4 || len(doc.Graph.Edges) != 2 {
		t.Fatalf("nodes=%d edges=%d, want 4, 2", len(doc.Graph.Nodes), len(doc.Graph.Edges))
	}

	types := map[string]map[string]string{}
	for _, section := range doc.Graph.Attributes {
		types[section.Class] = map[string]string{}
		for _, a := range section.Attrs {
			types[section.Class][a.Title] = a.Type
		}
	}
	wantNode := map[string]string{
		"type":                "string",
		"vulnerability_score": "long",
		"exposed":             "boolean",
		"score":               "double",
		"tags":                "string",
	}
	if !reflect.DeepEqual(types["node"], wantNode) {
		t.Errorf("node attributes = %v, want %v", types["node"], wantNode)
	}
	wantEdge := map[string]string{"relationship": "string", "since": "long"}
	if !reflect.DeepEqual(types["edge"], wantEdge) {
		t.Errorf("edge attributes = %v, want %v", types["edge"], wantEdge)
	}

	alice := doc.Graph.Nodes[2]
	if alice.ID != "Person: Alice" || alice.Label != "Person: Alice" {
		t.Errorf("node = %+v", alice)
	}
	found := false
	for _, v := range alice.Values {
		if v.Value == `["admin","oncall"]` {
			found = true
		}
	}
	if !found {
		t.Errorf("nested value not JSON-encoded: %+v", alice.Values)
	}
	if len(doc.Graph.Nodes[3].Values) != 0 {
		t.Errorf("bare entity has values: %+v", doc.Graph.Nodes[3].Values)
	}
}

func TestWidenMixedTypes(t *testing.T) {
	d := declare([]graph.Attributes{
		{"score": 1.0, "flag": true},
		{"score": 1.5, "flag": "yes"},
		{"score": nil},
	})
	if d.types["score"] != "double" {
		t.Errorf("score type = %q, want double", d.types["score"])
	}
	if d.types["flag"] != "string" {
		t.Errorf("flag type = %q, want string", d.types["flag"])
	}
}

func TestExportDispatch(t *testing.T) {
	g := sample(t)
	dir := t.TempDir()
	for _, f := range Formats {
		path := filepath.Join(dir, DefaultFileName(f))
		if err := Export(g, path, f); err != nil {
			t.Errorf("Export(%s): %v", f, err)
			continue
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("Export(%s) wrote nothing", f)
		}
	}
	if err := Export(g, filepath.Join(dir, "x"), Format("pdf")); err == nil {
		t.Error("expected error for unsupported format")
	}
	if err := ExportCSV(g, filepath.Join(dir, "missing", "x.csv")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestImportExampleNetwork(t *testing.T) {
	g, err := ImportJSON(filepath.Join("..", "..", "examples", "network.json"))
	if err != nil {
		t.Fatal(err)
	}
	if g.EntityCount() != 7 || g.RelationshipCount() != 6 {
		t.Errorf("got %d entities, %d relationships", g.EntityCount(), g.RelationshipCount())
	}
	e, _ := g.Entity("Server: mail01")
	if e.Attrs["vulnerability_score"] != 9.0 {
		t.Errorf("vulnerability_score = %v", e.Attrs["vulnerability_score"])
	}
}
