package server

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/matzehuels/cybergraph/pkg/analysis"
	"github.com/matzehuels/cybergraph/pkg/httputil"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
img { max-width: 100%; border: 1px solid #eee; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Entities}} entities, {{.Relationships}} relationships</p>
<p>
<a href="/graph.svg">graph.svg</a> |
<a href="/graph.png">graph.png</a> |
<a href="{{.HeatmapURL}}">heatmap ({{.Metric}})</a> |
<a href="/export/csv">csv</a> |
<a href="/export/json">json</a> |
<a href="/export/gexf">gexf</a>
</p>
<form method="post" action="/cluster"><button type="submit">Recompute clusters</button></form>
<form method="get" action="/path.svg">
<select name="source">{{range .Rows}}<option>{{.ID}}</option>{{end}}</select>
<select name="target">{{range .Rows}}<option>{{.ID}}</option>{{end}}</select>
<button type="submit">Shortest path</button>
</form>
<p><img src="/graph.svg" alt="graph"></p>
<table>
<tr><th>Entity</th><th>Type</th><th>Cluster</th></tr>
{{range .Rows}}<tr><td>{{.ID}}</td><td>{{.Type}}</td><td>{{.Cluster}}</td></tr>
{{end}}</table>
</body>
</html>
`))

type indexRow struct {
	ID, Type, Cluster string
}

type indexData struct {
	Title         string
	Entities      int
	Relationships int
	Metric        string
	HeatmapURL    string
	Rows          []indexRow
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	opts := s.opts.Defaults
	if err := opts.ValidateAndSetDefaults(); err != nil {
		httputil.RespondError(w, r, err)
		return
	}

	s.mu.RLock()
	data := indexData{
		Title:         opts.Title,
		Entities:      s.g.EntityCount(),
		Relationships: s.g.RelationshipCount(),
		Metric:        s.opts.Metric,
		HeatmapURL:    "/heatmap/" + url.PathEscape(s.opts.Metric) + ".svg",
	}
	for _, e := range s.g.Entities() {
		row := indexRow{ID: e.ID, Type: "N/A", Cluster: "-"}
		if t, ok := e.Attrs.String("type"); ok {
			row.Type = t
		}
		if c, ok := e.Attrs[analysis.ClusterAttribute]; ok {
			row.Cluster = fmt.Sprint(c)
		}
		data.Rows = append(data.Rows, row)
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("rendering index", "err", err)
	}
}
