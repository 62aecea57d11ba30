package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Format is a rendered artifact format.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
	JPG Format = "jpg"
	// DOT is the unrendered Graphviz source.
	DOT Format = "dot"
)

// Formats lists every supported artifact format.
var Formats = []Format{SVG, PNG, JPG, DOT}

// ParseFormat resolves a format name or file extension ("svg", ".png",
// "jpeg").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "svg":
		return SVG, nil
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPG, nil
	case "dot", "gv":
		return DOT, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case SVG:
		return "image/svg+xml"
	case PNG:
		return "image/png"
	case JPG:
		return "image/jpeg"
	}
	return "text/vnd.graphviz"
}

// Render lays out a DOT graph with the engine of layout and renders it.
// DOT format returns the source unchanged.
func Render(ctx context.Context, dot string, layout Layout, format Format) ([]byte, error) {
	switch format {
	case DOT:
		return []byte(dot), nil
	case SVG:
		return RenderSVG(ctx, dot, layout)
	case PNG:
		return render(ctx, dot, layout, graphviz.PNG)
	case JPG:
		return render(ctx, dot, layout, graphviz.JPG)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string, layout Layout) ([]byte, error) {
	svg, err := render(ctx, dot, layout, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string, layout Layout) ([]byte, error) {
	return render(ctx, dot, layout, graphviz.PNG)
}

// RenderJPG renders a DOT graph to JPEG using Graphviz.
func RenderJPG(ctx context.Context, dot string, layout Layout) ([]byte, error) {
	return render(ctx, dot, layout, graphviz.JPG)
}

func render(ctx context.Context, dot string, layout Layout, format graphviz.Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(layout.Engine())

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg element so the drawing scales with
// its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
