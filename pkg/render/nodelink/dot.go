package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/bagrules/pkg/dag"
	"github.com/matzehuels/bagrules/pkg/rules"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds in- and out-degree to node labels.
	Detailed bool

	// Highlight, when set, is drawn with a gold fill.
	Highlight rules.Entity
}

// ToDOT converts a containment graph to Graphviz DOT format.
// Edges are labelled with their quantity. Entities that hold nothing are
// drawn grey.
func ToDOT(g *dag.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(g.Direction()))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=18];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i, e := range g.Nodes() {
		id := dag.NodeID(i)
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(g, id, e, opts.Detailed))}
		switch {
		case e == opts.Highlight:
			attrs = append(attrs, "fillcolor=gold")
		case g.OutDegree(id) == 0 && g.InDegree(id) > 0 && g.Direction() == dag.Forward:
			attrs = append(attrs, "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", e.String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	nodes := g.Nodes()
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q [label=\"%d\"];\n", nodes[e.From].String(), nodes[e.To].String(), e.Weight)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Containers sit above their contents in either direction.
func rankdir(d dag.Direction) string {
	if d == dag.Reverse {
		return "BT"
	}
	return "TB"
}

func fmtLabel(g *dag.Graph, id dag.NodeID, e rules.Entity, detailed bool) string {
	if !detailed {
		return e.String()
	}
	return fmt.Sprintf("%s\nin: %d  out: %d", e, g.InDegree(id), g.OutDegree(id))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from the
// origin regardless of Graphviz's padding offsets.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}
