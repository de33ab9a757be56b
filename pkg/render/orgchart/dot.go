package orgchart

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/peoplepack/pkg/hierarchy"
	"github.com/matzehuels/peoplepack/pkg/render"
	"github.com/matzehuels/peoplepack/pkg/render/styles"
)

// Options configures org-chart rendering.
type Options struct {
	// Members adds one node per person under their group.
	Members bool

	// LeftToRight lays the tree out horizontally.
	LeftToRight bool
}

// ToDOT converts a hierarchy to Graphviz DOT. Node names are group ids, so
// the output is deterministic for a given tree.
func ToDOT(root *hierarchy.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.LeftToRight {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#9ca3af\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if root == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	var edges []string
	hierarchy.Walk(root, func(n, parent *hierarchy.Node) bool {
		id := nodeID(n)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(groupAttrs(n), ", "))
		if parent != nil {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", nodeID(parent), id))
		}
		if opts.Members {
			for _, p := range n.Members {
				pid := id + "#" + p.ID
				attrs := []string{fmt.Sprintf("label=%q", p.DisplayName()), "shape=ellipse", "fontsize=11"}
				if p.Flagged {
					attrs = append(attrs, "fillcolor=\"#fee2e2\"")
				}
				fmt.Fprintf(&buf, "  %q [%s];\n", pid, strings.Join(attrs, ", "))
				edges = append(edges, fmt.Sprintf("  %q -> %q;\n", id, pid))
			}
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(n *hierarchy.Node) string {
	if n.ID == "" {
		return "/"
	}
	return n.ID
}

func groupAttrs(n *hierarchy.Node) []string {
	name := n.Name
	if name == "" {
		name = hierarchy.RootName
	}
	attrs := []string{fmt.Sprintf("label=%q", fmt.Sprintf("%s\n%d", name, n.Weight))}
	switch {
	case n.Depth == 0:
		attrs = append(attrs, "fillcolor=\"#f3f4f6\"", "fontsize=18")
	case n.Depth == 1:
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", styles.TagFill(n.Name, n.Color)), "fontcolor=white")
	default:
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", styles.DepthFill(n.Depth)))
	}
	return attrs
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

// normalizeViewBox replaces Graphviz's point-based svg header with one in
// pixels.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
