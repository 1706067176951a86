package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cratecat/pkg/deps"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the resolved version and dependency kinds in node
	// labels. When false, only the catalog key is shown.
	Detailed bool

	// Root names an extra node linked to every catalog entry that no other
	// entry depends on. Empty means no root node.
	Root string
}

var edgeStyles = map[deps.DependencyKind]string{
	deps.Normal:      "solid",
	deps.Build:       "dashed",
	deps.Development: "dotted",
}

// ToDOT converts a catalog to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(catalog []*deps.Dependency, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	required := make(map[deps.Key]bool)
	for _, d := range catalog {
		for _, keys := range d.Dependencies {
			for _, k := range keys {
				required[k] = true
			}
		}
	}

	if opts.Root != "" {
		fmt.Fprintf(&buf, "  %q [label=%q, shape=doubleoctagon];\n", opts.Root, opts.Root)
	}
	for _, d := range catalog {
		attrs := fmtAttrs(d, fmtLabel(d, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", d.Key().String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, d := range catalog {
		from := d.Key().String()
		if opts.Root != "" && !required[d.Key()] {
			fmt.Fprintf(&buf, "  %q -> %q;\n", opts.Root, from)
		}
		for _, kind := range deps.AllKinds {
			for _, to := range d.Dependencies[kind] {
				fmt.Fprintf(&buf, "  %q -> %q [style=%s];\n", from, to.String(), edgeStyles[kind])
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(d *deps.Dependency, detailed bool) string {
	label := d.Key().String()
	if !detailed {
		return label
	}
	kinds := make([]string, 0, len(d.DependencyKinds))
	for _, k := range d.Kinds() {
		kinds = append(kinds, k.String())
	}
	return label + "\n" + d.Version + "\n" + strings.Join(kinds, ", ")
}

func fmtAttrs(d *deps.Dependency, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if d.Local {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	if d.Kind(deps.Normal) == nil {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
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

// normalizeViewBox rewrites the root element to a zero-origin viewBox with
// matching pixel size, so the SVG scales when embedded.
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
