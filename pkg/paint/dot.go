package paint

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/constelviz/constel/pkg/graph"
)

// DOTOptions configures DOT export.
type DOTOptions struct {
	// Pinned emits each node with a pos="x,y!" attribute so Graphviz keeps
	// the simulated layout instead of computing its own. Positions are
	// converted from screen units to Graphviz points (1/72 inch scaling is
	// left to the consumer; coordinates pass through unscaled).
	Pinned bool

	// Detailed includes the node kind and relationship in labels.
	Detailed bool
}

// ToDOT converts a settled graph to Graphviz DOT. With Pinned set, the
// simulated positions survive into layout engines that honor pos pins
// (neato -n semantics); otherwise Graphviz lays the graph out itself.
func ToDOT(g *graph.Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("graph constellation {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=11];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := dotAttrs(n, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range g.Links() {
		style := ""
		if l.Relationship == graph.RelationshipIndirect {
			style = ` [style=dashed]`
		}
		fmt.Fprintf(&buf, "  %q -- %q%s;\n", l.Source, l.Target, style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotAttrs(n *graph.Node, opts DOTOptions) []string {
	label := ElideLabel(n.DisplayLabel())
	if n.Glyph != "" {
		label = n.Glyph + "\n" + label
	}
	if opts.Detailed && n.Relationship != "" {
		label += "\n" + n.Kind + " · " + n.Relationship
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", n.Color),
		fmt.Sprintf("width=%.2f", n.Radius/36), // radius in points to diameter in inches
	}
	if opts.Pinned {
		attrs = append(attrs, fmt.Sprintf("pos=%q", fmt.Sprintf("%.2f,%.2f!", n.X, n.Y)))
	}
	return attrs
}

// RenderDOT rasterizes a DOT document with Graphviz into the given format
// ("svg", "png", "dot").
func RenderDOT(ctx context.Context, dot string, format string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.Format(format), &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
