package group

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// generatorColors cycles through one colour per generator in Cayley graphs.
var generatorColors = []string{"#d62728", "#2ca02c", "#1f77b4", "#bcbd22", "#9467bd", "#8c564b"}

// DOTOptions configures Cayley graph output.
type DOTOptions struct {
	// Words labels each point with its word instead of its index.
	Words bool

	// Layout is the Graphviz layout engine attribute (default "neato").
	Layout string
}

// ToDOT converts the group to a Graphviz DOT Cayley graph.
//
// Since generators are involutions, every pair p <-> q is drawn once as an
// undirected edge coloured by its generator. Points fixed by a generator get
// a self loop. Unknown entries are drawn as dashed edges to a shared "?"
// node so partial tables stay readable.
func ToDOT(g *Group, opts DOTOptions) string {
	layout := opts.Layout
	if layout == "" {
		layout = "neato"
	}

	var buf bytes.Buffer
	buf.WriteString("graph Cayley {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", layout)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontname=\"SF Mono, Menlo, monospace\", fontsize=12];\n\n")

	for p := range g.points {
		label := fmt.Sprintf("%d", p)
		if opts.Words {
			label = g.words[p].String()
		}
		attrs := fmt.Sprintf("label=%q", label)
		if p == int(Identity) {
			attrs += ", penwidth=2"
		}
		fmt.Fprintf(&buf, "  p%d [%s];\n", p, attrs)
	}

	unknown := false
	buf.WriteString("\n")
	for p := range g.points {
		for gen := range g.generators {
			color := generatorColors[gen%len(generatorColors)]
			r, ok := g.MulGen(Point(p), Generator(gen))
			switch {
			case !ok:
				unknown = true
				fmt.Fprintf(&buf, "  p%d -- unknown [color=%q, style=dashed];\n", p, color)
			case int(r) >= p:
				fmt.Fprintf(&buf, "  p%d -- p%d [color=%q, tooltip=\"g%d\"];\n", p, r, color, gen)
			}
		}
	}
	if unknown {
		buf.WriteString("  unknown [label=\"?\", shape=plaintext, fillcolor=transparent];\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
