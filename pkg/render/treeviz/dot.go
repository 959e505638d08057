package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mondrian/pkg/compose"
	"github.com/matzehuels/mondrian/pkg/palette"
	"github.com/matzehuels/mondrian/pkg/partition"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds depth, area and palette index to every label.
	Detailed bool
}

// ToDOT converts a partition tree to DOT. fills, if non-nil, must be in
// leaf order (as returned by compose) and colors the leaf boxes.
func ToDOT(t *partition.Tree, fills []compose.Fill, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph partition {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("\n")

	leaf := 0
	t.Walk(func(i int, n partition.Node) bool {
		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(t, n, leaf, fills, opts))}
		if n.IsLeaf() {
			if leaf < len(fills) {
				attrs = append(attrs, leafAttrs(fills[leaf].Color)...)
			}
			leaf++
		} else {
			attrs = append(attrs, `style="filled,dashed"`, "fillcolor=\"#eeeeee\"")
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
		return true
	})

	buf.WriteString("\n")
	t.Walk(func(i int, n partition.Node) bool {
		if !n.IsLeaf() {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", i, n.Left)
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", i, n.Right)
		}
		return true
	})

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(t *partition.Tree, n partition.Node, leaf int, fills []compose.Fill, opts Options) string {
	parts := []string{n.Rect.String()}
	if !n.IsLeaf() {
		parts = append(parts, "split: "+SplitAxis(t, n).String())
	}
	if opts.Detailed {
		parts = append(parts, fmt.Sprintf("depth: %d", n.Depth), fmt.Sprintf("area: %d", n.Rect.Area()))
		if n.IsLeaf() && leaf < len(fills) {
			parts = append(parts, fmt.Sprintf("color: %d %s", fills[leaf].Index, palette.Hex(fills[leaf].Color)))
		}
	}
	return strings.Join(parts, "\n")
}

func leafAttrs(c color.RGBA) []string {
	attrs := []string{fmt.Sprintf("fillcolor=%q", palette.Hex(c))}
	// Rec. 601 luma; dark fills get white text.
	if 299*uint32(c.R)+587*uint32(c.G)+114*uint32(c.B) < 128*1000 {
		attrs = append(attrs, "fontcolor=white")
	}
	return attrs
}

// SplitAxis reports how an internal node was divided: Horizontal when its
// children sit side by side.
func SplitAxis(t *partition.Tree, n partition.Node) partition.Axis {
	left := t.Node(n.Left).Rect
	if left.Height == n.Rect.Height && left.Width < n.Rect.Width {
		return partition.Horizontal
	}
	return partition.Vertical
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
