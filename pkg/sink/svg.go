package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/mondrian/pkg/compose"
	"github.com/matzehuels/mondrian/pkg/palette"
)

// RenderSVG draws every leaf as a filled rect and overlays the black border
// bands as separate rects, so the vector output matches the raster pixel for
// pixel at full scale.
func RenderSVG(comp *compose.Composition, opts ...Option) []byte {
	o := newOptions(opts)
	w, h := comp.Width(), comp.Height()
	dw := max(int(float64(w)*o.scale), 1)
	dh := max(int(float64(h)*o.scale), 1)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" shape-rendering="crispEdges">`+"\n",
		w, h, dw, dh)
	fmt.Fprintf(&buf, "  <!-- seed %d -->\n", comp.Seed)

	buf.WriteString(`  <g id="leaves">` + "\n")
	for i, f := range comp.Fills {
		r := f.Rect
		fmt.Fprintf(&buf, `    <rect id="leaf-%d" x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n",
			i, r.X, r.Y, r.Width, r.Height, palette.Hex(f.Color))
	}
	buf.WriteString("  </g>\n")

	if comp.Border > 0 {
		fmt.Fprintf(&buf, `  <g id="borders" fill="%s">`+"\n", palette.Hex(palette.Black))
		for _, f := range comp.Fills {
			for _, b := range compose.Bands(f.Rect, comp.Border) {
				if b.Empty() {
					continue
				}
				fmt.Fprintf(&buf, `    <rect x="%d" y="%d" width="%d" height="%d"/>`+"\n",
					b.Min.X, b.Min.Y, b.Dx(), b.Dy())
			}
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
