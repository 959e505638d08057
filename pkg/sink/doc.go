// Package sink encodes a finished composition into bytes and persists them.
//
// Raster formats (PNG, JPEG, BMP, TIFF) encode the painted pixels. SVG
// redraws the leaves as vector rectangles with the same border geometry,
// and JSON exports the layout itself: canvas size, seed, border width,
// palette and every leaf with its color.
//
//	data, err := sink.Render(comp, sink.FormatPNG, sink.WithScale(0.5))
//	if err != nil {
//	    return err
//	}
//	return sink.Save("mondrian.png", data)
//
// Scaling is nearest-neighbour so borders stay crisp; no format applies
// anti-aliasing or color management.
package sink
