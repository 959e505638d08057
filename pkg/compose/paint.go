package compose

import (
	"context"
	"image"
	"image/color"
	"iter"
	"math/rand/v2"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mondrian/pkg/palette"
	"github.com/matzehuels/mondrian/pkg/partition"
)

// Fill is a leaf together with the palette entry chosen for it.
type Fill struct {
	Rect  partition.Rect `json:"rect"`
	Index int            `json:"index"`
	Color color.RGBA     `json:"-"`
}

// BorderWidth returns the border width for a canvas: the longer side divided
// by 1000. Canvases under 1000 pixels on both sides get no border.
func BorderWidth(width, height uint32) uint32 {
	return max(width, height) / 1000
}

// Assign samples one palette entry per leaf, in leaf order.
func Assign(leaves iter.Seq[partition.Rect], s *palette.Sampler, rng *rand.Rand) []Fill {
	var fills []Fill
	for r := range leaves {
		i := s.Sample(rng)
		fills = append(fills, Fill{Rect: r, Index: i, Color: s.Palette().Color(i)})
	}
	return fills
}

// Paint colors every leaf and draws its border into img, returning the
// color assignment. Leaves are processed in sequence order; since they do
// not overlap the order does not affect the result.
func Paint(img *image.RGBA, leaves iter.Seq[partition.Rect], s *palette.Sampler, rng *rand.Rand, border uint32) []Fill {
	var fills []Fill
	for r := range leaves {
		i := s.Sample(rng)
		f := Fill{Rect: r, Index: i, Color: s.Palette().Color(i)}
		PaintFill(img, f, border)
		fills = append(fills, f)
	}
	return fills
}

// PaintFill paints a single leaf: the interior inset by border on every
// side, then four black bands of width border along the edges. Pixels
// outside f.Rect are never touched.
func PaintFill(img *image.RGBA, f Fill, border uint32) {
	draw.Draw(img, Interior(f.Rect, border), image.NewUniform(f.Color), image.Point{}, draw.Src)

	black := image.NewUniform(palette.Black)
	for _, band := range Bands(f.Rect, border) {
		draw.Draw(img, band, black, image.Point{}, draw.Src)
	}
}

// Interior returns the region of r strictly inside its border margin. The
// upper bounds saturate at the lower bounds, so a rectangle smaller than
// 2*border in either direction has an empty interior.
func Interior(r partition.Rect, border uint32) image.Rectangle {
	x0, y0 := r.X+border, r.Y+border
	x1 := max(satSub(r.MaxX(), border), x0)
	y1 := max(satSub(r.MaxY(), border), y0)
	return image.Rect(int(x0), int(y0), int(x1), int(y1)).Intersect(r.Image())
}

// Bands returns the top, bottom, left and right border bands of r. Each band
// spans the full rectangle on the perpendicular axis, so the corners are
// covered twice. Bands never extend past r.
func Bands(r partition.Rect, border uint32) [4]image.Rectangle {
	if border == 0 {
		return [4]image.Rectangle{}
	}
	x0, y0, x1, y1 := int(r.X), int(r.Y), int(r.MaxX()), int(r.MaxY())
	b := int(border)
	return [4]image.Rectangle{
		image.Rect(x0, y0, x1, min(y0+b, y1)),
		image.Rect(x0, max(y1-b, y0), x1, y1),
		image.Rect(x0, y0, min(x0+b, x1), y1),
		image.Rect(max(x1-b, x0), y0, x1, y1),
	}
}

// PaintParallel paints pre-assigned fills using up to workers goroutines.
// Fills must not overlap; the output is then identical to painting them one
// by one. A workers value below 1 means one goroutine per fill.
func PaintParallel(ctx context.Context, img *image.RGBA, fills []Fill, border uint32, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, f := range fills {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			PaintFill(img, f, border)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func satSub(a, b uint32) uint32 {
	if b >= a {
		return 0
	}
	return a - b
}
