package compose

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/matzehuels/mondrian/pkg/palette"
	"github.com/matzehuels/mondrian/pkg/partition"
)

var sentinel = color.RGBA{R: 7, G: 7, B: 7, A: 255}

func filled(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = sentinel.R, sentinel.G, sentinel.B, sentinel.A
	}
	return img
}

func inBands(r partition.Rect, border uint32, x, y int) bool {
	for _, b := range Bands(r, border) {
		if image.Pt(x, y).In(b) {
			return true
		}
	}
	return false
}

func TestBorderWidth(t *testing.T) {
	tests := []struct {
		w, h uint32
		want uint32
	}{
		{999, 999, 0},
		{1000, 1000, 1},
		{4096, 2160, 4},
		{640, 2500, 2},
		{1, 1, 0},
	}
	for _, tt := range tests {
		if got := BorderWidth(tt.w, tt.h); got != tt.want {
			t.Errorf("BorderWidth(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestInteriorEmptyForSmallRects(t *testing.T) {
	tests := []struct {
		r      partition.Rect
		border uint32
	}{
		{partition.Rect{Width: 3, Height: 10}, 2},
		{partition.Rect{X: 5, Y: 5, Width: 10, Height: 1}, 1},
		{partition.Rect{X: 100, Y: 100, Width: 1, Height: 1}, 50},
	}
	for _, tt := range tests {
		if got := Interior(tt.r, tt.border); !got.Empty() {
			t.Errorf("Interior(%v, %d) = %v, want empty", tt.r, tt.border, got)
		}
	}
	want := image.Rect(12, 22, 38, 58)
	if got := Interior(partition.Rect{X: 10, Y: 20, Width: 30, Height: 40}, 2); got != want {
		t.Errorf("Interior = %v, want %v", got, want)
	}
}

func TestPaintFillTinyLeaf(t *testing.T) {
	img := filled(20, 20)
	leaf := partition.Rect{X: 4, Y: 4, Width: 3, Height: 10}
	PaintFill(img, Fill{Rect: leaf, Color: color.RGBA{R: 255, A: 255}}, 2)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			got := img.RGBAAt(x, y)
			switch {
			case leaf.Contains(uint32(x), uint32(y)):
				if got != palette.Black {
					t.Fatalf("pixel (%d,%d) = %v, want black", x, y, got)
				}
			case got != sentinel:
				t.Fatalf("pixel (%d,%d) outside the leaf was painted", x, y)
			}
		}
	}
}

func TestPaintFillStaysInsideOffsetRect(t *testing.T) {
	img := filled(30, 30)
	leaf := partition.Rect{X: 10, Y: 12, Width: 6, Height: 5}
	red := color.RGBA{R: 255, A: 255}
	PaintFill(img, Fill{Rect: leaf, Color: red}, 1)

	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			got := img.RGBAAt(x, y)
			switch {
			case !leaf.Contains(uint32(x), uint32(y)):
				if got != sentinel {
					t.Fatalf("pixel (%d,%d) outside the leaf = %v", x, y, got)
				}
			case inBands(leaf, 1, x, y):
				if got != palette.Black {
					t.Fatalf("border pixel (%d,%d) = %v, want black", x, y, got)
				}
			default:
				if got != red {
					t.Fatalf("interior pixel (%d,%d) = %v, want red", x, y, got)
				}
			}
		}
	}
}

func TestPaintFillZeroBorder(t *testing.T) {
	img := filled(8, 8)
	blue := color.RGBA{B: 255, A: 255}
	PaintFill(img, Fill{Rect: partition.Rect{Width: 8, Height: 8}, Color: blue}, 0)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if img.RGBAAt(x, y) != blue {
				t.Fatalf("pixel (%d,%d) should be blue with no border", x, y)
			}
		}
	}
}

func TestComposeSingleLeaf(t *testing.T) {
	comp, err := Compose(context.Background(), Config{
		Width: 1000, Height: 1000, Levels: 0, Palette: palette.Default(), Seed: 5,
	})
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	if len(comp.Fills) != 1 || comp.Fills[0].Rect != partition.Canvas(1000, 1000) {
		t.Fatalf("fills = %v, want the whole canvas", comp.Fills)
	}
	if comp.Border != 1 {
		t.Fatalf("border = %d, want 1", comp.Border)
	}

	want := comp.Fills[0].Color
	for i := 0; i < 1000; i++ {
		for _, p := range []image.Point{{i, 0}, {i, 999}, {0, i}, {999, i}} {
			if got := comp.Image.RGBAAt(p.X, p.Y); got != palette.Black {
				t.Fatalf("perimeter pixel %v = %v, want black", p, got)
			}
		}
	}
	for _, p := range []image.Point{{1, 1}, {998, 998}, {500, 500}, {1, 998}} {
		if got := comp.Image.RGBAAt(p.X, p.Y); got != want {
			t.Fatalf("interior pixel %v = %v, want %v", p, got, want)
		}
	}
}

func TestComposeReferenceCanvas(t *testing.T) {
	comp, err := Compose(context.Background(), Config{
		Width: 4096, Height: 2160, Levels: 5, Palette: palette.Default(), Seed: 42,
	})
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	if b := comp.Image.Bounds(); b.Dx() != 4096 || b.Dy() != 2160 {
		t.Fatalf("image is %v", b)
	}
	if len(comp.Fills) != 32 {
		t.Fatalf("got %d fills, want 32", len(comp.Fills))
	}

	var area uint64
	for _, f := range comp.Fills {
		area += f.Rect.Area()
		for _, band := range Bands(f.Rect, comp.Border) {
			for y := band.Min.Y; y < band.Max.Y; y++ {
				for x := band.Min.X; x < band.Max.X; x++ {
					if got := comp.Image.RGBAAt(x, y); got != palette.Black {
						t.Fatalf("leaf %v: border pixel (%d,%d) = %v", f.Rect, x, y, got)
					}
				}
			}
		}
		in := Interior(f.Rect, comp.Border)
		for _, p := range []image.Point{in.Min, {in.Max.X - 1, in.Max.Y - 1}, {(in.Min.X + in.Max.X) / 2, (in.Min.Y + in.Max.Y) / 2}} {
			if got := comp.Image.RGBAAt(p.X, p.Y); got != f.Color {
				t.Fatalf("leaf %v: interior pixel %v = %v, want %v", f.Rect, p, got, f.Color)
			}
		}
	}
	if area != 4096*2160 {
		t.Fatalf("fills cover %d pixels, want %d", area, 4096*2160)
	}
}

func TestComposeNoStrayBlack(t *testing.T) {
	comp, err := Compose(context.Background(), Config{
		Width: 2000, Height: 1200, Levels: 4, Palette: palette.Default(), Seed: 9,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range comp.Fills {
		for y := int(f.Rect.Y); y < int(f.Rect.MaxY()); y++ {
			for x := int(f.Rect.X); x < int(f.Rect.MaxX()); x++ {
				got := comp.Image.RGBAAt(x, y)
				if inBands(f.Rect, comp.Border, x, y) {
					continue
				}
				if got != f.Color {
					t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, f.Color)
				}
			}
		}
	}
}

func TestComposeSeedReproducible(t *testing.T) {
	cfg := Config{Width: 640, Height: 480, Levels: 6, Palette: palette.Default(), Seed: 77}
	a, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("same seed produced different pixels")
	}
}

func TestComposeRandomSeedReported(t *testing.T) {
	comp, err := Compose(context.Background(), Config{Width: 10, Height: 10, Palette: palette.Default()})
	if err != nil {
		t.Fatal(err)
	}
	if comp.Seed == 0 {
		t.Fatal("a random seed should be reported")
	}
	again, err := Compose(context.Background(), Config{Width: 10, Height: 10, Palette: palette.Default(), Seed: comp.Seed})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(comp.Image.Pix, again.Image.Pix) {
		t.Fatal("reported seed does not reproduce the image")
	}
}

func TestComposeParallelMatchesSequential(t *testing.T) {
	base := Config{Width: 3000, Height: 1500, Levels: 8, Palette: palette.Default(), Seed: 2024}
	seq, err := Compose(context.Background(), base)
	if err != nil {
		t.Fatal(err)
	}
	par := base
	par.Workers = 4
	got, err := Compose(context.Background(), par)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(seq.Image.Pix, got.Image.Pix) {
		t.Fatal("parallel painting changed the output")
	}
}

func TestPaintParallelCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img := filled(10, 10)
	fills := []Fill{{Rect: partition.Rect{Width: 10, Height: 10}, Color: color.RGBA{R: 1, A: 255}}}
	if err := PaintParallel(ctx, img, fills, 0, 2); err != context.Canceled {
		t.Fatalf("PaintParallel error = %v, want context.Canceled", err)
	}
}

func TestComposeEmptyPalette(t *testing.T) {
	if _, err := Compose(context.Background(), Config{Width: 10, Height: 10}); err == nil {
		t.Fatal("Compose should reject an empty palette")
	}
}

func TestAssignMatchesPaint(t *testing.T) {
	tree := partition.Build(partition.Canvas(500, 500), 4, NewRNG(1))
	s := palette.Default().Sampler()

	assigned := Assign(tree.Leaves(), s, NewRNG(10))
	painted := Paint(image.NewRGBA(image.Rect(0, 0, 500, 500)), tree.Leaves(), s, NewRNG(10), 0)
	if len(assigned) != len(painted) {
		t.Fatalf("lengths differ: %d vs %d", len(assigned), len(painted))
	}
	for i := range assigned {
		if assigned[i] != painted[i] {
			t.Fatalf("fill %d differs: %v vs %v", i, assigned[i], painted[i])
		}
	}
}
