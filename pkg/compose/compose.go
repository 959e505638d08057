// Package compose turns a configuration into a finished Mondrian-style
// raster.
//
// [Compose] builds a [partition.Tree] over the canvas, samples a palette
// color for every leaf, and paints interiors and black borders into a new
// *image.RGBA. A single seeded generator drives both the partition and the
// color choices, so the same [Config] always yields the same image.
//
//	comp, err := compose.Compose(ctx, compose.Config{
//	    Width: 4096, Height: 2160, Levels: 5,
//	    Palette: palette.Default(),
//	    Seed: 42,
//	})
//	png.Encode(w, comp.Image)
package compose

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/matzehuels/mondrian/pkg/palette"
	"github.com/matzehuels/mondrian/pkg/partition"
)

// Config is the validated input of a single generation run.
type Config struct {
	Width   uint32
	Height  uint32
	Levels  int
	Palette palette.Palette
	// Seed selects the random sequence. Zero picks a fresh random seed,
	// which is reported back in [Composition.Seed].
	Seed uint64
	// Workers > 1 paints leaves concurrently after colors are assigned.
	Workers int
	// SplitOptions tune the partition; nil keeps the defaults.
	SplitOptions []partition.Option
}

// Composition is the result of a run.
type Composition struct {
	Image   *image.RGBA
	Tree    *partition.Tree
	Fills   []Fill
	Border  uint32
	Seed    uint64
	Palette palette.Palette
}

// Width returns the canvas width.
func (c *Composition) Width() uint32 { return uint32(c.Image.Bounds().Dx()) }

// Height returns the canvas height.
func (c *Composition) Height() uint32 { return uint32(c.Image.Bounds().Dy()) }

// NewRNG returns the generator used for a seed.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// RandomSeed returns a non-zero seed from the global source.
func RandomSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

// Compose builds the partition tree and paints it.
func Compose(ctx context.Context, cfg Config) (*Composition, error) {
	if cfg.Palette.Len() == 0 {
		return nil, fmt.Errorf("compose: empty palette")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = RandomSeed()
	}
	rng := NewRNG(seed)

	root := partition.Canvas(cfg.Width, cfg.Height)
	tree := partition.Build(root, cfg.Levels, rng, cfg.SplitOptions...)

	img := image.NewRGBA(root.Image())
	border := BorderWidth(cfg.Width, cfg.Height)
	sampler := cfg.Palette.Sampler()

	var fills []Fill
	if cfg.Workers > 1 {
		fills = Assign(tree.Leaves(), sampler, rng)
		if err := PaintParallel(ctx, img, fills, border, cfg.Workers); err != nil {
			return nil, err
		}
	} else {
		fills = Paint(img, tree.Leaves(), sampler, rng, border)
	}

	return &Composition{
		Image:   img,
		Tree:    tree,
		Fills:   fills,
		Border:  border,
		Seed:    seed,
		Palette: cfg.Palette,
	}, nil
}

// Generate is [Compose] without a context, returning only the pixels.
func Generate(cfg Config) (*image.RGBA, error) {
	comp, err := Compose(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return comp.Image, nil
}
