package palette

import (
	"image/color"
	"math/rand/v2"
	"sort"
)

// Sampler draws palette indices with probability proportional to their
// weights. Draws are independent and with replacement.
type Sampler struct {
	pal        Palette
	cumulative []uint64
	total      uint64
}

// NewSampler precomputes the cumulative weights of p.
func NewSampler(p Palette) *Sampler {
	s := &Sampler{pal: p, cumulative: make([]uint64, len(p.weights))}
	for i, w := range p.weights {
		s.total += uint64(w)
		s.cumulative[i] = s.total
	}
	return s
}

// Sample returns a palette index.
func (s *Sampler) Sample(rng *rand.Rand) int {
	r := rng.Uint64N(s.total)
	// First index whose cumulative weight exceeds r; zero-weight entries are
	// never selected because they share a boundary with their predecessor.
	return sort.Search(len(s.cumulative), func(i int) bool { return s.cumulative[i] > r })
}

// Pick returns a sampled color.
func (s *Sampler) Pick(rng *rand.Rand) color.RGBA {
	return s.pal.colors[s.Sample(rng)]
}

// Palette returns the palette being sampled.
func (s *Sampler) Palette() Palette { return s.pal }
