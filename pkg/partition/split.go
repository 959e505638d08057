package partition

import (
	"math"
	"math/rand/v2"
)

// Axis is the direction along which a rectangle is cut.
type Axis uint8

const (
	// Horizontal places the children side by side (the cut line is vertical).
	Horizontal Axis = iota
	// Vertical stacks the children (the cut line is horizontal).
	Vertical
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Other returns the perpendicular axis.
func (a Axis) Other() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

const (
	// MinSplitExtent is the smallest extent that can be cut with a ratio in
	// [0.4, 0.6] without producing an empty child.
	MinSplitExtent = 3

	// DefaultRatioMin and DefaultRatioMax bound the cut ratio.
	DefaultRatioMin = 0.4
	DefaultRatioMax = 0.6

	// aspectLimit forces the axis once one side is more than this many times
	// the other (integer division).
	aspectLimit = 2
)

// Option configures [Build] and [Split].
type Option func(*options)

type options struct {
	ratioMin  float64
	ratioMax  float64
	minExtent uint32
}

func defaultOptions() options {
	return options{
		ratioMin:  DefaultRatioMin,
		ratioMax:  DefaultRatioMax,
		minExtent: MinSplitExtent,
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRatioRange sets the interval the cut ratio is drawn from. Values are
// clamped to (0, 1) and swapped if given in the wrong order.
func WithRatioRange(lo, hi float64) Option {
	return func(o *options) {
		if lo > hi {
			lo, hi = hi, lo
		}
		o.ratioMin = min(max(lo, 0.01), 0.99)
		o.ratioMax = min(max(hi, 0.01), 0.99)
	}
}

// WithMinExtent sets the smallest extent that is still cut. Values below 2
// are raised to 2, the smallest extent with two non-empty halves.
func WithMinExtent(n uint32) Option {
	return func(o *options) { o.minExtent = max(n, 2) }
}

// ChooseAxis picks the cut axis for r. Strongly elongated rectangles are
// always cut across their long side; everything else is a coin flip.
func ChooseAxis(r Rect, rng *rand.Rand) Axis {
	switch {
	case r.Height > 0 && r.Width/r.Height > aspectLimit:
		return Horizontal
	case r.Width > 0 && r.Height/r.Width > aspectLimit:
		return Vertical
	case rng.IntN(2) == 0:
		return Horizontal
	default:
		return Vertical
	}
}

// SplitAt cuts r along axis at floor(extent*ratio). The two results tile r
// exactly. The cut is clamped to [1, extent-1] so that neither child is
// empty whenever extent >= 2; for smaller extents the second child is empty.
func SplitAt(r Rect, axis Axis, ratio float64) (Rect, Rect) {
	extent := r.Extent(axis)
	cut := uint32(math.Floor(float64(extent) * ratio))
	if extent >= 2 {
		cut = min(max(cut, 1), extent-1)
	} else {
		cut = extent
	}

	if axis == Horizontal {
		return Rect{X: r.X, Y: r.Y, Width: cut, Height: r.Height},
			Rect{X: r.X + cut, Y: r.Y, Width: r.Width - cut, Height: r.Height}
	}
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: cut},
		Rect{X: r.X, Y: r.Y + cut, Width: r.Width, Height: r.Height - cut}
}

// Split cuts r once using the axis and ratio policy. It reports false when r
// is too small to cut along either axis, in which case r should stay a leaf.
func Split(r Rect, rng *rand.Rand, opts ...Option) (Rect, Rect, bool) {
	o := newOptions(opts)
	return o.split(r, rng)
}

func (o options) split(r Rect, rng *rand.Rand) (Rect, Rect, bool) {
	axis := ChooseAxis(r, rng)
	if r.Extent(axis) < o.minExtent {
		axis = axis.Other()
		if r.Extent(axis) < o.minExtent {
			return r, Rect{}, false
		}
	}
	ratio := o.ratioMin + rng.Float64()*(o.ratioMax-o.ratioMin)
	a, b := SplitAt(r, axis, ratio)
	return a, b, true
}
