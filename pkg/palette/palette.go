// Package palette holds the colors a composition is painted with and the
// weights that decide how often each one is picked.
//
// Colors can be written as "#rrggbb", "rrggbb", "#rgb", or an SVG color
// name ("crimson", "navy"):
//
//	pal, err := palette.New(palette.MustParseList("#fff,red,#ffff00,blue"), []uint32{10, 2, 1, 1})
//	s := pal.Sampler()
//	c := s.Pick(rng)
package palette

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	apperr "github.com/matzehuels/mondrian/pkg/errors"
)

// Reference configuration.
var (
	DefaultColors  = []string{"#ffffff", "#ff0000", "#ffff00", "#0000ff"}
	DefaultWeights = []uint32{10, 2, 1, 1}
)

// Black is the border color.
var Black = color.RGBA{A: 0xff}

// Palette is an ordered list of colors paired positionally with weights.
// The zero value is not usable; construct one with [New].
type Palette struct {
	colors  []color.RGBA
	weights []uint32
}

// New pairs colors with weights. A nil or empty weights slice means every
// color is equally likely. It returns an error if colors is empty, the
// lengths differ, or all weights are zero.
func New(colors []color.RGBA, weights []uint32) (Palette, error) {
	if len(colors) == 0 {
		return Palette{}, apperr.New(apperr.ErrCodeInvalidColor, "palette needs at least one color")
	}
	if len(weights) == 0 {
		weights = make([]uint32, len(colors))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(colors) {
		return Palette{}, apperr.New(apperr.ErrCodeInvalidWeights,
			"got %d weights for %d colors", len(weights), len(colors))
	}
	var total uint64
	for _, w := range weights {
		total += uint64(w)
	}
	if total == 0 {
		return Palette{}, apperr.New(apperr.ErrCodeInvalidWeights, "weights must not all be zero")
	}
	return Palette{
		colors:  append([]color.RGBA(nil), colors...),
		weights: append([]uint32(nil), weights...),
	}, nil
}

// Default returns the reference palette: white, red, yellow and blue
// weighted 10:2:1:1.
func Default() Palette {
	colors := make([]color.RGBA, len(DefaultColors))
	for i, s := range DefaultColors {
		colors[i] = MustParseColor(s)
	}
	p, _ := New(colors, DefaultWeights)
	return p
}

// Parse builds a palette from color strings and optional weights.
func Parse(colors []string, weights []uint32) (Palette, error) {
	parsed := make([]color.RGBA, 0, len(colors))
	for _, s := range colors {
		c, err := ParseColor(s)
		if err != nil {
			return Palette{}, err
		}
		parsed = append(parsed, c)
	}
	return New(parsed, weights)
}

// Len returns the number of colors.
func (p Palette) Len() int { return len(p.colors) }

// Color returns the i-th color.
func (p Palette) Color(i int) color.RGBA { return p.colors[i] }

// Colors returns a copy of the colors.
func (p Palette) Colors() []color.RGBA { return append([]color.RGBA(nil), p.colors...) }

// Weights returns a copy of the weights.
func (p Palette) Weights() []uint32 { return append([]uint32(nil), p.weights...) }

// Hex returns every color formatted as "#rrggbb".
func (p Palette) Hex() []string {
	out := make([]string, len(p.colors))
	for i, c := range p.colors {
		out[i] = Hex(c)
	}
	return out
}

// Sampler returns a weighted sampler over p.
func (p Palette) Sampler() *Sampler { return NewSampler(p) }

// Hex formats c as "#rrggbb".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses "#rrggbb", "rrggbb", "#rgb", "rgb", or an SVG color name.
// Surrounding whitespace is ignored and the result is always opaque.
func ParseColor(s string) (color.RGBA, error) {
	str := strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[str]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(str, "#")
	switch len(hex) {
	case 3:
		v, err := strconv.ParseUint(hex, 16, 16)
		if err != nil {
			return color.RGBA{}, invalidColor(s, err)
		}
		r, g, b := uint8(v>>8&0xf), uint8(v>>4&0xf), uint8(v&0xf)
		return color.RGBA{R: r<<4 | r, G: g<<4 | g, B: b<<4 | b, A: 0xff}, nil
	case 6:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, invalidColor(s, err)
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	default:
		return color.RGBA{}, invalidColor(s, nil)
	}
}

func invalidColor(s string, cause error) error {
	if cause != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidColor, cause, "invalid color %q", s)
	}
	return apperr.New(apperr.ErrCodeInvalidColor, "invalid color %q: expected #rrggbb, #rgb or a color name", s)
}

// MustParseColor is like [ParseColor] but panics on error.
func MustParseColor(s string) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// SplitList splits a comma-separated list, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseList parses a comma-separated list of colors.
func ParseList(s string) ([]color.RGBA, error) {
	parts := SplitList(s)
	out := make([]color.RGBA, 0, len(parts))
	for _, part := range parts {
		c, err := ParseColor(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// MustParseList is like [ParseList] but panics on error.
func MustParseList(s string) []color.RGBA {
	out, err := ParseList(s)
	if err != nil {
		panic(err)
	}
	return out
}

// ParseWeights parses a comma-separated list of non-negative integers.
func ParseWeights(s string) ([]uint32, error) {
	parts := SplitList(s)
	out := make([]uint32, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidWeights, err, "invalid weight %q", part)
		}
		out = append(out, uint32(v))
	}
	return out, nil
}
