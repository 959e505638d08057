package sink

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/tiff"

	"github.com/matzehuels/mondrian/pkg/compose"
	apperr "github.com/matzehuels/mondrian/pkg/errors"
)

// DefaultJPEGQuality is used when no quality option is given.
const DefaultJPEGQuality = 95

// Option tunes encoding.
type Option func(*options)

type options struct {
	quality int
	scale   float64
}

// WithQuality sets the JPEG quality (1-100). Other formats ignore it.
func WithQuality(q int) Option {
	return func(o *options) { o.quality = min(max(q, 1), 100) }
}

// WithScale resizes the output by f in (0, 1]. Raster output is resampled
// with nearest-neighbour; SVG output keeps full-resolution coordinates and
// only scales its display size. JSON ignores it.
func WithScale(f float64) Option {
	return func(o *options) {
		if f > 0 && f <= 1 {
			o.scale = f
		}
	}
}

func newOptions(opts []Option) options {
	o := options{quality: DefaultJPEGQuality, scale: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Render encodes comp in the given format.
func Render(comp *compose.Composition, f Format, opts ...Option) ([]byte, error) {
	switch {
	case f.Raster():
		var buf bytes.Buffer
		if err := Encode(&buf, comp.Image, f, opts...); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case f == FormatSVG:
		return RenderSVG(comp, opts...), nil
	case f == FormatJSON:
		return RenderJSON(comp)
	}
	return nil, apperr.New(apperr.ErrCodeInvalidFormat, "unknown format %q", f)
}

// Encode writes img to w in a raster format.
func Encode(w io.Writer, img image.Image, f Format, opts ...Option) error {
	o := newOptions(opts)
	img = Scale(img, o.scale)

	var err error
	switch f {
	case FormatPNG:
		err = imgio.PNGEncoder()(w, img)
	case FormatJPEG:
		err = imgio.JPEGEncoder(o.quality)(w, img)
	case FormatBMP:
		err = imgio.BMPEncoder()(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return apperr.New(apperr.ErrCodeInvalidFormat, "%q is not a raster format", f)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// Scale returns img resized by f with nearest-neighbour sampling. A factor
// of 1 (or outside (0, 1)) returns img unchanged. Each side keeps at least
// one pixel.
func Scale(img image.Image, f float64) image.Image {
	if f <= 0 || f >= 1 {
		return img
	}
	b := img.Bounds()
	w := max(int(float64(b.Dx())*f), 1)
	h := max(int(float64(b.Dy())*f), 1)
	return transform.Resize(img, w, h, transform.NearestNeighbor)
}
