package sink

import (
	"path/filepath"
	"strings"

	apperr "github.com/matzehuels/mondrian/pkg/errors"
)

// Format names an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatPNG, FormatJPEG, FormatBMP, FormatTIFF, FormatSVG, FormatJSON}

var aliases = map[string]Format{
	"png":  FormatPNG,
	"jpg":  FormatJPEG,
	"jpeg": FormatJPEG,
	"bmp":  FormatBMP,
	"tif":  FormatTIFF,
	"tiff": FormatTIFF,
	"svg":  FormatSVG,
	"json": FormatJSON,
}

// ParseFormat resolves a format name. Common aliases such as "jpg" and
// "tif" are accepted.
func ParseFormat(s string) (Format, error) {
	if f, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", apperr.New(apperr.ErrCodeInvalidFormat, "unknown format %q (must be one of: %s)", s, formatList())
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", apperr.New(apperr.ErrCodeInvalidFormat, "cannot infer format from %q: no extension", path)
	}
	return ParseFormat(ext)
}

// Raster reports whether f encodes pixels rather than the layout.
func (f Format) Raster() bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatBMP, FormatTIFF:
		return true
	}
	return false
}

// Extension returns the canonical file extension including the dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
