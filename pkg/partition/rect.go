package partition

import (
	"fmt"
	"image"
)

// Rect is an axis-aligned region in canvas coordinates with a top-left origin.
type Rect struct {
	X      uint32 `json:"x" bson:"x"`
	Y      uint32 `json:"y" bson:"y"`
	Width  uint32 `json:"width" bson:"width"`
	Height uint32 `json:"height" bson:"height"`
}

// Canvas returns the rectangle covering a whole width × height canvas.
func Canvas(width, height uint32) Rect {
	return Rect{Width: width, Height: height}
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool { return r.Width == 0 || r.Height == 0 }

// Area returns the pixel count of r.
func (r Rect) Area() uint64 { return uint64(r.Width) * uint64(r.Height) }

// MaxX returns the exclusive right edge.
func (r Rect) MaxX() uint32 { return r.X + r.Width }

// MaxY returns the exclusive bottom edge.
func (r Rect) MaxY() uint32 { return r.Y + r.Height }

// Contains reports whether the pixel (x, y) lies inside r.
func (r Rect) Contains(x, y uint32) bool {
	return x >= r.X && x < r.MaxX() && y >= r.Y && y < r.MaxY()
}

// Intersect returns the overlapping region of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.MaxX(), o.MaxX()), min(r.MaxY(), o.MaxY())
	if x0 >= x1 || y0 >= y1 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Overlaps reports whether r and o share at least one pixel.
func (r Rect) Overlaps(o Rect) bool { return !r.Intersect(o).Empty() }

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.MaxX()), int(r.MaxY()))
}

// Extent returns the size of r along the cut direction of axis.
func (r Rect) Extent(axis Axis) uint32 {
	if axis == Horizontal {
		return r.Width
	}
	return r.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}
