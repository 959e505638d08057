package sink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/mondrian/pkg/compose"
	"github.com/matzehuels/mondrian/pkg/palette"
)

// Layout is the JSON form of a composition.
type Layout struct {
	Width   uint32         `json:"width" bson:"width"`
	Height  uint32         `json:"height" bson:"height"`
	Levels  int            `json:"levels" bson:"levels"`
	Seed    uint64         `json:"seed,string" bson:"seed"`
	Border  uint32         `json:"border" bson:"border"`
	Palette []PaletteEntry `json:"palette" bson:"palette"`
	Leaves  []Leaf         `json:"leaves" bson:"leaves"`
}

// PaletteEntry is one palette color with its sampling weight.
type PaletteEntry struct {
	Color  string `json:"color" bson:"color"`
	Weight uint32 `json:"weight" bson:"weight"`
}

// Leaf is a painted rectangle.
type Leaf struct {
	X      uint32 `json:"x" bson:"x"`
	Y      uint32 `json:"y" bson:"y"`
	Width  uint32 `json:"width" bson:"width"`
	Height uint32 `json:"height" bson:"height"`
	Index  int    `json:"index" bson:"index"`
	Color  string `json:"color" bson:"color"`
}

// NewLayout converts a composition to its exported form.
func NewLayout(comp *compose.Composition) Layout {
	l := Layout{
		Width:  comp.Width(),
		Height: comp.Height(),
		Seed:   comp.Seed,
		Border: comp.Border,
		Leaves: make([]Leaf, len(comp.Fills)),
	}
	if comp.Tree != nil {
		l.Levels = comp.Tree.MaxDepth()
	}
	weights := comp.Palette.Weights()
	for i, hex := range comp.Palette.Hex() {
		l.Palette = append(l.Palette, PaletteEntry{Color: hex, Weight: weights[i]})
	}
	for i, f := range comp.Fills {
		l.Leaves[i] = Leaf{
			X: f.Rect.X, Y: f.Rect.Y, Width: f.Rect.Width, Height: f.Rect.Height,
			Index: f.Index,
			Color: palette.Hex(f.Color),
		}
	}
	return l
}

// WriteJSON encodes the layout of comp to w.
func WriteJSON(comp *compose.Composition, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewLayout(comp)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// RenderJSON returns the layout of comp as indented JSON.
func RenderJSON(comp *compose.Composition) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(comp, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadJSON decodes a layout written by [WriteJSON].
func ReadJSON(r io.Reader) (Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	return l, nil
}
