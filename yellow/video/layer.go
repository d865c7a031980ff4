package video

import (
	"errors"
	"fmt"
	"slices"

	"github.com/valerio/go-yellow/yellow/text"
)

const (
	// LayerCols and LayerRows size the overlay grid: one cell per 8x8 block.
	LayerCols = FramebufferWidth / 8
	LayerRows = FramebufferHeight / 8
)

// Box drawing tiles in the game's tileset.
const (
	BorderTopLeft     uint8 = 0x79
	BorderHorizontal  uint8 = 0x7A
	BorderTopRight    uint8 = 0x7B
	BorderVertical    uint8 = 0x7C
	BorderBottomLeft  uint8 = 0x7D
	BorderBottomRight uint8 = 0x7E
)

var (
	ErrNotTopLayer  = errors.New("layer is not on top of the stack")
	ErrUnknownLayer = errors.New("unknown layer")
)

// CellKind tags the content of a Cell.
type CellKind uint8

const (
	CellTransparent CellKind = iota
	CellGlyph
	CellFill
)

// Cell is one 8x8 block of a layer. The zero value is transparent.
type Cell struct {
	Kind  CellKind
	Value uint8
}

// Transparent lets lower layers show through.
var Transparent = Cell{}

// Glyph draws tile code from 0x8000 through BGP. Glyph cells are opaque.
func Glyph(code uint8) Cell { return Cell{Kind: CellGlyph, Value: code} }

// Fill paints the block with a single shade.
func Fill(s Shade) Cell { return Cell{Kind: CellFill, Value: uint8(s & 0x03)} }

func (c Cell) String() string {
	switch c.Kind {
	case CellGlyph:
		return fmt.Sprintf("glyph(0x%02X)", c.Value)
	case CellFill:
		return fmt.Sprintf("fill(%d)", c.Value)
	}
	return "transparent"
}

// Layer is a grid of cells drawn over the emulated screen. Writes outside
// the grid are ignored.
type Layer struct {
	cells [LayerRows][LayerCols]Cell
}

func inGrid(x, y int) bool {
	return x >= 0 && x < LayerCols && y >= 0 && y < LayerRows
}

// Cell returns the cell at (x, y), or Transparent outside the grid.
func (l *Layer) Cell(x, y int) Cell {
	if !inGrid(x, y) {
		return Transparent
	}
	return l.cells[y][x]
}

func (l *Layer) Set(x, y int, c Cell) {
	if inGrid(x, y) {
		l.cells[y][x] = c
	}
}

// SetBackground places a single tile.
func (l *Layer) SetBackground(x, y int, code uint8) {
	l.Set(x, y, Glyph(code))
}

// PlaceString writes s left to right starting at (x, y), encoded with the
// game's charmap. It does not wrap.
func (l *Layer) PlaceString(x, y int, s string) {
	for i, code := range text.Encode(s) {
		l.SetBackground(x+i, y, code)
	}
}

// TextBoxBorder draws a box whose interior is w by h cells with its top
// left corner at (x, y). The interior is filled with blank tiles, so the box
// occupies (w+2) by (h+2) cells.
func (l *Layer) TextBoxBorder(x, y, w, h int) {
	right, bottom := x+w+1, y+h+1

	l.SetBackground(x, y, BorderTopLeft)
	l.SetBackground(right, y, BorderTopRight)
	l.SetBackground(x, bottom, BorderBottomLeft)
	l.SetBackground(right, bottom, BorderBottomRight)
	for i := x + 1; i < right; i++ {
		l.SetBackground(i, y, BorderHorizontal)
		l.SetBackground(i, bottom, BorderHorizontal)
	}
	for j := y + 1; j < bottom; j++ {
		l.SetBackground(x, j, BorderVertical)
		l.SetBackground(right, j, BorderVertical)
		for i := x + 1; i < right; i++ {
			l.SetBackground(i, j, text.Space)
		}
	}
}

// Clear makes every cell transparent.
func (l *Layer) Clear() {
	l.cells = [LayerRows][LayerCols]Cell{}
}

// LayerHandle identifies a pushed layer. Handles are never reused.
type LayerHandle uint32

// LayerStack is the ordered set of overlays, bottom first.
type LayerStack struct {
	entries []stackEntry
	next    LayerHandle
}

type stackEntry struct {
	handle LayerHandle
	layer  *Layer
}

// Push adds a transparent layer on top and returns its handle.
func (s *LayerStack) Push() LayerHandle {
	s.next++
	s.entries = append(s.entries, stackEntry{handle: s.next, layer: &Layer{}})
	return s.next
}

// Layer returns the layer for h, or nil if h is not on the stack.
func (s *LayerStack) Layer(h LayerHandle) *Layer {
	for _, e := range s.entries {
		if e.handle == h {
			return e.layer
		}
	}
	return nil
}

// Pop removes h, which must be the top layer.
func (s *LayerStack) Pop(h LayerHandle) error {
	i := slices.IndexFunc(s.entries, func(e stackEntry) bool { return e.handle == h })
	switch {
	case i < 0:
		return fmt.Errorf("%w: %d", ErrUnknownLayer, h)
	case i != len(s.entries)-1:
		return fmt.Errorf("%w: %d is at depth %d of %d", ErrNotTopLayer, h, i+1, len(s.entries))
	}
	s.entries[i] = stackEntry{}
	s.entries = s.entries[:i]
	return nil
}

func (s *LayerStack) Len() int { return len(s.entries) }

// Layers returns the layers bottom first.
func (s *LayerStack) Layers() []*Layer {
	out := make([]*Layer, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.layer
	}
	return out
}
