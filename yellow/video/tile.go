package video

import "github.com/valerio/go-yellow/yellow/bit"

const tileBytes = 16

// TileRow is one 8 pixel row of a tile in 2bpp planar form.
//
// The low byte holds bit 0 of each pixel's colour index and the high byte
// holds bit 1. Bit 7 is the leftmost pixel:
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	Colors:      0 2 3 3 3 3 2 0
//
// Reference: https://gbdev.io/pandocs/Tile_Data.html
type TileRow struct {
	Low  byte
	High byte
}

// Pixel returns the colour index (0-3) of pixel x, 0 being the leftmost.
func (r TileRow) Pixel(x int) int {
	return r.pixelAt(uint8(7 - x))
}

// PixelFlipped is Pixel with the row mirrored horizontally.
func (r TileRow) PixelFlipped(x int) int {
	return r.pixelAt(uint8(x))
}

func (r TileRow) pixelAt(b uint8) int {
	pixel := 0
	if bit.IsSet(b, r.Low) {
		pixel |= 1
	}
	if bit.IsSet(b, r.High) {
		pixel |= 2
	}
	return pixel
}

// Tile is a complete 8x8 pattern, 16 bytes in VRAM.
type Tile struct {
	Rows [8]TileRow
}

// Pixel returns the colour index at (x, y). Out of range coordinates read 0.
func (t *Tile) Pixel(x, y int) int {
	if y < 0 || y >= 8 || x < 0 || x >= 8 {
		return 0
	}
	return t.Rows[y].Pixel(x)
}

// Reader is the read side of the bus.
type Reader interface {
	Read(address uint16) uint8
}

// FetchTile reads the 16 byte tile starting at base.
func FetchTile(mem Reader, base uint16) Tile {
	var t Tile
	for row := range 8 {
		a := base + uint16(row*2)
		t.Rows[row] = TileRow{Low: mem.Read(a), High: mem.Read(a + 1)}
	}
	return t
}

// fetchRow reads a single row, used by the scanline renderer to avoid
// fetching whole tiles.
func fetchRow(mem Reader, base uint16, row int) TileRow {
	a := base + uint16(row*2)
	return TileRow{Low: mem.Read(a), High: mem.Read(a + 1)}
}
