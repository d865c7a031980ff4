package video

import (
	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/bit"
)

const (
	oamEntries       = 40
	spritesPerLine   = 10
	spriteYOffset    = 16
	spriteXOffset    = 8
	lcdcSpriteHeight = 2
)

// Sprite is one decoded OAM entry. X and Y are screen coordinates and may be
// negative for sprites partially off the top or left edge.
type Sprite struct {
	Y         int
	X         int
	TileIndex uint8
	Flags     uint8
	OAMIndex  int
	Height    int

	PaletteOBP1 bool
	FlipX       bool
	FlipY       bool
	BehindBG    bool

	// Row is the tile row this sprite shows on the scanline it was selected for.
	Row TileRow

	// PixelMask has bit 7 set when this sprite owns its leftmost pixel after
	// sprite to sprite priority resolution. Transparent pixels are never owned,
	// so a lower priority sprite shows through them.
	PixelMask uint8
}

func decodeSprite(raw [4]uint8, index, height int) Sprite {
	return Sprite{
		Y:           int(raw[0]) - spriteYOffset,
		X:           int(raw[1]) - spriteXOffset,
		TileIndex:   raw[2],
		Flags:       raw[3],
		OAMIndex:    index,
		Height:      height,
		PaletteOBP1: bit.IsSet(4, raw[3]),
		FlipX:       bit.IsSet(5, raw[3]),
		FlipY:       bit.IsSet(6, raw[3]),
		BehindBG:    bit.IsSet(7, raw[3]),
	}
}

// OwnsPixel reports whether the sprite won priority for pixel x (0-7) of its row.
func (s *Sprite) OwnsPixel(x int) bool {
	if x < 0 || x > 7 {
		return false
	}
	return s.PixelMask&(1<<(7-x)) != 0
}

// Color returns the colour index of pixel x (0-7) of Row, honouring FlipX.
func (s *Sprite) Color(x int) int {
	if s.FlipX {
		return s.Row.PixelFlipped(x)
	}
	return s.Row.Pixel(x)
}

// loadRow fetches the tile row shown on scanline.
func (s *Sprite) loadRow(mem Reader, scanline int) {
	row := scanline - s.Y
	if s.FlipY {
		row = s.Height - 1 - row
	}
	tile := s.TileIndex
	if s.Height == 16 {
		tile &= 0xFE
	}
	s.Row = fetchRow(mem, addr.TileData0+uint16(tile)*tileBytes, row)
}

// OAM scans object attribute memory for the renderer.
type OAM struct {
	mem      Reader
	priority SpritePriorityBuffer
	line     [spritesPerLine]Sprite
}

func NewOAM(mem Reader) *OAM {
	return &OAM{mem: mem}
}

func (o *OAM) spriteHeight() int {
	if bit.IsSet(lcdcSpriteHeight, o.mem.Read(addr.LCDC)) {
		return 16
	}
	return 8
}

func (o *OAM) read(index, height int) Sprite {
	base := addr.OAMStart + uint16(index*4)
	var raw [4]uint8
	for i := range raw {
		raw[i] = o.mem.Read(base + uint16(i))
	}
	return decodeSprite(raw, index, height)
}

// Sprite returns entry index (0-39).
func (o *OAM) Sprite(index int) (Sprite, bool) {
	if index < 0 || index >= oamEntries {
		return Sprite{}, false
	}
	return o.read(index, o.spriteHeight()), true
}

// SpritesForScanline returns up to 10 sprites overlapping scanline, in OAM
// order, with pixel ownership already resolved. The returned slice is reused
// by the next call.
func (o *OAM) SpritesForScanline(scanline int) []Sprite {
	sprites := o.line[:0]
	o.priority.Clear()
	height := o.spriteHeight()

	for i := range oamEntries {
		y := int(o.mem.Read(addr.OAMStart+uint16(i*4))) - spriteYOffset
		if scanline < y || scanline >= y+height {
			continue
		}

		s := o.read(i, height)
		s.loadRow(o.mem, scanline)
		for px := range 8 {
			if s.Color(px) != 0 {
				o.priority.TryClaimPixel(s.X+px, s.OAMIndex, s.X)
			}
		}
		sprites = append(sprites, s)

		if len(sprites) == spritesPerLine {
			break
		}
	}

	for i := range sprites {
		var mask uint8
		for px := range 8 {
			if o.priority.Owner(sprites[i].X+px) == sprites[i].OAMIndex {
				mask |= 1 << (7 - px)
			}
		}
		sprites[i].PixelMask = mask
	}
	return sprites
}
