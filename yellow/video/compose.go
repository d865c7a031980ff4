package video

import "github.com/valerio/go-yellow/yellow/addr"

// Compose draws layers, bottom first, over base and returns the result as
// RGB bytes in dst. Glyph cells read their tile from mem at 0x8000+code*16
// and map it through the current BGP. base is not modified.
func Compose(base *FrameBuffer, layers []*Layer, mem Reader, palette Palette, dst []byte) []byte {
	if len(layers) == 0 {
		return base.RGB(palette, dst)
	}

	out := *base
	bgp := mem.Read(addr.BGP)
	for _, l := range layers {
		for cy := range LayerRows {
			for cx := range LayerCols {
				paintCell(&out, cx, cy, l.cells[cy][cx], mem, bgp)
			}
		}
	}
	return out.RGB(palette, dst)
}

func paintCell(fb *FrameBuffer, cx, cy int, c Cell, mem Reader, bgp uint8) {
	x0, y0 := cx*8, cy*8
	switch c.Kind {
	case CellTransparent:
		return
	case CellFill:
		for y := range 8 {
			for x := range 8 {
				fb.SetPixel(x0+x, y0+y, Shade(c.Value))
			}
		}
	case CellGlyph:
		tile := FetchTile(mem, addr.TileData0+uint16(c.Value)*tileBytes)
		for y := range 8 {
			for x := range 8 {
				fb.SetPixel(x0+x, y0+y, applyPalette(bgp, tile.Pixel(x, y)))
			}
		}
	}
}
