package video

import (
	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/bit"
)

// Mode is the PPU state reported in STAT bits 0-1.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeDraw
)

const (
	oamScanCycles = 80
	drawCycles    = 172
	hblankCycles  = 204
	lineCycles    = oamScanCycles + drawCycles + hblankCycles
	visibleLines  = 144
	totalLines    = 154
	// FrameCycles matches timing.CyclesPerFrame.
	FrameCycles = lineCycles * totalLines
)

// LCDC (LCD Control) Register bits
// Bit 7 - LCD Display Enable (0=Off, 1=On)
// Bit 6 - Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 5 - Window Display Enable (0=Off, 1=On)
// Bit 4 - BG & Window Tile Data Select (0=8800-97FF, 1=8000-8FFF)
// Bit 3 - BG Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
// Bit 2 - OBJ (Sprite) Size (0=8x8, 1=8x16)
// Bit 1 - OBJ (Sprite) Display Enable (0=Off, 1=On)
// Bit 0 - BG Display (0=Off, 1=On)
const (
	lcdcEnable        uint8 = 7
	lcdcWindowMap     uint8 = 6
	lcdcWindowEnable  uint8 = 5
	lcdcTileData      uint8 = 4
	lcdcBGMap         uint8 = 3
	lcdcSpritesEnable uint8 = 1
	lcdcBGEnable      uint8 = 0
)

// STAT interrupt sources
const (
	statCoincidence  uint8 = 2
	statHBlankSource uint8 = 3
	statVBlankSource uint8 = 4
	statOAMSource    uint8 = 5
	statLYCSource    uint8 = 6
	statWritableMask uint8 = 0x78
)

// Bus is what the GPU needs from memory: VRAM/OAM/register reads, the
// ability to set read-only registers, and interrupt requests.
type Bus interface {
	Reader
	SetIO(address uint16, value uint8)
	RequestInterrupt(interrupt addr.Interrupt)
}

// GPU renders scanlines into a framebuffer and drives LY, STAT and the
// VBlank/STAT interrupts.
type GPU struct {
	bus Bus
	oam *OAM
	fb  *FrameBuffer

	mode       Mode
	line       int
	cycles     int
	windowLine int
	lcdOn      bool
	offCycles  int
	statSignal bool
	frames     uint64

	// raw BG/window colour index per pixel of the current line, for sprite priority
	bgIndex [FramebufferWidth]int
}

func NewGPU(bus Bus) *GPU {
	return &GPU{
		bus:  bus,
		oam:  NewOAM(bus),
		fb:   NewFrameBuffer(),
		mode: ModeOAMScan,
	}
}

func (g *GPU) FrameBuffer() *FrameBuffer { return g.fb }
func (g *GPU) Mode() Mode                { return g.mode }
func (g *GPU) Line() int                 { return g.line }

// Frames counts completed frames, including blank frames while the LCD is off.
func (g *GPU) Frames() uint64 { return g.frames }

// Tick advances the PPU by cycles and reports whether a frame was completed.
func (g *GPU) Tick(cycles int) bool {
	if !bit.IsSet(lcdcEnable, g.bus.Read(addr.LCDC)) {
		return g.tickOff(cycles)
	}
	if !g.lcdOn {
		g.lcdOn = true
		g.line, g.cycles, g.windowLine = 0, 0, 0
		g.mode = ModeOAMScan
		g.writeLY()
	}

	frame := false
	g.cycles += cycles
	for {
		switch g.mode {
		case ModeOAMScan:
			if g.cycles < oamScanCycles {
				return frame
			}
			g.cycles -= oamScanCycles
			g.setMode(ModeDraw)
		case ModeDraw:
			if g.cycles < drawCycles {
				return frame
			}
			g.cycles -= drawCycles
			g.renderScanline()
			g.setMode(ModeHBlank)
		case ModeHBlank:
			if g.cycles < hblankCycles {
				return frame
			}
			g.cycles -= hblankCycles
			g.line++
			if g.line == visibleLines {
				g.mode = ModeVBlank
				g.bus.RequestInterrupt(addr.VBlankInterrupt)
				g.frames++
				frame = true
			} else {
				g.mode = ModeOAMScan
			}
			g.writeLY()
		case ModeVBlank:
			if g.cycles < lineCycles {
				return frame
			}
			g.cycles -= lineCycles
			g.line++
			if g.line == totalLines {
				g.line, g.windowLine = 0, 0
				g.mode = ModeOAMScan
			}
			g.writeLY()
		}
	}
}

// tickOff keeps LY at 0 and still produces a blank frame per frame period,
// so consumers keep receiving frames while the game has the LCD disabled.
func (g *GPU) tickOff(cycles int) bool {
	if g.lcdOn {
		g.lcdOn = false
		g.line, g.cycles, g.offCycles = 0, 0, 0
		g.mode = ModeHBlank
		g.writeLY()
		g.fb.Clear()
	}
	g.offCycles += cycles
	if g.offCycles < FrameCycles {
		return false
	}
	g.offCycles -= FrameCycles
	g.fb.Clear()
	g.frames++
	return true
}

func (g *GPU) setMode(m Mode) {
	g.mode = m
	g.updateStat()
}

func (g *GPU) writeLY() {
	g.bus.SetIO(addr.LY, uint8(g.line))
	g.updateStat()
}

// updateStat publishes mode and coincidence and raises LCDSTAT on a rising
// edge of the combined interrupt line.
func (g *GPU) updateStat() {
	stat := g.bus.Read(addr.STAT) & statWritableMask
	coincidence := uint8(g.line) == g.bus.Read(addr.LYC)
	if coincidence {
		stat = bit.Set(statCoincidence, stat)
	}
	if g.lcdOn {
		stat |= uint8(g.mode)
	}
	g.bus.SetIO(addr.STAT, stat)

	if !g.lcdOn {
		g.statSignal = false
		return
	}
	signal := (g.mode == ModeHBlank && bit.IsSet(statHBlankSource, stat)) ||
		(g.mode == ModeVBlank && bit.IsSet(statVBlankSource, stat)) ||
		(g.mode == ModeOAMScan && bit.IsSet(statOAMSource, stat)) ||
		(coincidence && bit.IsSet(statLYCSource, stat))
	if signal && !g.statSignal {
		g.bus.RequestInterrupt(addr.LCDSTATInterrupt)
	}
	g.statSignal = signal
}

// tileDataAddress resolves a tile number using the LCDC addressing mode:
// unsigned from 0x8000, or signed around 0x9000.
func tileDataAddress(lcdc, tile uint8) uint16 {
	if bit.IsSet(lcdcTileData, lcdc) {
		return addr.TileData0 + uint16(tile)*tileBytes
	}
	return uint16(int(addr.TileData2) + int(int8(tile))*tileBytes)
}

func (g *GPU) renderScanline() {
	lcdc := g.bus.Read(addr.LCDC)

	if bit.IsSet(lcdcBGEnable, lcdc) {
		g.renderBackground(lcdc)
		if bit.IsSet(lcdcWindowEnable, lcdc) {
			g.renderWindow(lcdc)
		}
	} else {
		for x := range FramebufferWidth {
			g.bgIndex[x] = 0
			g.fb.SetPixel(x, g.line, ShadeWhite)
		}
	}

	if bit.IsSet(lcdcSpritesEnable, lcdc) {
		g.renderSprites()
	}
}

func (g *GPU) renderBackground(lcdc uint8) {
	bgp := g.bus.Read(addr.BGP)
	scx := int(g.bus.Read(addr.SCX))
	y := (int(g.bus.Read(addr.SCY)) + g.line) & 0xFF

	mapBase := addr.TileMap0
	if bit.IsSet(lcdcBGMap, lcdc) {
		mapBase = addr.TileMap1
	}

	for x := range FramebufferWidth {
		bx := (scx + x) & 0xFF
		tile := g.bus.Read(mapBase + uint16((y/8)*32+bx/8))
		row := fetchRow(g.bus, tileDataAddress(lcdc, tile), y%8)
		c := row.Pixel(bx % 8)
		g.bgIndex[x] = c
		g.fb.SetPixel(x, g.line, applyPalette(bgp, c))
	}
}

// renderWindow draws the window over the background. The window keeps its
// own line counter, which only advances on lines where it was visible.
func (g *GPU) renderWindow(lcdc uint8) {
	wy := int(g.bus.Read(addr.WY))
	wx := int(g.bus.Read(addr.WX)) - 7
	if g.line < wy || wx >= FramebufferWidth {
		return
	}

	bgp := g.bus.Read(addr.BGP)
	mapBase := addr.TileMap0
	if bit.IsSet(lcdcWindowMap, lcdc) {
		mapBase = addr.TileMap1
	}

	y := g.windowLine
	for x := max(wx, 0); x < FramebufferWidth; x++ {
		px := x - wx
		tile := g.bus.Read(mapBase + uint16((y/8)*32+px/8))
		row := fetchRow(g.bus, tileDataAddress(lcdc, tile), y%8)
		c := row.Pixel(px % 8)
		g.bgIndex[x] = c
		g.fb.SetPixel(x, g.line, applyPalette(bgp, c))
	}
	g.windowLine++
}

func (g *GPU) renderSprites() {
	obp0 := g.bus.Read(addr.OBP0)
	obp1 := g.bus.Read(addr.OBP1)

	for _, s := range g.oam.SpritesForScanline(g.line) {
		if s.PixelMask == 0 {
			continue
		}

		palette := obp0
		if s.PaletteOBP1 {
			palette = obp1
		}

		for px := range 8 {
			x := s.X + px
			if x < 0 || x >= FramebufferWidth || !s.OwnsPixel(px) {
				continue
			}
			c := s.Color(px)
			if s.BehindBG && g.bgIndex[x] != 0 {
				continue
			}
			g.fb.SetPixel(x, g.line, applyPalette(palette, c))
		}
	}
}
