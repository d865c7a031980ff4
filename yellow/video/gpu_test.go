package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/memory"
)

func newTestGPU(lcdc uint8) (*GPU, *memory.MMU) {
	mmu := memory.New()
	mmu.Write(addr.LCDC, lcdc)
	mmu.Write(addr.BGP, 0xE4)
	mmu.Write(addr.OBP0, 0xE4)
	mmu.Write(addr.IF, 0x00)
	return NewGPU(mmu), mmu
}

func tickFor(g *GPU, cycles int) (frames int) {
	for ; cycles > 0; cycles -= 4 {
		if g.Tick(4) {
			frames++
		}
	}
	return frames
}

func writeTile(mmu *memory.MMU, base uint16, rows ...[2]uint8) {
	for i, r := range rows {
		mmu.Write(base+uint16(i*2), r[0])
		mmu.Write(base+uint16(i*2)+1, r[1])
	}
}

func TestGPUModeSequence(t *testing.T) {
	g, mmu := newTestGPU(0x91)

	steps := []struct {
		cycles int
		mode   Mode
		line   uint8
	}{
		{76, ModeOAMScan, 0},
		{4, ModeDraw, 0},
		{172, ModeHBlank, 0},
		{204, ModeOAMScan, 1},
	}
	for _, s := range steps {
		tickFor(g, s.cycles)
		assert.Equal(t, s.mode, g.Mode())
		assert.Equal(t, uint8(s.mode), mmu.Read(addr.STAT)&0x03, "STAT mode bits")
		assert.Equal(t, s.line, mmu.Read(addr.LY))
	}
}

func TestGPUFrame(t *testing.T) {
	g, mmu := newTestGPU(0x91)

	frames := tickFor(g, lineCycles*visibleLines)
	assert.Equal(t, 1, frames)
	assert.Equal(t, ModeVBlank, g.Mode())
	assert.Equal(t, uint8(144), mmu.Read(addr.LY))
	assert.NotZero(t, mmu.Read(addr.IF)&uint8(addr.VBlankInterrupt))

	frames = tickFor(g, lineCycles*(totalLines-visibleLines))
	assert.Zero(t, frames)
	assert.Equal(t, uint8(0), mmu.Read(addr.LY))
	assert.Equal(t, ModeOAMScan, g.Mode())

	assert.Equal(t, 1, tickFor(g, FrameCycles))
	assert.Equal(t, uint64(2), g.Frames())
}

func TestGPULCDOff(t *testing.T) {
	g, mmu := newTestGPU(0x91)
	tickFor(g, lineCycles*10)
	require.Equal(t, uint8(10), mmu.Read(addr.LY))

	mmu.Write(addr.LCDC, 0x11)
	assert.Zero(t, tickFor(g, FrameCycles-4))
	assert.Equal(t, uint8(0), mmu.Read(addr.LY))
	assert.Equal(t, ModeHBlank, g.Mode())
	assert.True(t, g.Tick(4), "blank frame after a full frame period")

	mmu.Write(addr.LCDC, 0x91)
	g.Tick(4)
	assert.Equal(t, ModeOAMScan, g.Mode())
}

func TestGPULYCInterrupt(t *testing.T) {
	g, mmu := newTestGPU(0x91)
	mmu.Write(addr.LYC, 2)
	mmu.Write(addr.STAT, 0x40)

	tickFor(g, lineCycles)
	assert.Zero(t, mmu.Read(addr.IF)&uint8(addr.LCDSTATInterrupt))

	tickFor(g, lineCycles)
	assert.NotZero(t, mmu.Read(addr.IF)&uint8(addr.LCDSTATInterrupt))
	assert.NotZero(t, mmu.Read(addr.STAT)&0x04, "coincidence flag")
}

func TestTileDataAddress(t *testing.T) {
	tests := []struct {
		lcdc uint8
		tile uint8
		want uint16
	}{
		{0x91, 0x00, 0x8000},
		{0x91, 0x7F, 0x87F0},
		{0x91, 0x80, 0x8800},
		{0x81, 0x00, 0x9000},
		{0x81, 0x7F, 0x97F0},
		{0x81, 0x80, 0x8800},
		{0x81, 0xFF, 0x8FF0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tileDataAddress(tt.lcdc, tt.tile), "lcdc=%02X tile=%02X", tt.lcdc, tt.tile)
	}
}

func TestBackgroundScanline(t *testing.T) {
	g, mmu := newTestGPU(0x91)
	writeTile(mmu, 0x8010, [2]uint8{0xFF, 0x00}, [2]uint8{0x00, 0xFF})
	mmu.Write(addr.TileMap0, 1)

	tickFor(g, lineCycles*2)
	fb := g.FrameBuffer()

	for x := range 8 {
		assert.Equal(t, ShadeLight, fb.GetPixel(x, 0))
		assert.Equal(t, ShadeDark, fb.GetPixel(x, 1))
	}
	assert.Equal(t, ShadeWhite, fb.GetPixel(8, 0))

	t.Run("scroll", func(t *testing.T) {
		mmu.Write(addr.SCX, 4)
		tickFor(g, FrameCycles)
		assert.Equal(t, ShadeLight, fb.GetPixel(3, 0))
		assert.Equal(t, ShadeWhite, fb.GetPixel(4, 0))
	})
}

func TestWindowScanline(t *testing.T) {
	g, mmu := newTestGPU(0xF1) // window on, window map 0x9C00
	writeTile(mmu, 0x8010, [2]uint8{0xFF, 0xFF})
	mmu.Write(addr.TileMap1, 1)
	mmu.Write(addr.WY, 0)
	mmu.Write(addr.WX, 7+80)

	tickFor(g, lineCycles)
	fb := g.FrameBuffer()
	assert.Equal(t, ShadeWhite, fb.GetPixel(79, 0))
	assert.Equal(t, ShadeBlack, fb.GetPixel(80, 0))
	assert.Equal(t, ShadeWhite, fb.GetPixel(88, 0), "second window tile is tile 0")
}

func TestSpriteScanline(t *testing.T) {
	g, mmu := newTestGPU(0x93)
	writeTile(mmu, 0x8020, [2]uint8{0xFF, 0xFF}, [2]uint8{0xF0, 0x00})

	mmu.Write(addr.OAMStart, 16)
	mmu.Write(addr.OAMStart+1, 8+4)
	mmu.Write(addr.OAMStart+2, 2)
	mmu.Write(addr.OAMStart+3, 0x00)

	tickFor(g, lineCycles*2)
	fb := g.FrameBuffer()
	assert.Equal(t, ShadeWhite, fb.GetPixel(3, 0))
	for x := 4; x < 12; x++ {
		assert.Equal(t, ShadeBlack, fb.GetPixel(x, 0))
	}
	assert.Equal(t, ShadeLight, fb.GetPixel(4, 1))
	assert.Equal(t, ShadeWhite, fb.GetPixel(8, 1), "colour 0 is transparent")

	t.Run("flip x", func(t *testing.T) {
		mmu.Write(addr.OAMStart+3, 0x20)
		tickFor(g, FrameCycles)
		assert.Equal(t, ShadeWhite, fb.GetPixel(4, 1))
		assert.Equal(t, ShadeLight, fb.GetPixel(8, 1))
	})

	t.Run("behind background", func(t *testing.T) {
		writeTile(mmu, 0x8010, [2]uint8{0x0F, 0x00})
		mmu.Write(addr.TileMap0, 1)
		mmu.Write(addr.OAMStart+3, 0x80)
		tickFor(g, FrameCycles)
		// tile 1 colour index is 0 on pixels 0-3 and 1 on 4-7, tile 0 follows
		assert.Equal(t, ShadeWhite, fb.GetPixel(0, 0))
		assert.Equal(t, ShadeLight, fb.GetPixel(4, 0), "sprite hidden by non-zero bg")
		assert.Equal(t, ShadeLight, fb.GetPixel(7, 0))
		assert.Equal(t, ShadeBlack, fb.GetPixel(8, 0), "bg colour 0 lets the sprite through")
	})
}

func TestOverlappingSprites(t *testing.T) {
	g, mmu := newTestGPU(0x93)
	// tile 2: colour 0 on the left half, colour 1 on the right half
	writeTile(mmu, 0x8020, [2]uint8{0x0F, 0x00})
	// tile 3: solid colour 3
	writeTile(mmu, 0x8030, [2]uint8{0xFF, 0xFF})

	for i, spr := range [][4]uint8{
		{16, 8 + 10, 2, 0x00},
		{16, 8 + 10, 3, 0x00},
	} {
		for j, v := range spr {
			mmu.Write(addr.OAMStart+uint16(i*4+j), v)
		}
	}

	tickFor(g, lineCycles*2)
	fb := g.FrameBuffer()
	for x := 10; x < 14; x++ {
		assert.Equal(t, ShadeBlack, fb.GetPixel(x, 0), "lower priority sprite shows through colour 0")
	}
	for x := 14; x < 18; x++ {
		assert.Equal(t, ShadeLight, fb.GetPixel(x, 0), "higher priority sprite wins opaque pixels")
	}
	assert.Equal(t, ShadeWhite, fb.GetPixel(18, 0))
}
