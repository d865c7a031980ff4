package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/memory"
)

func writeSprite(mmu *memory.MMU, index int, y, x, tile, flags uint8) {
	base := addr.OAMStart + uint16(index*4)
	mmu.Write(base, y)
	mmu.Write(base+1, x)
	mmu.Write(base+2, tile)
	mmu.Write(base+3, flags)
}

func TestOAMDecode(t *testing.T) {
	mmu := memory.New()
	oam := NewOAM(mmu)
	writeSprite(mmu, 0, 50+16, 80+8, 0x42, 0xE0)
	writeSprite(mmu, 1, 4, 3, 0x10, 0x10)

	s, ok := oam.Sprite(0)
	require.True(t, ok)
	assert.Equal(t, 50, s.Y)
	assert.Equal(t, 80, s.X)
	assert.Equal(t, uint8(0x42), s.TileIndex)
	assert.True(t, s.FlipX)
	assert.True(t, s.FlipY)
	assert.True(t, s.BehindBG)
	assert.False(t, s.PaletteOBP1)

	s, _ = oam.Sprite(1)
	assert.Equal(t, -12, s.Y, "partially above the screen")
	assert.Equal(t, -5, s.X)
	assert.True(t, s.PaletteOBP1)

	_, ok = oam.Sprite(40)
	assert.False(t, ok)
}

func TestSpritesForScanline(t *testing.T) {
	t.Run("ten per line", func(t *testing.T) {
		mmu := memory.New()
		oam := NewOAM(mmu)
		for i := range 12 {
			writeSprite(mmu, i, 16+20, uint8(8+i*10), 0, 0)
		}
		sprites := oam.SpritesForScanline(20)
		require.Len(t, sprites, 10)
		assert.Equal(t, 9, sprites[9].OAMIndex)
		assert.Empty(t, oam.SpritesForScanline(28))
	})

	t.Run("tall sprites", func(t *testing.T) {
		mmu := memory.New()
		mmu.Write(addr.LCDC, 0x04)
		oam := NewOAM(mmu)
		writeSprite(mmu, 0, 16, 8, 0, 0)
		assert.Len(t, oam.SpritesForScanline(15), 1)
		assert.Empty(t, oam.SpritesForScanline(16))
	})

	t.Run("priority", func(t *testing.T) {
		mmu := memory.New()
		oam := NewOAM(mmu)
		mmu.Write(0x8000, 0xFF)
		writeSprite(mmu, 1, 16, 8+12, 0, 0)
		writeSprite(mmu, 3, 16, 8+12, 0, 0)
		writeSprite(mmu, 5, 16, 8+10, 0, 0)

		sprites := oam.SpritesForScanline(0)
		require.Len(t, sprites, 3)
		byIndex := map[int]Sprite{}
		for _, s := range sprites {
			byIndex[s.OAMIndex] = s
		}
		assert.Equal(t, uint8(0xFF), byIndex[5].PixelMask, "lowest X owns all of its pixels")
		assert.Equal(t, uint8(0x03), byIndex[1].PixelMask, "pixels 18-19 only")
		assert.Equal(t, uint8(0x00), byIndex[3].PixelMask, "same X, higher OAM index loses")
	})

	t.Run("transparent pixels are not claimed", func(t *testing.T) {
		mmu := memory.New()
		oam := NewOAM(mmu)
		// tile 1: left half colour 0, tile 2: solid colour 3
		mmu.Write(0x8010, 0x0F)
		mmu.Write(0x8020, 0xFF)
		mmu.Write(0x8021, 0xFF)
		writeSprite(mmu, 0, 16, 8+10, 1, 0)
		writeSprite(mmu, 1, 16, 8+10, 2, 0)

		sprites := oam.SpritesForScanline(0)
		require.Len(t, sprites, 2)
		assert.Equal(t, uint8(0x0F), sprites[0].PixelMask)
		assert.Equal(t, uint8(0xF0), sprites[1].PixelMask, "shows through the transparent half")

		mmu.Write(addr.OAMStart+3, 0x20)
		sprites = oam.SpritesForScanline(0)
		assert.Equal(t, uint8(0xF0), sprites[0].PixelMask, "flipped")
		assert.Equal(t, uint8(0x0F), sprites[1].PixelMask)
	})
}

func TestSpritePriorityBuffer(t *testing.T) {
	var b SpritePriorityBuffer
	b.Clear()

	assert.True(t, b.TryClaimPixel(50, 2, 20))
	assert.False(t, b.TryClaimPixel(50, 4, 20), "same X, higher index")
	assert.True(t, b.TryClaimPixel(50, 1, 20), "same X, lower index")
	assert.True(t, b.TryClaimPixel(50, 9, 15), "lower X")
	assert.Equal(t, 9, b.Owner(50))

	assert.False(t, b.TryClaimPixel(-1, 0, 0))
	assert.False(t, b.TryClaimPixel(FramebufferWidth, 0, 0))
	assert.Equal(t, -1, b.Owner(FramebufferWidth))
}
