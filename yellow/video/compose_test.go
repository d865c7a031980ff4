package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/memory"
)

// patternFrame never uses ShadeBlack, so a black glyph differs from every base pixel.
func patternFrame() *FrameBuffer {
	fb := NewFrameBuffer()
	for y := range FramebufferHeight {
		for x := range FramebufferWidth {
			fb.SetPixel(x, y, Shade((x+y)%3))
		}
	}
	return fb
}

func solidGlyphVRAM(code uint8) *memory.MMU {
	mmu := memory.New()
	mmu.Write(addr.BGP, 0xE4)
	base := addr.TileData0 + uint16(code)*16
	for i := range uint16(16) {
		mmu.Write(base+i, 0xFF)
	}
	return mmu
}

func diffPixels(a, b []byte) []Point {
	var out []Point
	for i := 0; i < len(a); i += BytesPerPixel {
		if a[i] != b[i] || a[i+1] != b[i+1] || a[i+2] != b[i+2] {
			p := i / BytesPerPixel
			out = append(out, Point{p % FramebufferWidth, p / FramebufferWidth})
		}
	}
	return out
}

func TestComposeWithoutLayersIsRawFrame(t *testing.T) {
	fb := patternFrame()
	mmu := solidGlyphVRAM(0x80)

	got := Compose(fb, nil, mmu, DefaultPalette, nil)
	require.Len(t, got, FrameBytes)
	assert.Equal(t, fb.RGB(DefaultPalette, nil), got)

	var s LayerStack
	s.Push()
	assert.Equal(t, got, Compose(fb, s.Layers(), mmu, DefaultPalette, nil), "transparent layer changes nothing")
}

func TestComposeSingleGlyph(t *testing.T) {
	fb := patternFrame()
	mmu := solidGlyphVRAM(0x80)
	baseline := Compose(fb, nil, mmu, DefaultPalette, nil)

	var s LayerStack
	h := s.Push()
	s.Layer(h).SetBackground(2, 2, 0x80)
	got := Compose(fb, s.Layers(), mmu, DefaultPalette, nil)

	diff := diffPixels(baseline, got)
	assert.Len(t, diff, 64)
	for _, p := range diff {
		assert.True(t, p.X >= 16 && p.X < 24 && p.Y >= 16 && p.Y < 24, "pixel %v outside cell (2,2)", p)
	}
	i := (16*FramebufferWidth + 16) * BytesPerPixel
	assert.Equal(t, []byte{0, 0, 0}, got[i:i+3])

	assert.Equal(t, baseline, fb.RGB(DefaultPalette, nil), "base frame untouched")
}

func TestComposeOrder(t *testing.T) {
	fb := NewFrameBuffer()
	mmu := solidGlyphVRAM(0x80)

	var s LayerStack
	bottom := s.Layer(s.Push())
	top := s.Layer(s.Push())
	bottom.Draw(Background{}, Fill(ShadeDark))
	top.Set(0, 0, Glyph(0x80))

	got := Compose(fb, s.Layers(), mmu, DefaultPalette, nil)
	assert.Equal(t, []byte{0, 0, 0}, got[0:3], "top layer wins")
	i := 8 * BytesPerPixel
	assert.Equal(t, []byte{0x4C, 0x4C, 0x4C}, got[i:i+3], "bottom layer shows through transparent cells")
}

func TestGlyphUsesBGP(t *testing.T) {
	fb := NewFrameBuffer()
	mmu := solidGlyphVRAM(0x80)
	mmu.Write(addr.BGP, 0x1B) // colour 3 maps to white

	var s LayerStack
	s.Layer(s.Push()).Set(0, 0, Glyph(0x80))
	fb.SetPixel(0, 0, ShadeBlack)

	got := Compose(fb, s.Layers(), mmu, DefaultPalette, nil)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, got[0:3])
}
