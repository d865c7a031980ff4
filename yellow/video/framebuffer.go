package video

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	// BytesPerPixel is the stride of an emitted RGB frame.
	BytesPerPixel = 3
	FrameBytes    = FramebufferWidth * FramebufferHeight * BytesPerPixel
)

// Shade is one of the four grey levels the LCD can show, after palette
// mapping. 0 is the lightest.
type Shade uint8

const (
	ShadeWhite Shade = iota
	ShadeLight
	ShadeDark
	ShadeBlack
)

// applyPalette maps a 2 bit colour index through a BGP/OBP style register.
func applyPalette(palette uint8, colorIndex int) Shade {
	return Shade(palette>>(uint(colorIndex)*2)) & 0x03
}

// RGB is an 8 bit per channel colour.
type RGB struct {
	R, G, B uint8
}

// Palette gives the display colour for each shade.
type Palette [4]RGB

// DefaultPalette is a neutral grey ramp.
var DefaultPalette = Palette{
	{0xFF, 0xFF, 0xFF},
	{0x98, 0x98, 0x98},
	{0x4C, 0x4C, 0x4C},
	{0x00, 0x00, 0x00},
}

// FrameBuffer holds one screen of shades.
type FrameBuffer struct {
	pixels [FramebufferWidth * FramebufferHeight]Shade
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

func (fb *FrameBuffer) GetPixel(x, y int) Shade {
	return fb.pixels[y*FramebufferWidth+x]
}

func (fb *FrameBuffer) SetPixel(x, y int, s Shade) {
	fb.pixels[y*FramebufferWidth+x] = s
}

// Clear fills the buffer with the lightest shade, the colour of a disabled LCD.
func (fb *FrameBuffer) Clear() {
	clear(fb.pixels[:])
}

// RGB writes the buffer through p into dst, growing it if needed, and returns it.
func (fb *FrameBuffer) RGB(p Palette, dst []byte) []byte {
	if cap(dst) < FrameBytes {
		dst = make([]byte, FrameBytes)
	}
	dst = dst[:FrameBytes]
	for i, s := range fb.pixels {
		c := p[s&0x03]
		dst[i*3], dst[i*3+1], dst[i*3+2] = c.R, c.G, c.B
	}
	return dst
}
