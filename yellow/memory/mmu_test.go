package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-yellow/yellow/addr"
)

func newYellowMMU(t *testing.T) *MMU {
	t.Helper()
	cart, err := NewCartridge(yellowImage(4))
	require.NoError(t, err)
	return NewWithCartridge(cart)
}

func TestMemoryIsolation(t *testing.T) {
	m := newYellowMMU(t)
	m.Write(0x0000, 0x0A)

	writable := []uint16{0x8000, 0x9FFF, 0xA000, 0xBFFF, 0xC000, 0xDFFF, 0xFE00, 0xFE9F, 0xFF80, 0xFFFE, 0xFFFF}

	for i, a := range writable {
		m.Write(a, uint8(0x10+i))
	}
	for i, a := range writable {
		assert.Equal(t, uint8(0x10+i), m.Read(a), "addr 0x%04X", a)
	}

	t.Run("rom writes do not change rom", func(t *testing.T) {
		m.Write(0x7000, 0xAB)
		assert.Equal(t, uint8(1), m.Read(0x7000))
	})

	t.Run("echo mirrors work ram", func(t *testing.T) {
		m.Write(0xE010, 0x77)
		assert.Equal(t, uint8(0x77), m.Read(0xC010))
		m.Write(0xC020, 0x66)
		assert.Equal(t, uint8(0x66), m.Read(0xE020))
	})

	t.Run("unused region reads sentinel", func(t *testing.T) {
		m.Write(0xFEA0, 0x12)
		assert.Equal(t, uint8(0xFF), m.Read(0xFEA0))
		assert.Equal(t, uint8(0xFF), m.Read(0xFF7F))
	})

	for i, a := range writable {
		assert.Equal(t, uint8(0x10+i), m.Read(a), "addr 0x%04X after other writes", a)
	}
}

func TestMMUWithoutCartridgeIsTotal(t *testing.T) {
	m := New()
	for a := 0; a <= 0xFFFF; a += 0x100 {
		assert.NotPanics(t, func() { m.Read(uint16(a)) })
		assert.NotPanics(t, func() { m.Write(uint16(a), 0) })
	}
	assert.Equal(t, uint8(0xFF), m.Read(0x4000))
}

func TestInterruptFlagUpperBits(t *testing.T) {
	m := New()
	m.Write(addr.IF, 0x00)
	assert.Equal(t, uint8(0xE0), m.Read(addr.IF))

	m.RequestInterrupt(addr.TimerInterrupt)
	assert.Equal(t, uint8(0xE4), m.Read(addr.IF))
}

func TestReadOnlyVideoRegisters(t *testing.T) {
	m := New()
	m.SetIO(addr.LY, 0x42)
	m.Write(addr.LY, 0x00)
	assert.Equal(t, uint8(0x42), m.Read(addr.LY))

	m.SetIO(addr.STAT, 0x03)
	m.Write(addr.STAT, 0xFF)
	assert.Equal(t, uint8(0xFB), m.Read(addr.STAT), "mode and coincidence bits are hardware owned")
}

func TestDMA(t *testing.T) {
	m := New()
	for i := uint16(0); i < 0xA0; i++ {
		m.Write(0xC100+i, uint8(i))
	}
	m.Write(addr.DMA, 0xC1)

	assert.Equal(t, uint8(0x00), m.Read(0xFE00))
	assert.Equal(t, uint8(0x9F), m.Read(0xFE9F))
}

func TestReplaceRAM(t *testing.T) {
	m := newYellowMMU(t)
	m.Write(0x2000, 3)
	m.Write(0x4000, 2)

	image := make([]byte, 4*ramBankSize)
	image[2*ramBankSize+5] = 0xC3

	require.NoError(t, m.ReplaceRAM(image))

	assert.Equal(t, 3, m.ROMBank(), "bank registers untouched")
	m.Write(0x0000, 0x0A)
	assert.Equal(t, uint8(0xC3), m.Read(0xA005))
	assert.Equal(t, image, m.RAMImage())

	t.Run("size mismatch applies nothing", func(t *testing.T) {
		bad := make([]byte, ramBankSize)
		for i := range bad {
			bad[i] = 0xEE
		}
		assert.ErrorIs(t, m.ReplaceRAM(bad), ErrRAMSize)
		assert.Equal(t, uint8(0xC3), m.Read(0xA005))
		assert.Equal(t, image, m.RAMImage())
	})

	t.Run("image is a copy", func(t *testing.T) {
		img := m.RAMImage()
		img[0] = 0x99
		assert.NotEqual(t, img, m.RAMImage())
	})
}

func TestJoypadRegister(t *testing.T) {
	m := New()
	m.Write(addr.IF, 0)

	m.Press(ButtonA)
	m.Press(ButtonDown)
	assert.Equal(t, uint8(0xE0|uint8(addr.JoypadInterrupt)), m.Read(addr.IF))

	m.Write(addr.P1, 0x10) // select buttons
	assert.Equal(t, uint8(0xDE), m.Read(addr.P1))

	m.Write(addr.P1, 0x20) // select d-pad
	assert.Equal(t, uint8(0xE7), m.Read(addr.P1))

	m.Write(addr.P1, 0x30)
	assert.Equal(t, uint8(0xFF), m.Read(addr.P1))

	m.Release(ButtonA)
	assert.False(t, m.Held(ButtonA))
	assert.True(t, m.Held(ButtonDown))

	m.Write(addr.IF, 0)
	m.Press(ButtonDown)
	assert.Equal(t, uint8(0xE0), m.Read(addr.IF), "held button does not retrigger")
}

func TestTimer(t *testing.T) {
	t.Run("DIV increments every 256 cycles and resets on write", func(t *testing.T) {
		m := New()
		m.Tick(256 * 3)
		assert.Equal(t, uint8(3), m.Read(addr.DIV))
		m.Write(addr.DIV, 0x55)
		assert.Equal(t, uint8(0), m.Read(addr.DIV))
	})

	t.Run("TIMA overflow reloads TMA and raises interrupt", func(t *testing.T) {
		m := New()
		m.Write(addr.IF, 0)
		m.Write(addr.TMA, 0xF0)
		m.Write(addr.TIMA, 0xFE)
		m.Write(addr.TAC, 0x05) // enabled, 16 cycles per tick

		m.Tick(16)
		assert.Equal(t, uint8(0xFF), m.Read(addr.TIMA))
		m.Tick(16)
		assert.Equal(t, uint8(0x00), m.Read(addr.TIMA))
		m.Tick(timaReloadDelay)
		assert.Equal(t, uint8(0xF0), m.Read(addr.TIMA))
		assert.True(t, m.ReadBit(2, addr.IF))
	})

	t.Run("disabled timer holds TIMA", func(t *testing.T) {
		m := New()
		m.Write(addr.TAC, 0x01)
		m.Tick(4096)
		assert.Equal(t, uint8(0), m.Read(addr.TIMA))
		assert.Equal(t, uint8(0xF9), m.Read(addr.TAC))
	})
}
