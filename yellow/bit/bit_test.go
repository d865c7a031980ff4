package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		expected  uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
		{0x12, 0x34, 0x1234},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Combine(tt.high, tt.low))
		assert.Equal(t, tt.high, High(tt.expected))
		assert.Equal(t, tt.low, Low(tt.expected))
	}
}

func TestSetReset(t *testing.T) {
	var v uint8
	for i := uint8(0); i < 8; i++ {
		v = Set(i, v)
		assert.True(t, IsSet(i, v))
		assert.Equal(t, uint8(1), Value(i, v))
	}
	assert.Equal(t, uint8(0xFF), v)

	v = Reset(3, v)
	assert.False(t, IsSet(3, v))
	assert.Equal(t, uint8(0xF7), v)
	assert.True(t, IsSet16(15, 0x8000))
	assert.False(t, IsSet16(14, 0x8000))
}

func TestExtract(t *testing.T) {
	assert.Equal(t, uint8(0b101), Extract(0b11010110, 6, 4))
	assert.Equal(t, uint8(0b0110), Extract(0b11010110, 3, 0))
	assert.Equal(t, uint8(1), Extract(0b10000000, 7, 7))
}

func TestHalfCarry(t *testing.T) {
	tests := []struct {
		name     string
		got      bool
		expected bool
	}{
		{"add 0x0F+0x01", HalfCarryAdd(0x0F, 0x01, 0), true},
		{"add 0x0E+0x01", HalfCarryAdd(0x0E, 0x01, 0), false},
		{"add with carry in", HalfCarryAdd(0x0E, 0x01, 1), true},
		{"sub 0x10-0x01", HalfCarrySub(0x10, 0x01, 0), true},
		{"sub 0x11-0x01", HalfCarrySub(0x11, 0x01, 0), false},
		{"sub with borrow in", HalfCarrySub(0x11, 0x01, 1), true},
		{"add16 0x0FFF+1", HalfCarryAdd16(0x0FFF, 1), true},
		{"add16 0x0FFE+1", HalfCarryAdd16(0x0FFE, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}
