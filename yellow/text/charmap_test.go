package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"ASH", []byte{0x80, 0x92, 0x87}},
		{"red", []byte{0xB1, 0xA4, 0xA3}},
		{"09", []byte{0xF6, 0xFF}},
		{"A B", []byte{0x80, 0x7F, 0x81}},
		{"POKéDEX", []byte{0x8F, 0x8E, 0x8A, 0xBA, 0x83, 0x84, 0x97}},
		{"TIME:", []byte{0x93, 0x88, 0x8C, 0x84, 0x9C}},
		{"#", []byte{0xE6}},
		{"", []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.in))
		})
	}
}

func TestDecode(t *testing.T) {
	s, err := Decode([]byte{0x91, 0x84, 0x83, Terminator, 0x80})
	require.NoError(t, err)
	assert.Equal(t, "RED", s)

	s, err = Decode([]byte{0x8B, 0xA4, 0xF7, 0xE7})
	require.NoError(t, err)
	assert.Equal(t, "Le1!", s)

	_, err = Decode([]byte{0x80, 0x00})
	var invalid *InvalidCharError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.Offset)
	assert.Equal(t, uint8(0x00), invalid.Code)
}

func TestDecodeInvertsEncode(t *testing.T) {
	for _, s := range []string{"BLUE", "Gary", "TIME: 12", "what?!"} {
		got, err := Decode(Encode(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}
