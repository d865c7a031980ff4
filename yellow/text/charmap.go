// Package text converts between Go strings and the game's single byte
// character encoding used in tile maps and save data.
package text

import "fmt"

const (
	// Terminator ends every string stored by the game.
	Terminator uint8 = 0x50
	Space      uint8 = 0x7F

	upperBase uint8 = 0x80
	lowerBase uint8 = 0xA0
	digitBase uint8 = 0xF6
)

var punctuation = map[rune]uint8{
	'(':  0x9A,
	')':  0x9B,
	':':  0x9C,
	';':  0x9D,
	'[':  0x9E,
	']':  0x9F,
	'é':  0xBA,
	'\'': 0xE0,
	'-':  0xE3,
	'?':  0xE6,
	'!':  0xE7,
	'.':  0xE8,
	'/':  0xF3,
	',':  0xF4,
}

var punctuationByCode = func() map[uint8]rune {
	m := make(map[uint8]rune, len(punctuation))
	for r, c := range punctuation {
		m[c] = r
	}
	return m
}()

// InvalidCharError reports a byte with no printable mapping.
type InvalidCharError struct {
	Offset int
	Code   uint8
}

func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("invalid character 0x%02X at offset %d", e.Code, e.Offset)
}

// EncodeRune maps r to its tile code. Runes without a mapping become '?'.
func EncodeRune(r rune) uint8 {
	switch {
	case r >= 'A' && r <= 'Z':
		return upperBase + uint8(r-'A')
	case r >= 'a' && r <= 'z':
		return lowerBase + uint8(r-'a')
	case r >= '0' && r <= '9':
		return digitBase + uint8(r-'0')
	case r == ' ':
		return Space
	}
	if c, ok := punctuation[r]; ok {
		return c
	}
	return punctuation['?']
}

// Encode converts s to tile codes, one per rune. No terminator is appended.
func Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, EncodeRune(r))
	}
	return out
}

// DecodeByte maps a single code back to its rune.
func DecodeByte(c uint8) (rune, bool) {
	switch {
	case c >= upperBase && c <= upperBase+25:
		return rune('A' + c - upperBase), true
	case c >= lowerBase && c <= lowerBase+25:
		return rune('a' + c - lowerBase), true
	case c >= digitBase:
		return rune('0' + c - digitBase), true
	case c == Space:
		return ' ', true
	}
	r, ok := punctuationByCode[c]
	return r, ok
}

// Decode converts codes up to the first Terminator, or the whole slice when
// there is none.
func Decode(b []byte) (string, error) {
	out := make([]rune, 0, len(b))
	for i, c := range b {
		if c == Terminator {
			break
		}
		r, ok := DecodeByte(c)
		if !ok {
			return "", &InvalidCharError{Offset: i, Code: c}
		}
		out = append(out, r)
	}
	return string(out), nil
}
