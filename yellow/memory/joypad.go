package memory

import (
	"github.com/valerio/go-yellow/yellow/bit"
)

// Button is one of the eight joypad inputs.
type Button uint8

const (
	ButtonRight Button = iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

func (b Button) String() string {
	switch b {
	case ButtonRight:
		return "right"
	case ButtonLeft:
		return "left"
	case ButtonUp:
		return "up"
	case ButtonDown:
		return "down"
	case ButtonA:
		return "a"
	case ButtonB:
		return "b"
	case ButtonSelect:
		return "select"
	case ButtonStart:
		return "start"
	}
	return "unknown"
}

// Joypad tracks pressed buttons and the P1 selection lines. A 0 bit means pressed.
type Joypad struct {
	buttons uint8
	dpad    uint8
	selectN uint8
}

func newJoypad() Joypad {
	return Joypad{buttons: 0x0F, dpad: 0x0F, selectN: 0x30}
}

// line returns the nibble and bit that b maps to.
func (b Button) line() (dpad bool, index uint8) {
	if b <= ButtonDown {
		return true, uint8(b)
	}
	return false, uint8(b - ButtonA)
}

// press marks b as held and reports whether it was a high to low transition.
func (j *Joypad) press(b Button) bool {
	dpad, i := b.line()
	if dpad {
		was := bit.IsSet(i, j.dpad)
		j.dpad = bit.Reset(i, j.dpad)
		return was
	}
	was := bit.IsSet(i, j.buttons)
	j.buttons = bit.Reset(i, j.buttons)
	return was
}

func (j *Joypad) release(b Button) {
	dpad, i := b.line()
	if dpad {
		j.dpad = bit.Set(i, j.dpad)
		return
	}
	j.buttons = bit.Set(i, j.buttons)
}

// Held reports whether b is currently pressed.
func (j *Joypad) Held(b Button) bool {
	dpad, i := b.line()
	if dpad {
		return !bit.IsSet(i, j.dpad)
	}
	return !bit.IsSet(i, j.buttons)
}

// register computes P1. Bit 4 low selects the d-pad, bit 5 low selects the
// action buttons, both low ANDs the two groups. Bits 6-7 read as 1.
func (j *Joypad) register() uint8 {
	result := uint8(0xC0) | j.selectN
	low := uint8(0x0F)
	if !bit.IsSet(4, j.selectN) {
		low &= j.dpad
	}
	if !bit.IsSet(5, j.selectN) {
		low &= j.buttons
	}
	return result | low
}

func (j *Joypad) write(value uint8) {
	j.selectN = value & 0x30
}
