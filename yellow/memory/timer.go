package memory

import (
	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/bit"
)

// timerTap maps TAC clock select (bits 1-0) to the bit of the system counter whose
// falling edge increments TIMA:
//
//	00 -> bit 9 (4096 Hz)
//	01 -> bit 3 (262144 Hz)
//	10 -> bit 5 (65536 Hz)
//	11 -> bit 7 (16384 Hz)
var timerTap = [4]uint16{9, 3, 5, 7}

// timaReloadDelay is how many cycles TIMA reads 0x00 after overflowing before TMA is loaded.
const timaReloadDelay = 4

// Timer is the DIV/TIMA/TMA/TAC block. DIV is the upper byte of a free running
// 16 bit counter.
type Timer struct {
	counter   uint16
	lastTap   bool
	reloading int

	tima uint8
	tma  uint8
	tac  uint8

	// OnOverflow is invoked when TMA is reloaded into TIMA.
	OnOverflow func()
}

func (t *Timer) enabled() bool {
	return bit.IsSet(2, t.tac)
}

// Tick advances the timer by the given number of cycles.
func (t *Timer) Tick(cycles int) {
	for range cycles {
		t.counter++

		if t.reloading > 0 {
			t.reloading--
			if t.reloading == 0 {
				t.tima = t.tma
				if t.OnOverflow != nil {
					t.OnOverflow()
				}
			}
			continue
		}

		t.sampleTap()
	}
}

// sampleTap increments TIMA on a falling edge of the selected counter bit.
func (t *Timer) sampleTap() {
	tap := t.enabled() && bit.IsSet16(timerTap[t.tac&0x03], t.counter)
	if t.lastTap && !tap {
		t.tima++
		if t.tima == 0 {
			t.reloading = timaReloadDelay
		}
	}
	t.lastTap = tap
}

func (t *Timer) Read(address uint16) uint8 {
	switch address {
	case addr.DIV:
		return uint8(t.counter >> 8)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	}
	return 0xFF
}

func (t *Timer) Write(address uint16, value uint8) {
	switch address {
	case addr.DIV:
		t.counter = 0
		t.sampleTap()
	case addr.TIMA:
		t.tima = value
		t.reloading = 0
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
		t.sampleTap()
	}
}

// Seed sets the system counter, used to reproduce post-boot DIV state.
func (t *Timer) Seed(counter uint16) {
	t.counter = counter
	t.lastTap = false
	t.reloading = 0
}
