package serial

import (
	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/bit"
)

// TransferCycles is the duration of one 8 bit transfer on the internal clock (8192 Hz).
const TransferCycles = 4096

// link is the SB/SC register pair and transfer timing shared by every port.
// exchange is called when a transfer starts: it receives the outgoing byte and
// returns the byte shifted in from the peer.
type link struct {
	irq       func()
	sb, sc    uint8
	active    bool
	countdown int
	immediate bool
	incoming  uint8
	exchange  func(out uint8) uint8
}

func (l *link) Write(address uint16, value uint8) {
	switch address {
	case addr.SB:
		l.sb = value
	case addr.SC:
		l.sc = value | 0x7E
		l.maybeStart()
	default:
		panic("serial: invalid write address")
	}
}

func (l *link) Read(address uint16) uint8 {
	switch address {
	case addr.SB:
		return l.sb
	case addr.SC:
		return l.sc
	default:
		panic("serial: invalid read address")
	}
}

func (l *link) Tick(cycles int) {
	if !l.active {
		return
	}
	l.countdown -= cycles
	if l.countdown <= 0 {
		l.complete()
	}
}

func (l *link) Reset() {
	l.sb = 0
	l.sc = 0x7E
	l.active = false
	l.countdown = 0
}

// maybeStart begins a transfer when SC bit 7 (start) and bit 0 (internal clock) are set.
// External clock transfers never complete without a clocking peer.
func (l *link) maybeStart() {
	if l.active || !bit.IsSet(7, l.sc) || !bit.IsSet(0, l.sc) {
		return
	}

	l.incoming = l.exchange(l.sb)
	if l.immediate {
		l.complete()
		return
	}
	l.active = true
	l.countdown = TransferCycles
}

func (l *link) complete() {
	l.sb = l.incoming
	l.sc = bit.Reset(7, l.sc)
	l.active = false
	l.countdown = 0
	if l.irq != nil {
		l.irq()
	}
}
