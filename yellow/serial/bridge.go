package serial

import (
	"io"
	"log/slog"
)

// Bridge exchanges link port bytes with a peer over a byte stream, such as a
// host serial device or a pipe to another session. Each transfer writes one
// byte and reads one byte back.
type Bridge struct {
	link
	rw     io.ReadWriter
	logger *slog.Logger
	buf    [1]byte
}

// NewBridge creates a link port backed by rw. irq is called on transfer completion.
func NewBridge(rw io.ReadWriter, irq func(), logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{rw: rw, logger: logger}
	b.irq = irq
	b.exchange = b.swap
	b.Reset()
	return b
}

// swap sends out and returns the peer's byte. A peer that fails or stays silent
// reads as a disconnected cable (0xFF).
func (b *Bridge) swap(out uint8) uint8 {
	b.buf[0] = out
	if _, err := b.rw.Write(b.buf[:]); err != nil {
		b.logger.Warn("serial bridge write failed", "err", err)
		return 0xFF
	}
	n, err := b.rw.Read(b.buf[:])
	if err != nil && err != io.EOF {
		b.logger.Warn("serial bridge read failed", "err", err)
		return 0xFF
	}
	if n == 0 {
		return 0xFF
	}
	return b.buf[0]
}
