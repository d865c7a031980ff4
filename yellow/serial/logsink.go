package serial

import (
	"log/slog"
)

// Both bound memory for binaries that stream without line breaks.
const (
	maxSent = 1024
	maxLine = 256
)

// LogSink is a link port with nothing plugged in: outgoing bytes are logged as
// text lines and every transfer receives 0xFF.
type LogSink struct {
	link
	logger *slog.Logger
	line   []byte
	sent   []byte
}

type LogSinkOption func(*LogSink)

// WithImmediateTransfers completes transfers as soon as they start instead of
// after TransferCycles.
func WithImmediateTransfers() LogSinkOption { return func(s *LogSink) { s.immediate = true } }

// WithLogger sets the logger lines are written to.
func WithLogger(l *slog.Logger) LogSinkOption { return func(s *LogSink) { s.logger = l } }

// NewLogSink creates a logging serial device. irq is called when a transfer
// completes and should request the serial interrupt.
func NewLogSink(irq func(), opts ...LogSinkOption) *LogSink {
	s := &LogSink{logger: slog.Default()}
	s.irq = irq
	s.exchange = s.record
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Sent returns the last bytes transmitted, up to 1024.
func (s *LogSink) Sent() []byte {
	return s.sent
}

func (s *LogSink) record(out uint8) uint8 {
	s.sent = append(s.sent, out)
	if len(s.sent) > maxSent {
		s.sent = s.sent[len(s.sent)-maxSent:]
	}
	if out == 0 || out == '\n' || out == '\r' {
		s.flush()
		return 0xFF
	}
	s.line = append(s.line, out)
	if len(s.line) >= maxLine {
		s.flush()
	}
	return 0xFF
}

func (s *LogSink) flush() {
	if len(s.line) > 0 {
		s.logger.Info("serial", "line", string(s.line))
		s.line = s.line[:0]
	}
}
