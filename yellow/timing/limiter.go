package timing

import (
	"fmt"
	"time"
)

// Limiter paces the session loop to the handheld's frame rate.
type Limiter interface {
	// Wait blocks until the next frame is due. It returns immediately when
	// the caller is behind schedule.
	Wait()

	// Reset drops accumulated schedule, used after the loop was blocked
	// on something other than the limiter.
	Reset()
}

const (
	// CyclesPerFrame is one full pass over 154 scanlines.
	CyclesPerFrame = 70224
	CPUFrequency   = 4194304
)

// TargetFPS is roughly 59.73.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// Kind names a limiter implementation in configuration.
type Kind string

const (
	KindAdaptive Kind = "adaptive"
	KindTicker   Kind = "ticker"
	KindNone     Kind = "none"
)

// Validate reports whether kind names a known limiter.
func (k Kind) Validate() error {
	switch k {
	case KindAdaptive, KindTicker, KindNone, "":
		return nil
	}
	return fmt.Errorf("unknown limiter %q", k)
}

// New builds the limiter named by kind. An empty kind selects the adaptive limiter.
func New(kind Kind) (Limiter, error) {
	switch kind {
	case KindAdaptive, "":
		return NewAdaptiveLimiter(), nil
	case KindTicker:
		return NewTickerLimiter(), nil
	case KindNone:
		return NoOp{}, nil
	}
	return nil, kind.Validate()
}

// NoOp never waits. Used in headless runs and tests.
type NoOp struct{}

func (NoOp) Wait()  {}
func (NoOp) Reset() {}
