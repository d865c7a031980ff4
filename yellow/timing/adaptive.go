package timing

import (
	"log/slog"
	"time"
)

const (
	spinThreshold  = 2 * time.Millisecond
	resyncBehind   = 5 * time.Millisecond
	driftTolerance = 10 * time.Millisecond
	driftWindow    = 60
)

// AdaptiveLimiter sleeps for most of the frame and spins for the last
// couple of milliseconds. Drift is corrected once per driftWindow frames.
type AdaptiveLimiter struct {
	frame  time.Duration
	next   time.Time
	frames int64
	now    func() time.Time
	sleep  func(time.Duration)
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return &AdaptiveLimiter{
		frame: FrameDuration(),
		next:  time.Now(),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

func (a *AdaptiveLimiter) Wait() {
	now := a.now()
	remaining := a.next.Sub(now)

	switch {
	case remaining > spinThreshold:
		a.sleep(remaining - time.Millisecond)
		a.spin()
	case remaining > 0:
		a.spin()
	case remaining < -resyncBehind:
		// too far behind to catch up, restart the schedule from now
		a.next = now
	}

	a.next = a.next.Add(a.frame)
	a.frames++

	if a.frames%driftWindow == 0 {
		drift := a.now().Sub(a.next)
		if drift.Abs() > driftTolerance {
			a.next = a.next.Add(drift / 10)
			slog.Debug("Frame timing drift correction", "drift_ms", drift.Milliseconds(), "frames", a.frames)
		}
	}
}

func (a *AdaptiveLimiter) spin() {
	for a.now().Before(a.next) {
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.next = a.now()
	a.frames = 0
}
