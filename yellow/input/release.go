package input

import (
	"slices"

	"github.com/valerio/go-yellow/yellow/keypad"
)

// AutoRelease synthesizes release events for hosts that only report key
// presses, such as terminals. A key pressed again before expiry is extended.
type AutoRelease struct {
	frames int
	held   map[keypad.Key]int
}

// NewAutoRelease releases keys frames frames after their last press. Zero disables it.
func NewAutoRelease(frames int) *AutoRelease {
	return &AutoRelease{frames: frames, held: make(map[keypad.Key]int)}
}

// Observe records an event that was applied to the joypad.
func (a *AutoRelease) Observe(e keypad.Event) {
	if a.frames <= 0 || e.Key == keypad.Escape {
		return
	}
	if e.Released {
		delete(a.held, e.Key)
		return
	}
	a.held[e.Key] = a.frames
}

// Tick advances one frame and returns the releases that came due, in key order.
func (a *AutoRelease) Tick() []keypad.Event {
	var due []keypad.Event
	for k, left := range a.held {
		if left <= 1 {
			due = append(due, keypad.Release(k))
			delete(a.held, k)
			continue
		}
		a.held[k] = left - 1
	}
	slices.SortFunc(due, func(x, y keypad.Event) int { return int(x.Key) - int(y.Key) })
	return due
}
