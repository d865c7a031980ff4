// Package keypad defines the key events delivered to a session.
package keypad

import (
	"fmt"
	"strings"

	"github.com/valerio/go-yellow/yellow/memory"
)

// Key is a logical key. The first eight map onto joypad buttons; Escape ends the session.
type Key uint8

const (
	Up Key = iota
	Down
	Left
	Right
	A
	B
	Start
	Select
	Escape
)

var keyNames = [...]string{
	Up:     "up",
	Down:   "down",
	Left:   "left",
	Right:  "right",
	A:      "a",
	B:      "b",
	Start:  "start",
	Select: "select",
	Escape: "escape",
}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("key(%d)", uint8(k))
}

// ParseKey accepts the names returned by String, case insensitive.
func ParseKey(name string) (Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range keyNames {
		if n == name {
			return Key(k), nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// Button returns the joypad button k drives. Escape has none.
func (k Key) Button() (memory.Button, bool) {
	switch k {
	case Up:
		return memory.ButtonUp, true
	case Down:
		return memory.ButtonDown, true
	case Left:
		return memory.ButtonLeft, true
	case Right:
		return memory.ButtonRight, true
	case A:
		return memory.ButtonA, true
	case B:
		return memory.ButtonB, true
	case Start:
		return memory.ButtonStart, true
	case Select:
		return memory.ButtonSelect, true
	}
	return 0, false
}

// Event is a single press or release. Shift carries the host modifier state,
// which native routines may use for alternate actions.
type Event struct {
	Key      Key
	Shift    bool
	Released bool
}

func Press(k Key) Event   { return Event{Key: k} }
func Release(k Key) Event { return Event{Key: k, Released: true} }

func (e Event) String() string {
	s := e.Key.String()
	if e.Shift {
		s = "shift+" + s
	}
	if e.Released {
		return s + " up"
	}
	return s + " down"
}
