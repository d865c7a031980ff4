// Package input translates host key names into keypad events.
package input

import (
	"fmt"
	"maps"

	"github.com/valerio/go-yellow/yellow/keypad"
)

// KeyMap maps host key names, as reported by a backend, to keypad keys.
type KeyMap map[string]keypad.Key

// DefaultKeyMap works for every backend. Backends can copy and extend it.
var DefaultKeyMap = KeyMap{
	"z":      keypad.A,
	"x":      keypad.B,
	"Enter":  keypad.Start,
	"Shift":  keypad.Select,
	"Select": keypad.Select,
	"Up":     keypad.Up,
	"Down":   keypad.Down,
	"Left":   keypad.Left,
	"Right":  keypad.Right,

	// terminals never report a bare shift
	"Backspace": keypad.Select,

	// WASD
	"w": keypad.Up,
	"s": keypad.Down,
	"a": keypad.Left,
	"d": keypad.Right,

	"Escape": keypad.Escape,
	"q":      keypad.Escape,
}

// Lookup returns the key bound to name.
func (m KeyMap) Lookup(name string) (keypad.Key, bool) {
	k, ok := m[name]
	return k, ok
}

// WithBindings returns a copy of m with bindings applied on top. Bindings map
// host key names to keypad key names as accepted by keypad.ParseKey.
func (m KeyMap) WithBindings(bindings map[string]string) (KeyMap, error) {
	out := maps.Clone(m)
	if out == nil {
		out = KeyMap{}
	}
	for host, name := range bindings {
		k, err := keypad.ParseKey(name)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", host, err)
		}
		out[host] = k
	}
	return out, nil
}
