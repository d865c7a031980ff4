package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-yellow/yellow/keypad"
)

func TestDefaultKeyMap(t *testing.T) {
	tests := map[string]keypad.Key{
		"z":         keypad.A,
		"x":         keypad.B,
		"Enter":     keypad.Start,
		"w":         keypad.Up,
		"Backspace": keypad.Select,
		"Escape":    keypad.Escape,
	}
	for name, want := range tests {
		got, ok := DefaultKeyMap.Lookup(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := DefaultKeyMap.Lookup("F12")
	assert.False(t, ok)
}

func TestWithBindings(t *testing.T) {
	m, err := DefaultKeyMap.WithBindings(map[string]string{"j": "a", "z": "b"})
	require.NoError(t, err)
	assert.Equal(t, keypad.A, m["j"])
	assert.Equal(t, keypad.B, m["z"])
	assert.Equal(t, keypad.A, DefaultKeyMap["z"], "default map untouched")

	_, err = DefaultKeyMap.WithBindings(map[string]string{"k": "turbo"})
	assert.Error(t, err)
}

func TestAutoRelease(t *testing.T) {
	a := NewAutoRelease(2)
	a.Observe(keypad.Press(keypad.B))
	a.Observe(keypad.Press(keypad.A))
	a.Observe(keypad.Press(keypad.Escape))

	assert.Empty(t, a.Tick())
	assert.Equal(t, []keypad.Event{keypad.Release(keypad.A), keypad.Release(keypad.B)}, a.Tick())
	assert.Empty(t, a.Tick())

	t.Run("explicit release cancels", func(t *testing.T) {
		a.Observe(keypad.Press(keypad.Start))
		a.Observe(keypad.Release(keypad.Start))
		assert.Empty(t, a.Tick())
		assert.Empty(t, a.Tick())
	})

	t.Run("disabled", func(t *testing.T) {
		off := NewAutoRelease(0)
		off.Observe(keypad.Press(keypad.A))
		assert.Empty(t, off.Tick())
	})
}
