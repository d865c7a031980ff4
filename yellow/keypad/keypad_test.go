package keypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-yellow/yellow/memory"
)

func TestParseKey(t *testing.T) {
	for k := Up; k <= Escape; k++ {
		got, err := ParseKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKey(" Start ")
	require.NoError(t, err)
	assert.Equal(t, Start, got)

	_, err = ParseKey("turbo")
	assert.Error(t, err)
}

func TestButton(t *testing.T) {
	tests := []struct {
		key  Key
		want memory.Button
	}{
		{Up, memory.ButtonUp},
		{Down, memory.ButtonDown},
		{Left, memory.ButtonLeft},
		{Right, memory.ButtonRight},
		{A, memory.ButtonA},
		{B, memory.ButtonB},
		{Start, memory.ButtonStart},
		{Select, memory.ButtonSelect},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			b, ok := tt.key.Button()
			assert.True(t, ok)
			assert.Equal(t, tt.want, b)
		})
	}

	_, ok := Escape.Button()
	assert.False(t, ok)
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "a down", Press(A).String())
	assert.Equal(t, "shift+up up", Event{Key: Up, Shift: true, Released: true}.String())
}
