package yellow

import (
	"io"
	"log/slog"

	"github.com/valerio/go-yellow/yellow/audio"
	"github.com/valerio/go-yellow/yellow/keypad"
	"github.com/valerio/go-yellow/yellow/memory"
	"github.com/valerio/go-yellow/yellow/timing"
	"github.com/valerio/go-yellow/yellow/video"
)

// Options carries everything a session talks to. Nothing is shared between
// sessions unless the caller injects the same value twice.
type Options struct {
	// Player receives the samples of every emulated frame. Defaults to a NullPlayer.
	Player audio.Player
	// Frames receives composed RGB frames. Only the newest unread frame is kept,
	// so the channel should have a capacity of 1. Created when nil.
	Frames chan []byte
	// Keys is the host input. A closed channel reads as Escape, and so does a
	// nil one.
	Keys <-chan keypad.Event
	// Link is the peer of the serial port. When nil, outgoing bytes are logged.
	Link io.ReadWriter
	// Limiter paces Run and the frames run while waiting for keys. Defaults to no pacing.
	Limiter timing.Limiter
	Logger  *slog.Logger
	// Header lists the bytes the image must carry. Defaults to memory.YellowHeader.
	Header  []memory.Expectation
	Palette *video.Palette
	// AutoReleaseFrames releases a held key after that many frames, for hosts
	// that never report releases. Zero keeps keys held until released.
	AutoReleaseFrames int
	// Mute silences sound channels 1 to 4 in the mix.
	Mute []int
}

func (o Options) withDefaults() Options {
	if o.Player == nil {
		o.Player = &audio.NullPlayer{}
	}
	if o.Frames == nil {
		o.Frames = make(chan []byte, 1)
	}
	if o.Keys == nil {
		keys := make(chan keypad.Event)
		close(keys)
		o.Keys = keys
	}
	if o.Limiter == nil {
		o.Limiter = timing.NoOp{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Header == nil {
		o.Header = memory.YellowHeader
	}
	if o.Palette == nil {
		p := video.DefaultPalette
		o.Palette = &p
	}
	return o
}
