// Package terminal shows frames in a terminal with tcell, two pixels per
// character cell, and reads the keyboard as keypad input.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/valerio/go-yellow/yellow/input"
	"github.com/valerio/go-yellow/yellow/keypad"
	"github.com/valerio/go-yellow/yellow/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	// logPanelMin is the narrowest log panel worth drawing.
	logPanelMin = 20
)

// tcellKeyNames converts tcell keys to the names used by input.KeyMap.
var tcellKeyNames = map[tcell.Key]string{
	tcell.KeyEnter:      "Enter",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyEscape:     "Escape",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyTab:        "Tab",
}

// Backend draws frames on a tcell screen and turns key presses into keypad
// events. Terminals do not report key releases; the session releases keys
// after a few frames instead.
type Backend struct {
	screen tcell.Screen
	keymap input.KeyMap
	keys   chan<- keypad.Event
	logs   *LogBuffer
	logger *slog.Logger
}

// Open takes over the controlling terminal.
func Open(keymap input.KeyMap, keys chan<- keypad.Event, logs *LogBuffer) (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	return New(screen, keymap, keys, logs), nil
}

// New uses an initialized screen. logs may be nil.
func New(screen tcell.Screen, keymap input.KeyMap, keys chan<- keypad.Event, logs *LogBuffer) *Backend {
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()
	return &Backend{
		screen: screen,
		keymap: keymap,
		keys:   keys,
		logs:   logs,
		logger: slog.Default(),
	}
}

func (b *Backend) Close() {
	b.screen.Fini()
}

// PollInput forwards key presses until the screen is finalized or ctx is
// done. Ctrl-C is always Escape.
func (b *Backend) PollInput(ctx context.Context) {
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			e, ok := b.translate(ev)
			if !ok {
				continue
			}
			select {
			case b.keys <- e:
			case <-ctx.Done():
				return
			}
		case *tcell.EventResize:
			b.screen.Sync()
		}
	}
}

func (b *Backend) translate(ev *tcell.EventKey) (keypad.Event, bool) {
	shift := ev.Modifiers()&tcell.ModShift != 0
	if ev.Key() == tcell.KeyCtrlC {
		return keypad.Press(keypad.Escape), true
	}

	var name string
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if unicode.IsUpper(r) {
			shift = true
			r = unicode.ToLower(r)
		}
		name = string(r)
		if r == ' ' {
			name = "Space"
		}
	} else {
		name = tcellKeyNames[ev.Key()]
	}

	k, ok := b.keymap.Lookup(name)
	if !ok {
		return keypad.Event{}, false
	}
	return keypad.Event{Key: k, Shift: shift}, true
}

// Draw shows an RGB frame. Terminals narrower than the frame get it at half
// size, each cell blending a 2x4 block of pixels.
func (b *Backend) Draw(frame []byte) {
	if len(frame) != video.FrameBytes {
		b.logger.Warn("ignoring frame of unexpected size", "bytes", len(frame))
		return
	}
	termWidth, termHeight := b.screen.Size()
	b.screen.Clear()

	scale := 1
	if termWidth < width || termHeight < height/2 {
		scale = 2
	}
	cols, rows := width/scale, height/(2*scale)

	for row := range rows {
		for col := range cols {
			top := blend(frame, col*scale, row*2*scale, scale)
			bottom := blend(frame, col*scale, (row*2+1)*scale, scale)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			b.screen.SetContent(col, row, '▀', nil, style)
		}
	}

	if panel := termWidth - cols - 1; panel >= logPanelMin {
		b.drawLogs(cols+1, panel, termHeight)
	}
	b.screen.Show()
}

// blend averages a scale x scale block of pixels with its top left at (x, y).
func blend(frame []byte, x, y, scale int) tcell.Color {
	if scale == 1 {
		i := (y*width + x) * video.BytesPerPixel
		return tcell.NewRGBColor(int32(frame[i]), int32(frame[i+1]), int32(frame[i+2]))
	}
	c := pixel(frame, x, y)
	n := 1.0
	for dy := range scale {
		for dx := range scale {
			if dx == 0 && dy == 0 {
				continue
			}
			n++
			c = c.BlendRgb(pixel(frame, x+dx, y+dy), 1/n)
		}
	}
	r, g, bl := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(bl))
}

func pixel(frame []byte, x, y int) colorful.Color {
	i := (y*width + x) * video.BytesPerPixel
	return colorful.Color{
		R: float64(frame[i]) / 255,
		G: float64(frame[i+1]) / 255,
		B: float64(frame[i+2]) / 255,
	}
}

func (b *Backend) drawLogs(x, w, h int) {
	if b.logs == nil {
		return
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	for y := 0; y < h; y++ {
		b.screen.SetContent(x-1, y, '│', nil, style)
	}
	for y, e := range b.logs.Recent(h) {
		col := 0
		for _, ch := range e.String() {
			if col >= w {
				break
			}
			b.screen.SetContent(x+col, y, ch, nil, style)
			col++
		}
	}
}
