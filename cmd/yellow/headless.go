package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-yellow/yellow/timing"
	"github.com/valerio/go-yellow/yellow/video"
)

// frameBudget stops a headless run after max frames.
type frameBudget struct {
	timing.Limiter
	frames, max int
	done        func()
}

func (b *frameBudget) Wait() {
	b.Limiter.Wait()
	b.frames++
	if b.frames%600 == 0 {
		slog.Info("Frame progress", "completed", b.frames, "total", b.max)
	}
	if b.frames == b.max {
		b.done()
	}
}

// shadeChars go from dark to light.
var shadeChars = []rune{'█', '▓', '▒', '░'}

// writeSnapshot writes an RGB frame as one character per pixel, by luminance.
func writeSnapshot(path string, frame []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# Frame snapshot\n")
	fmt.Fprintf(w, "# Resolution: %dx%d pixels\n", video.FramebufferWidth, video.FramebufferHeight)
	fmt.Fprintf(w, "# Legend: █=black ▓=dark ▒=light ░=white\n")
	for y := range video.FramebufferHeight {
		for x := range video.FramebufferWidth {
			w.WriteRune(shadeChars[shadeOf(frame, x, y)])
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func shadeOf(frame []byte, x, y int) int {
	i := (y*video.FramebufferWidth + x) * video.BytesPerPixel
	lum := (299*int(frame[i]) + 587*int(frame[i+1]) + 114*int(frame[i+2])) / 1000
	return min(lum*len(shadeChars)/256, len(shadeChars)-1)
}
