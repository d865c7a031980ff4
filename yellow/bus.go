package yellow

import (
	"github.com/valerio/go-yellow/yellow/memory"
	"github.com/valerio/go-yellow/yellow/video"
)

// bus connects the CPU to memory and clocks the peripherals. The sound unit
// and the timer are advanced by the MMU, the GPU is advanced here so that a
// finished frame can be handed to the frame sink.
type bus struct {
	*memory.MMU
	gpu     *video.GPU
	onFrame func()
}

func (b *bus) Tick(cycles int) {
	b.MMU.Tick(cycles)
	if b.gpu.Tick(cycles) {
		b.onFrame()
	}
}
