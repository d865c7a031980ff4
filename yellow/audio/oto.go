//go:build !headless

package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// maxQueuedBytes bounds latency: roughly a quarter second at 44.1 kHz stereo.
const maxQueuedBytes = 44100

// OtoPlayer plays samples on the host audio device.
type OtoPlayer struct {
	ctx    *oto.Context
	player *oto.Player
	rate   int

	mu    sync.Mutex
	queue []byte
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	p := &OtoPlayer{ctx: ctx, rate: sampleRate}
	p.player = ctx.NewPlayer(p)
	p.player.Play()
	return p, nil
}

func (p *OtoPlayer) SampleRate() int { return p.rate }

// Play queues samples. When the device falls behind, the oldest audio is dropped.
func (p *OtoPlayer) Play(samples []int16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range samples {
		p.queue = append(p.queue, byte(s), byte(uint16(s)>>8))
	}
	if over := len(p.queue) - maxQueuedBytes; over > 0 {
		// keep whole stereo frames
		over = (over + 3) &^ 3
		p.queue = p.queue[min(over, len(p.queue)):]
	}
	return nil
}

// Read is called by oto on its own goroutine. It pads with silence when the
// queue runs dry.
func (p *OtoPlayer) Read(buf []byte) (int, error) {
	p.mu.Lock()
	n := copy(buf, p.queue)
	p.queue = p.queue[n:]
	p.mu.Unlock()

	clear(buf[n:])
	return len(buf), nil
}

func (p *OtoPlayer) Close() error {
	return p.player.Close()
}
