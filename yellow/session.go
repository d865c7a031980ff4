// Package yellow runs the game binary on an emulated handheld and lets native
// Go routines take over selected subroutines. A Session owns one machine.
package yellow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/audio"
	"github.com/valerio/go-yellow/yellow/cpu"
	"github.com/valerio/go-yellow/yellow/input"
	"github.com/valerio/go-yellow/yellow/keypad"
	"github.com/valerio/go-yellow/yellow/memory"
	"github.com/valerio/go-yellow/yellow/serial"
	"github.com/valerio/go-yellow/yellow/timing"
	"github.com/valerio/go-yellow/yellow/video"
)

// postBootDivider is the system counter value left behind by the boot ROM.
const postBootDivider = 0xABCC

// idleCycles is how far peripherals advance per step of a background frame
// when no interrupt is serviced.
const idleCycles = 4

type Session struct {
	cpu *cpu.CPU
	mmu *memory.MMU
	gpu *video.GPU
	apu *audio.APU
	bus *bus

	layers  video.LayerStack
	palette video.Palette

	player  audio.Player
	frames  chan []byte
	keys    <-chan keypad.Event
	limiter timing.Limiter
	release *input.AutoRelease
	logger  *slog.Logger

	ctx        context.Context
	deferred   *keypad.Event
	keysClosed bool
	ending     bool
	cycles     int
}

// New validates rom and builds a machine in its post-boot state, ready to
// execute the cartridge entry point.
func New(rom []byte, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	if err := memory.ValidateHeader(rom, opts.Header); err != nil {
		return nil, fmt.Errorf("validate rom: %w", err)
	}
	cart, err := memory.NewCartridge(rom)
	if err != nil {
		return nil, fmt.Errorf("load cartridge: %w", err)
	}

	s := &Session{
		mmu:     memory.NewWithCartridge(cart),
		apu:     audio.New(opts.Player.SampleRate()),
		palette: *opts.Palette,
		player:  opts.Player,
		frames:  opts.Frames,
		keys:    opts.Keys,
		limiter: opts.Limiter,
		release: input.NewAutoRelease(opts.AutoReleaseFrames),
		logger:  opts.Logger,
		ctx:     context.Background(),
	}

	irq := func() { s.mmu.RequestInterrupt(addr.SerialInterrupt) }
	if opts.Link != nil {
		s.mmu.AttachSerial(serial.NewBridge(opts.Link, irq, s.logger))
	} else {
		s.mmu.AttachSerial(serial.NewLogSink(irq, serial.WithLogger(s.logger)))
	}
	s.mmu.AttachSound(s.apu)
	for _, ch := range opts.Mute {
		s.apu.Mute(ch, true)
	}

	s.gpu = video.NewGPU(s.mmu)
	s.bus = &bus{MMU: s.mmu, gpu: s.gpu, onFrame: s.emitFrame}
	s.cpu = cpu.New(s.bus)
	s.mmu.SeedTimer(postBootDivider)

	s.logger.Info("Session created",
		"title", cart.Header.Title,
		"rom_bytes", len(rom),
		"sample_rate", s.apu.SampleRate())

	return s, nil
}

// CPU exposes the register file to native routines.
func (s *Session) CPU() *cpu.CPU { return s.cpu }

// Frames is the channel composed frames are delivered on.
func (s *Session) Frames() <-chan []byte { return s.frames }

// Ending reports whether the host asked the session to stop.
func (s *Session) Ending() bool { return s.ending }

// DoCycle advances the binary by one instruction, interrupt dispatch or
// native hook, and returns the cycles spent.
func (s *Session) DoCycle() int {
	return s.cpu.DoCycle()
}

// SyncAudio hands the samples generated since the last call to the player.
// Called once per emulated frame.
func (s *Session) SyncAudio() {
	samples := s.apu.Drain()
	if len(samples) == 0 {
		return
	}
	if err := s.player.Play(samples); err != nil {
		s.logger.Warn("audio player failed", "err", err)
	}
}

// Run executes the binary one frame at a time until the host sends Escape
// or ctx is cancelled. Fatal machine errors raised while running, including
// those from native routines, are returned.
func (s *Session) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fatalError(r)
			s.logger.Error("Session stopped", "err", err, "pc", fmt.Sprintf("0x%04X", s.cpu.GetPC()))
		}
	}()

	s.ctx = ctx
	defer func() { s.ctx = context.Background() }()

	s.limiter.Reset()
	for !s.ending {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.runFrame()
	}
	s.logger.Info("Session ended", "cycles", s.cpu.GetCycles())
	return nil
}

func (s *Session) runFrame() {
	s.pollKeys()
	for s.cycles < timing.CyclesPerFrame && !s.ending {
		n := s.cpu.DoCycle()
		if n == 0 {
			break
		}
		s.cycles += n
	}
	s.cycles -= timing.CyclesPerFrame
	if s.cycles < 0 {
		s.cycles = 0
	}
	s.endFrame()
}

// endFrame runs the bookkeeping shared by every emulated frame.
func (s *Session) endFrame() {
	s.SyncAudio()
	for _, e := range s.release.Tick() {
		s.applyKey(e)
	}
	s.limiter.Wait()
}

// pollKeys applies queued key events without blocking. A release of a key
// pressed in the same poll is held back to the next frame, otherwise the
// binary would never see the press.
func (s *Session) pollKeys() {
	s.flushDeferred()
	var pressed uint16
	for !s.keysClosed && !s.ending {
		select {
		case e, ok := <-s.keys:
			if !ok {
				s.keysClosed = true
				return
			}
			if e.Key == keypad.Escape {
				if !e.Released {
					s.ending = true
				}
				continue
			}
			mask := uint16(1) << e.Key
			if e.Released && pressed&mask != 0 {
				s.deferred = &e
				return
			}
			if !e.Released {
				pressed |= mask
			}
			s.applyKey(e)
		default:
			return
		}
	}
}

// flushDeferred applies a release held back by pollKeys.
func (s *Session) flushDeferred() {
	if s.deferred == nil {
		return
	}
	e := *s.deferred
	s.deferred = nil
	s.applyKey(e)
}

func (s *Session) applyKey(e keypad.Event) {
	b, ok := e.Key.Button()
	if !ok {
		return
	}
	if e.Released {
		s.mmu.Release(b)
	} else {
		s.mmu.Press(b)
	}
	s.release.Observe(e)
}

// fatalError turns a panic raised by the machine into an error. Anything that
// is not a machine fault is a bug and keeps unwinding.
func fatalError(r any) error {
	err, ok := r.(error)
	if !ok {
		panic(r)
	}
	var (
		illegal   *cpu.IllegalOpcodeError
		target    *cpu.TargetError
		imbalance *cpu.StackImbalanceError
		stack     *cpu.StackPointerError
		authority *cpu.AuthorityError
	)
	switch {
	case errors.As(err, &illegal), errors.As(err, &target), errors.As(err, &imbalance),
		errors.As(err, &stack), errors.As(err, &authority):
		return err
	}
	panic(r)
}
