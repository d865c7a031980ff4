package yellow

import (
	"github.com/valerio/go-yellow/yellow/cpu"
	"github.com/valerio/go-yellow/yellow/keypad"
	"github.com/valerio/go-yellow/yellow/timing"
	"github.com/valerio/go-yellow/yellow/video"
)

// Routine is a native replacement for a subroutine of the binary. It runs with
// native authority and may use the rest of the Session API.
type Routine func(s *Session)

// Register installs r at bank:address. Bank is ignored below 0x4000.
func (s *Session) Register(bank int, address uint16, r Routine) {
	s.cpu.Hook(cpu.Location{Bank: bank, Address: address}, func() { r(s) })
}

// RunNative runs r with native authority outside of any hook, for example to
// drive start-up code before the binary's main loop.
func (s *Session) RunNative(r Routine) {
	s.cpu.RunNative(func() { r(s) })
}

// Call runs the binary routine at address and returns when it returns.
func (s *Session) Call(address uint16) { s.cpu.Call(address) }

// Jump hands control to the binary at address. The calling routine must
// return right after.
func (s *Session) Jump(address uint16) { s.cpu.Jump(address) }

func (s *Session) StackPush(value uint16) { s.cpu.StackPush(value) }
func (s *Session) StackPop() uint16       { return s.cpu.StackPop() }

func (s *Session) ReadByte(address uint16) uint8 { return s.mmu.Read(address) }

func (s *Session) WriteByte(address uint16, value uint8) { s.mmu.Write(address, value) }

// ReplaceRAM overwrites the battery-backed cartridge RAM with a save image.
func (s *Session) ReplaceRAM(image []byte) error { return s.mmu.ReplaceRAM(image) }

// RAMImage returns a copy of the battery-backed cartridge RAM.
func (s *Session) RAMImage() []byte { return s.mmu.RAMImage() }

func (s *Session) PushLayer() video.LayerHandle { return s.layers.Push() }

// MutLayer returns the layer for h, or nil once it has been popped.
func (s *Session) MutLayer(h video.LayerHandle) *video.Layer { return s.layers.Layer(h) }

// PopLayer removes h, which must be the top layer.
func (s *Session) PopLayer(h video.LayerHandle) error { return s.layers.Pop(h) }

// UpdateScreen composes the layers over the last rendered frame and delivers
// the result to the frame sink.
func (s *Session) UpdateScreen() { s.emitFrame() }

func (s *Session) emitFrame() {
	frame := video.Compose(s.gpu.FrameBuffer(), s.layers.Layers(), s.mmu, s.palette, nil)

	select {
	case s.frames <- frame:
		return
	default:
	}
	// drop the stale frame nobody picked up
	select {
	case <-s.frames:
	default:
	}
	select {
	case s.frames <- frame:
	default:
		s.logger.Warn("frame dropped, sink is full")
	}
}

// KeypadWait blocks until the host presses a key and returns it. Releases are
// applied to the joypad and skipped. While waiting, whole frames run in the
// background: peripherals advance and the binary's interrupt handlers are
// serviced, so music and timers keep going.
//
// Escape, a closed key channel or the end of Run's context all return Escape
// and mark the session as ending.
func (s *Session) KeypadWait() keypad.Event {
	if a := s.cpu.Authority(); a.Mode != cpu.NativeControl {
		panic(&cpu.AuthorityError{Op: "keypad wait", Authority: a})
	}

	s.flushDeferred()
	escape := keypad.Press(keypad.Escape)
	for {
		if s.ending || s.keysClosed || s.ctx.Err() != nil {
			s.ending = true
			return escape
		}
		select {
		case e, ok := <-s.keys:
			if !ok {
				s.keysClosed = true
				continue
			}
			if e.Key == keypad.Escape {
				if e.Released {
					continue
				}
				s.ending = true
				return e
			}
			s.applyKey(e)
			if e.Released {
				continue
			}
			return e
		default:
			s.backgroundFrame()
		}
	}
}

// backgroundFrame emulates one frame with the binary suspended.
func (s *Session) backgroundFrame() {
	for spent := 0; spent < timing.CyclesPerFrame; {
		n := s.cpu.ServiceInterrupts()
		if n == 0 {
			s.bus.Tick(idleCycles)
			n = idleCycles
		}
		spent += n
	}
	s.endFrame()
}
