package audio

import (
	"github.com/valerio/go-yellow/yellow/addr"
	"github.com/valerio/go-yellow/yellow/bit"
)

const (
	// cyclesPerStep is one frame sequencer tick: 4194304 Hz / 512 Hz.
	cyclesPerStep = 8192
	cpuFrequency  = 4194304

	// DefaultSampleRate is used when a player does not specify one.
	DefaultSampleRate = 44100

	// amplitude scales a mixed value (at most 4 channels x 15 x volume 8) into int16.
	amplitude = 64
)

// readMasks are ORed into register reads; unused and write-only bits read as 1.
// Reference: https://gbdev.io/pandocs/Audio_Registers.html
var readMasks = [0x17]uint8{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // unused, NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // unused, NR41-NR44
	0x00, 0x00, 0x70, // NR50-NR52
}

// APU is the register level sound unit mapped at 0xFF10-0xFF3F. It renders
// interleaved stereo samples at the configured rate as it is ticked.
type APU struct {
	powered bool
	regs    [0x17]uint8

	ch1   square
	ch2   square
	ch3   wave
	ch4   noise
	muted [4]bool

	seqStep   int
	seqCycles int

	sampleRate int
	sampleAcc  int
	samples    []int16
	spare      []int16
}

// New creates a powered APU producing samples at sampleRate, or
// DefaultSampleRate when sampleRate is not positive.
func New(sampleRate int) *APU {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	a := &APU{
		sampleRate: sampleRate,
		samples:    make([]int16, 0, sampleRate/30),
	}
	a.ch1.hasSweep = true
	a.powerOn()
	return a
}

func (a *APU) powerOn() {
	a.powered = true
	a.seqStep = 0
	a.regs[addr.NR50-addr.AudioStart] = 0x77
	a.regs[addr.NR51-addr.AudioStart] = 0xF3
}

func (a *APU) powerOff() {
	a.powered = false
	ram := a.ch3.ram
	a.regs = [0x17]uint8{}
	a.ch1 = square{hasSweep: true}
	a.ch2 = square{}
	a.ch3 = wave{ram: ram}
	a.ch4 = noise{}
}

func (a *APU) SampleRate() int { return a.sampleRate }

// Mute silences channel (1-4) in the mix without affecting its state.
func (a *APU) Mute(channel int, muted bool) {
	if channel >= 1 && channel <= 4 {
		a.muted[channel-1] = muted
	}
}

// Tick advances the channels and frame sequencer and renders the samples
// that fall within cycles.
func (a *APU) Tick(cycles int) {
	if a.powered {
		a.seqCycles += cycles
		for a.seqCycles >= cyclesPerStep {
			a.seqCycles -= cyclesPerStep
			a.stepSequencer()
		}
		if a.ch1.enabled {
			a.ch1.tick(cycles)
		}
		if a.ch2.enabled {
			a.ch2.tick(cycles)
		}
		if a.ch3.enabled {
			a.ch3.tick(cycles)
		}
		if a.ch4.enabled {
			a.ch4.tick(cycles)
		}
	}

	a.sampleAcc += cycles * a.sampleRate
	for a.sampleAcc >= cpuFrequency {
		a.sampleAcc -= cpuFrequency
		left, right := a.mix()
		a.samples = append(a.samples, left, right)
	}
}

// stepSequencer runs one 512 Hz step:
//
//	Step   Length  Sweep  Envelope
//	0      Clock   -      -
//	2      Clock   Clock  -
//	4      Clock   -      -
//	6      Clock   Clock  -
//	7      -       -      Clock
func (a *APU) stepSequencer() {
	switch a.seqStep {
	case 0, 4:
		a.clockLengths()
	case 2, 6:
		a.clockLengths()
		a.ch1.clockSweep()
	case 7:
		a.ch1.env.clock()
		a.ch2.env.clock()
		a.ch4.env.clock()
	}
	a.seqStep = (a.seqStep + 1) & 7
}

func (a *APU) clockLengths() {
	if a.ch1.length.clock() {
		a.ch1.enabled = false
	}
	if a.ch2.length.clock() {
		a.ch2.enabled = false
	}
	if a.ch3.length.clock() {
		a.ch3.enabled = false
	}
	if a.ch4.length.clock() {
		a.ch4.enabled = false
	}
}

// mix pans each channel per NR51 and applies the NR50 master volume.
func (a *APU) mix() (int16, int16) {
	if !a.powered {
		return 0, 0
	}
	outputs := [4]uint8{a.ch1.output(), a.ch2.output(), a.ch3.output(), a.ch4.output()}
	dacs := [4]bool{a.ch1.env.dacOn(), a.ch2.env.dacOn(), a.ch3.dac, a.ch4.env.dacOn()}
	nr51 := a.regs[addr.NR51-addr.AudioStart]
	nr50 := a.regs[addr.NR50-addr.AudioStart]

	var left, right int
	for i, v := range outputs {
		if a.muted[i] || !dacs[i] {
			continue
		}
		// centre the 0-15 digital value around zero
		analog := int(v)*2 - 15
		if bit.IsSet(uint8(i+4), nr51) {
			left += analog
		}
		if bit.IsSet(uint8(i), nr51) {
			right += analog
		}
	}
	left *= int(nr50>>4&0x07) + 1
	right *= int(nr50&0x07) + 1
	return int16(left * amplitude), int16(right * amplitude)
}

// Drain returns the samples rendered since the previous call, interleaved
// left/right. The slice is only valid until the next Drain.
func (a *APU) Drain() []int16 {
	out := a.samples
	a.samples = a.spare[:0]
	a.spare = out
	return out
}

func (a *APU) Read(address uint16) uint8 {
	switch {
	case address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd:
		return a.ch3.ram[address-addr.WaveRAMStart]
	case address > addr.NR52:
		return 0xFF
	case address == addr.NR52:
		status := readMasks[address-addr.AudioStart]
		if a.powered {
			status |= 0x80
		}
		for i, on := range [4]bool{a.ch1.enabled, a.ch2.enabled, a.ch3.enabled, a.ch4.enabled} {
			if on {
				status |= 1 << i
			}
		}
		return status
	}
	i := address - addr.AudioStart
	return a.regs[i] | readMasks[i]
}

func (a *APU) Write(address uint16, value uint8) {
	switch {
	case address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd:
		a.ch3.ram[address-addr.WaveRAMStart] = value
		return
	case address > addr.NR52:
		return
	case address == addr.NR52:
		on := bit.IsSet(7, value)
		if on && !a.powered {
			a.powerOn()
		} else if !on && a.powered {
			a.powerOff()
		}
		return
	case !a.powered:
		return
	}

	a.regs[address-addr.AudioStart] = value
	switch address {
	case addr.NR10:
		a.ch1.sweepPeriod = value >> 4 & 0x07
		a.ch1.sweepNegate = bit.IsSet(3, value)
		a.ch1.sweepShift = value & 0x07
	case addr.NR11:
		a.ch1.duty = value >> 6
		a.ch1.length.remaining = 64 - int(value&0x3F)
	case addr.NR12:
		a.ch1.env.write(value)
		if !a.ch1.env.dacOn() {
			a.ch1.enabled = false
		}
	case addr.NR13:
		a.ch1.freq = a.ch1.freq&0x700 | uint16(value)
	case addr.NR14:
		a.ch1.freq = a.ch1.freq&0xFF | uint16(value&0x07)<<8
		a.ch1.length.enabled = bit.IsSet(6, value)
		if bit.IsSet(7, value) {
			a.ch1.trigger()
		}
	case addr.NR21:
		a.ch2.duty = value >> 6
		a.ch2.length.remaining = 64 - int(value&0x3F)
	case addr.NR22:
		a.ch2.env.write(value)
		if !a.ch2.env.dacOn() {
			a.ch2.enabled = false
		}
	case addr.NR23:
		a.ch2.freq = a.ch2.freq&0x700 | uint16(value)
	case addr.NR24:
		a.ch2.freq = a.ch2.freq&0xFF | uint16(value&0x07)<<8
		a.ch2.length.enabled = bit.IsSet(6, value)
		if bit.IsSet(7, value) {
			a.ch2.trigger()
		}
	case addr.NR30:
		a.ch3.dac = bit.IsSet(7, value)
		if !a.ch3.dac {
			a.ch3.enabled = false
		}
	case addr.NR31:
		a.ch3.length.remaining = 256 - int(value)
	case addr.NR32:
		a.ch3.level = value >> 5 & 0x03
	case addr.NR33:
		a.ch3.freq = a.ch3.freq&0x700 | uint16(value)
	case addr.NR34:
		a.ch3.freq = a.ch3.freq&0xFF | uint16(value&0x07)<<8
		a.ch3.length.enabled = bit.IsSet(6, value)
		if bit.IsSet(7, value) {
			a.ch3.trigger()
		}
	case addr.NR41:
		a.ch4.length.remaining = 64 - int(value&0x3F)
	case addr.NR42:
		a.ch4.env.write(value)
		if !a.ch4.env.dacOn() {
			a.ch4.enabled = false
		}
	case addr.NR43:
		a.ch4.shift = value >> 4
		a.ch4.narrow = bit.IsSet(3, value)
		a.ch4.divisor = value & 0x07
	case addr.NR44:
		a.ch4.length.enabled = bit.IsSet(6, value)
		if bit.IsSet(7, value) {
			a.ch4.trigger()
		}
	}
}
