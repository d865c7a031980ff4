package audio

// Reference: https://gbdev.io/pandocs/Audio_details.html

var dutyPatterns = [4]uint8{
	0b00000001, // 12.5%
	0b00000011, // 25%
	0b00001111, // 50%
	0b11111100, // 75%
}

var noiseDivisors = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

// lengthCounter silences a channel after a programmed number of 256 Hz ticks.
type lengthCounter struct {
	remaining int
	enabled   bool
}

// clock reports whether the channel should be disabled.
func (l *lengthCounter) clock() bool {
	if !l.enabled || l.remaining == 0 {
		return false
	}
	l.remaining--
	return l.remaining == 0
}

func (l *lengthCounter) trigger(full int) {
	if l.remaining == 0 {
		l.remaining = full
	}
}

type envelope struct {
	initial uint8
	up      bool
	period  uint8
	volume  uint8
	timer   uint8
}

func (e *envelope) write(value uint8) {
	e.initial = value >> 4
	e.up = value&0x08 != 0
	e.period = value & 0x07
}

// dacOn is true unless the upper five bits of NRx2 are all zero.
func (e *envelope) dacOn() bool {
	return e.initial != 0 || e.up
}

func (e *envelope) trigger() {
	e.volume = e.initial
	e.timer = e.period
}

func (e *envelope) clock() {
	if e.period == 0 {
		return
	}
	if e.timer > 0 {
		e.timer--
	}
	if e.timer != 0 {
		return
	}
	e.timer = e.period
	switch {
	case e.up && e.volume < 15:
		e.volume++
	case !e.up && e.volume > 0:
		e.volume--
	}
}

// square is channels 1 and 2. Only channel 1 uses the sweep unit.
type square struct {
	enabled bool
	length  lengthCounter
	env     envelope
	duty    uint8
	freq    uint16
	timer   int
	step    uint8

	hasSweep     bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepTimer   uint8
	sweepShadow  uint16
	sweepEnabled bool
}

func (s *square) period() int { return (2048 - int(s.freq)) * 4 }

func (s *square) tick(cycles int) {
	s.timer -= cycles
	for s.timer <= 0 {
		s.timer += s.period()
		s.step = (s.step + 1) & 7
	}
}

func (s *square) output() uint8 {
	if !s.enabled || !s.env.dacOn() {
		return 0
	}
	if dutyPatterns[s.duty]>>(7-s.step)&1 == 0 {
		return 0
	}
	return s.env.volume
}

func (s *square) trigger() {
	s.enabled = s.env.dacOn()
	s.length.trigger(64)
	s.timer = s.period()
	s.env.trigger()

	if s.hasSweep {
		s.sweepShadow = s.freq
		s.sweepTimer = s.sweepPeriod
		if s.sweepTimer == 0 {
			s.sweepTimer = 8
		}
		s.sweepEnabled = s.sweepPeriod != 0 || s.sweepShift != 0
		if s.sweepShift != 0 {
			s.nextSweepFreq()
		}
	}
}

// nextSweepFreq computes the swept frequency and disables the channel on overflow.
func (s *square) nextSweepFreq() uint16 {
	delta := s.sweepShadow >> s.sweepShift
	next := s.sweepShadow + delta
	if s.sweepNegate {
		next = s.sweepShadow - delta
	}
	if next > 2047 {
		s.enabled = false
	}
	return next
}

func (s *square) clockSweep() {
	if s.sweepTimer > 0 {
		s.sweepTimer--
	}
	if s.sweepTimer != 0 {
		return
	}
	s.sweepTimer = s.sweepPeriod
	if s.sweepTimer == 0 {
		s.sweepTimer = 8
	}
	if !s.sweepEnabled || s.sweepPeriod == 0 {
		return
	}
	next := s.nextSweepFreq()
	if next <= 2047 && s.sweepShift != 0 {
		s.sweepShadow = next
		s.freq = next
		s.nextSweepFreq()
	}
}

// wave is channel 3, playing 32 4-bit samples from wave RAM.
type wave struct {
	enabled bool
	dac     bool
	length  lengthCounter
	level   uint8
	freq    uint16
	timer   int
	pos     uint8
	ram     [16]uint8
}

var waveShift = [4]uint8{4, 0, 1, 2}

func (w *wave) period() int { return (2048 - int(w.freq)) * 2 }

func (w *wave) tick(cycles int) {
	w.timer -= cycles
	for w.timer <= 0 {
		w.timer += w.period()
		w.pos = (w.pos + 1) & 31
	}
}

func (w *wave) output() uint8 {
	if !w.enabled || !w.dac {
		return 0
	}
	sample := w.ram[w.pos/2]
	if w.pos&1 == 0 {
		sample >>= 4
	}
	return (sample & 0x0F) >> waveShift[w.level]
}

func (w *wave) trigger() {
	w.enabled = w.dac
	w.length.trigger(256)
	w.timer = w.period()
	w.pos = 0
}

// noise is channel 4, a 15 or 7 bit LFSR.
type noise struct {
	enabled bool
	length  lengthCounter
	env     envelope
	shift   uint8
	narrow  bool
	divisor uint8
	timer   int
	lfsr    uint16
}

func (n *noise) period() int { return noiseDivisors[n.divisor] << n.shift }

func (n *noise) tick(cycles int) {
	n.timer -= cycles
	for n.timer <= 0 {
		n.timer += n.period()
		feedback := (n.lfsr ^ n.lfsr>>1) & 1
		n.lfsr = n.lfsr>>1 | feedback<<14
		if n.narrow {
			n.lfsr = n.lfsr&^(1<<6) | feedback<<6
		}
	}
}

func (n *noise) output() uint8 {
	if !n.enabled || !n.env.dacOn() || n.lfsr&1 != 0 {
		return 0
	}
	return n.env.volume
}

func (n *noise) trigger() {
	n.enabled = n.env.dacOn()
	n.length.trigger(64)
	n.timer = n.period()
	n.lfsr = 0x7FFF
	n.env.trigger()
}
