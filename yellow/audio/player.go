package audio

// Player consumes interleaved 16 bit stereo samples, once per emulated frame.
type Player interface {
	SampleRate() int
	Play(samples []int16) error
	Close() error
}

// NullPlayer discards samples. It counts what it was given, which tests use
// to check that audio sync ran.
type NullPlayer struct {
	Rate    int
	Frames  int
	Samples int
}

func (p *NullPlayer) SampleRate() int {
	if p.Rate <= 0 {
		return DefaultSampleRate
	}
	return p.Rate
}

func (p *NullPlayer) Play(samples []int16) error {
	p.Frames++
	p.Samples += len(samples)
	return nil
}

func (p *NullPlayer) Close() error { return nil }
