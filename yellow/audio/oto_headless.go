//go:build headless

package audio

import "errors"

// ErrNoAudioDevice is returned by NewOtoPlayer in headless builds.
var ErrNoAudioDevice = errors.New("built without audio device support")

type OtoPlayer struct{}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return nil, ErrNoAudioDevice
}

func (p *OtoPlayer) SampleRate() int            { return DefaultSampleRate }
func (p *OtoPlayer) Play(samples []int16) error { return nil }
func (p *OtoPlayer) Close() error               { return nil }
