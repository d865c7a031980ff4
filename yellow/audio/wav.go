package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth = 16
	wavChannels = 2
	wavPCM      = 1
)

// WAVRecorder writes everything it plays to a 16 bit stereo PCM WAV file.
type WAVRecorder struct {
	enc    *wav.Encoder
	closer io.Closer
	rate   int
	buf    goaudio.IntBuffer
}

// NewWAVRecorder encodes to w. The header is finalised by Close, so w must
// support seeking.
func NewWAVRecorder(w io.WriteSeeker, sampleRate int) *WAVRecorder {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	r := &WAVRecorder{
		enc:  wav.NewEncoder(w, sampleRate, wavBitDepth, wavChannels, wavPCM),
		rate: sampleRate,
		buf: goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: wavChannels, SampleRate: sampleRate},
			SourceBitDepth: wavBitDepth,
		},
	}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// CreateWAVRecorder creates (or truncates) the file at path.
func CreateWAVRecorder(path string, sampleRate int) (*WAVRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav: %w", err)
	}
	return NewWAVRecorder(f, sampleRate), nil
}

func (r *WAVRecorder) SampleRate() int { return r.rate }

func (r *WAVRecorder) Play(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}
	r.buf.Data = r.buf.Data[:0]
	for _, s := range samples {
		r.buf.Data = append(r.buf.Data, int(s))
	}
	if err := r.enc.Write(&r.buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// Close writes the final header and closes the underlying file, if any.
func (r *WAVRecorder) Close() error {
	if err := r.enc.Close(); err != nil {
		return fmt.Errorf("finalise wav: %w", err)
	}
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
