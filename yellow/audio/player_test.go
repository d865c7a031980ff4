package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullPlayer(t *testing.T) {
	p := &NullPlayer{}
	assert.Equal(t, DefaultSampleRate, p.SampleRate())
	require.NoError(t, p.Play(make([]int16, 10)))
	require.NoError(t, p.Play(nil))
	assert.Equal(t, 2, p.Frames)
	assert.Equal(t, 10, p.Samples)
}

func TestWAVRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	rec, err := CreateWAVRecorder(path, 22050)
	require.NoError(t, err)

	samples := []int16{0, 0, 1000, -1000, 32767, -32768}
	require.NoError(t, rec.Play(samples))
	require.NoError(t, rec.Play(samples[:2]))
	require.NoError(t, rec.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, uint32(22050), dec.SampleRate)
	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint16(16), dec.BitDepth)
	assert.Equal(t, []int{0, 0, 1000, -1000, 32767, -32768, 0, 0}, buf.Data)
}
