package audio

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func makeWAVForTest(samples []int16, sampleRate, channels int, format uint16) []byte {
	const bytesPerSample = 2
	dataSize := len(samples) * bytesPerSample
	out := make([]byte, 44+dataSize)

	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], format)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*channels*bytesPerSample))
	binary.LittleEndian.PutUint16(out[32:], uint16(channels*bytesPerSample))
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))

	off := 44
	for _, s := range samples {
		binary.LittleEndian.PutUint16(out[off:], uint16(s))
		off += 2
	}
	return out
}

func writeWAV(t *testing.T, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestLoadForWhisperMono16k(t *testing.T) {
	t.Parallel()

	path := writeWAV(t, makeWAVForTest([]int16{0, 16384, -16384, 32767}, 16000, 1, wavFormatPCM))

	samples, info, err := LoadForWhisper(path)
	require.NoError(t, err)
	require.Equal(t, Info{SampleRate: 16000, Channels: 1, BitDepth: 16, Frames: 4}, info)
	require.Len(t, samples, 4)
	require.InDelta(t, 0.0, samples[0], 1e-6)
	require.InDelta(t, 0.5, samples[1], 1e-4)
	require.InDelta(t, -0.5, samples[2], 1e-4)
	require.InDelta(t, 1.0, samples[3], 1e-4)
}

func TestLoadForWhisperDownmixesAndResamples(t *testing.T) {
	t.Parallel()

	stereo := make([]int16, 0, 16)
	for range 8 {
		stereo = append(stereo, 16384, 0)
	}
	path := writeWAV(t, makeWAVForTest(stereo, 8000, 2, wavFormatPCM))

	samples, info, err := LoadForWhisper(path)
	require.NoError(t, err)
	require.Equal(t, 2, info.Channels)
	require.Equal(t, 8, info.Frames)
	require.Len(t, samples, 16)
	for _, s := range samples {
		require.InDelta(t, 0.25, s, 1e-4)
	}
}

func TestLoadForWhisperRejectsNonWAV(t *testing.T) {
	t.Parallel()

	path := writeWAV(t, []byte("ID3\x03\x00 definitely an mp3"))

	_, _, err := LoadForWhisper(path)
	require.True(t, errors.Is(err, ErrInvalidWAV), "got %v", err)
}

func TestLoadForWhisperRejectsFloatWAV(t *testing.T) {
	t.Parallel()

	path := writeWAV(t, makeWAVForTest([]int16{1, 2}, 16000, 1, 3))

	_, _, err := LoadForWhisper(path)
	require.True(t, errors.Is(err, ErrUnsupportedWAV), "got %v", err)
}

func TestLoadForWhisperMissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := LoadForWhisper(filepath.Join(t.TempDir(), "missing.wav"))
	require.ErrorContains(t, err, "open wav")
}

func TestResampleLinear(t *testing.T) {
	t.Parallel()

	same := []float32{0.1, 0.2}
	require.Equal(t, same, ResampleLinear(same, 16000, 16000))

	up := ResampleLinear([]float32{0, 1}, 8000, 16000)
	require.Len(t, up, 4)
	require.InDelta(t, 0.5, up[1], 1e-6)
	require.InDelta(t, 1.0, up[3], 1e-6)

	down := ResampleLinear([]float32{0, 0, 1, 1}, 32000, 16000)
	require.Equal(t, []float32{0, 1}, down)
}
