package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WhisperSampleRate is the only rate whisper models accept.
const WhisperSampleRate = 16000

const wavFormatPCM = 1

var (
	ErrUnsupportedWAV = errors.New("unsupported wav format")
	ErrInvalidWAV     = errors.New("invalid wav file")
)

type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int
}

// LoadForWhisper decodes an integer PCM WAV file into mono float32 samples in
// [-1, 1] resampled to WhisperSampleRate.
func LoadForWhisper(path string) ([]float32, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, Info{}, ErrInvalidWAV
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, Info{}, fmt.Errorf("%w: audio format %d (only integer PCM is supported)", ErrUnsupportedWAV, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, Info{}, fmt.Errorf("decode wav: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return nil, Info{}, ErrInvalidWAV
	}

	info := Info{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   buf.SourceBitDepth,
	}
	if info.SampleRate <= 0 {
		info.SampleRate = int(dec.SampleRate)
	}
	if info.Channels <= 0 {
		info.Channels = int(dec.NumChans)
	}
	if info.BitDepth <= 0 {
		info.BitDepth = int(dec.BitDepth)
	}
	if info.SampleRate <= 0 || info.Channels <= 0 {
		return nil, Info{}, ErrInvalidWAV
	}
	if info.BitDepth != 8 && info.BitDepth != 16 && info.BitDepth != 24 && info.BitDepth != 32 {
		return nil, Info{}, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedWAV, info.BitDepth)
	}

	mono := downmix(normalize(buf), info.Channels)
	info.Frames = len(mono)

	return ResampleLinear(mono, info.SampleRate, WhisperSampleRate), info, nil
}

func normalize(buf *goaudio.IntBuffer) []float32 {
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}

	// 8-bit WAV is unsigned with a 128 midpoint.
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	scale := float32(int64(1) << (bitDepth - 1))
	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(v-offset) / scale
	}
	return out
}

func downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	out := make([]float32, frames)
	for i := range frames {
		var sum float32
		for c := range channels {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// ResampleLinear converts samples from inRate to outRate with linear
// interpolation. The input slice is returned untouched when no conversion is
// needed.
func ResampleLinear(samples []float32, inRate, outRate int) []float32 {
	if inRate <= 0 || outRate <= 0 || inRate == outRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(outRate) / float64(inRate)
	outLen := max(int(float64(len(samples))*ratio), 1)
	out := make([]float32, outLen)
	for i := range out {
		srcPos := float64(i) / ratio
		i0 := int(srcPos)
		if i0 >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(srcPos - float64(i0))
		out[i] = samples[i0] + (samples[i0+1]-samples[i0])*frac
	}
	return out
}
