//go:build whisper_cpp

package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fmueller/voxscribe/internal/audio"
	whisperpkg "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"go.uber.org/zap"
)

const InProcessAvailable = true

func (e *InProcessEngine) Transcribe(ctx context.Context, req Request) (Transcript, error) {
	if err := req.validate(); err != nil {
		return Transcript{}, err
	}

	samples, info, err := audio.LoadForWhisper(req.AudioPath)
	if err != nil {
		return Transcript{}, err
	}
	e.Logger.Debug("decoded audio",
		zap.Int("sample_rate", info.SampleRate),
		zap.Int("channels", info.Channels),
		zap.Int("frames", info.Frames),
	)
	if req.HalfPrecision {
		e.Logger.Debug("half precision requested; GPU use follows the linked whisper.cpp build")
	}

	model, err := whisperpkg.New(req.ModelPath)
	if err != nil {
		return Transcript{}, fmt.Errorf("load model: %w", err)
	}
	defer model.Close()

	wctx, err := model.NewContext()
	if err != nil {
		return Transcript{}, fmt.Errorf("create context: %w", err)
	}
	if err := wctx.SetLanguage(req.languageArg()); err != nil {
		return Transcript{}, fmt.Errorf("set language %q: %w", req.languageArg(), err)
	}
	wctx.SetTranslate(req.Task == TaskTranslate)
	if req.Threads > 0 {
		wctx.SetThreads(uint(req.Threads))
	}

	// whisper.cpp exposes no cancellation hook; the context is checked before
	// the blocking call and once it returns.
	if err := ctx.Err(); err != nil {
		return Transcript{}, err
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Transcript{}, fmt.Errorf("process audio: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Transcript{}, err
	}

	var segments []Segment
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Transcript{}, fmt.Errorf("read segment: %w", err)
		}
		segments = append(segments, Segment{
			StartMS: seg.Start.Milliseconds(),
			EndMS:   seg.End.Milliseconds(),
			Text:    seg.Text,
		})
	}

	language := req.Language
	if language == "" {
		language = wctx.DetectedLanguage()
	}

	return Transcript{
		Text:     joinSegments(segments),
		Language: language,
		Segments: segments,
	}, nil
}
