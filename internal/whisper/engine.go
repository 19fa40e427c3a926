package whisper

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// AutoLanguage asks the engine to detect the spoken language.
const AutoLanguage = "auto"

type Task string

const (
	TaskTranscribe Task = "transcribe"
	TaskTranslate  Task = "translate"
)

type Request struct {
	AudioPath string
	ModelPath string
	// Language is passed to the engine verbatim. Empty requests detection.
	Language string
	Task     Task
	// HalfPrecision allows reduced-precision GPU inference. When false the
	// engine is pinned to full-precision CPU inference.
	HalfPrecision bool
	Threads       int
}

type Segment struct {
	StartMS int64
	EndMS   int64
	Text    string
}

type Transcript struct {
	Text     string
	Language string
	Segments []Segment
}

type Engine interface {
	Transcribe(ctx context.Context, req Request) (Transcript, error)
}

func (r Request) validate() error {
	if strings.TrimSpace(r.AudioPath) == "" {
		return errors.New("audio path is required")
	}
	if strings.TrimSpace(r.ModelPath) == "" {
		return errors.New("model path is required")
	}
	switch r.Task {
	case "", TaskTranscribe, TaskTranslate:
		return nil
	default:
		return fmt.Errorf("unsupported task %q", r.Task)
	}
}

func (r Request) languageArg() string {
	if r.Language == "" {
		return AutoLanguage
	}
	return r.Language
}

func joinSegments(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	return strings.TrimSpace(b.String())
}
