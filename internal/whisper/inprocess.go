package whisper

import (
	"errors"

	"go.uber.org/zap"
)

// ErrInProcessUnavailable is returned by the in-process engine in binaries
// built without the whisper_cpp tag.
var ErrInProcessUnavailable = errors.New("in-process whisper engine not compiled in; rebuild with -tags whisper_cpp or use --engine bundled")

// InProcessEngine links whisper.cpp through its Go bindings. The model is
// loaded per call and released before Transcribe returns.
type InProcessEngine struct {
	Logger *zap.Logger
}

func NewInProcessEngine(logger *zap.Logger) *InProcessEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InProcessEngine{Logger: logger}
}
