//go:build !whisper_cpp

package whisper

import "context"

const InProcessAvailable = false

func (e *InProcessEngine) Transcribe(_ context.Context, req Request) (Transcript, error) {
	if err := req.validate(); err != nil {
		return Transcript{}, err
	}
	return Transcript{}, ErrInProcessUnavailable
}
