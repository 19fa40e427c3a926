package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fmueller/voxscribe/internal/download"
	"github.com/fmueller/voxscribe/internal/whisper"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu         sync.Mutex
	transcript whisper.Transcript
	err        error
	requests   []whisper.Request
}

func (f *fakeEngine) Transcribe(_ context.Context, req whisper.Request) (whisper.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.transcript, f.err
}

func (f *fakeEngine) calls() []whisper.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]whisper.Request(nil), f.requests...)
}

type harness struct {
	engine    *fakeEngine
	modelDir  string
	downloads []download.Options
}

// newHarness prepares a model directory that already holds the model so no
// download is attempted unless a test removes it.
func newHarness(t *testing.T, transcript whisper.Transcript) *harness {
	t.Helper()

	modelDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "ggml-tiny.bin"), []byte("model"), 0o644))
	return &harness{engine: &fakeEngine{transcript: transcript}, modelDir: modelDir}
}

func (h *harness) run(t *testing.T, args ...string) (stdout string, stderr string, err error) {
	t.Helper()

	app := &appState{
		engineFn: func() (whisper.Engine, error) { return h.engine, nil },
		downloadFn: func(_ context.Context, opts download.Options) error {
			h.downloads = append(h.downloads, opts)
			return os.WriteFile(opts.Destination, []byte("downloaded"), 0o644)
		},
	}

	cmd := newRootCmd(app)
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(append([]string{"--model-dir", h.modelDir, "--no-progress"}, args...))

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writeAudioFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "speech.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF....WAVE"), 0o644))
	return path
}

func runCommand(t *testing.T, args []string) (stdout string, stderr string, err error) {
	t.Helper()

	cmd := NewRootCmd()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}
