package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fmueller/voxscribe/internal/download"
	"github.com/fmueller/voxscribe/internal/whisper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *appState) runTranscribe(cmd *cobra.Command, args []string) error {
	var hint string
	if len(args) > 1 {
		hint = args[1]
	}

	result, err := a.transcribe(cmd.Context(), args[0], hint)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), result)
}

// transcribe runs the fixed model over audioPath. An empty hint requests
// language detection; any other value goes to the engine untouched.
func (a *appState) transcribe(ctx context.Context, audioPath, hint string) (Result, error) {
	audioPath = filepath.Clean(audioPath)
	if _, err := os.Stat(audioPath); err != nil {
		return Result{}, fmt.Errorf("audio file not found: %w", err)
	}

	model, err := a.ensureModelAvailable(ctx)
	if err != nil {
		return Result{}, err
	}

	engine, err := a.engineFn()
	if err != nil {
		return Result{}, err
	}

	a.log().Info("transcribing...", zap.String("audio", audioPath), zap.String("model", model.Path), zap.String("language", hint), zap.String("engine", a.settings.Engine))
	stopSpinner := startSpinner(a.progressEnabled(), "Transcribing")
	started := time.Now()

	transcript, err := engine.Transcribe(ctx, whisper.Request{
		AudioPath:     audioPath,
		ModelPath:     model.Path,
		Language:      hint,
		Task:          whisper.TaskTranscribe,
		HalfPrecision: false,
		Threads:       a.settings.Threads,
	})
	stopSpinner()
	if err != nil {
		a.log().Debug("transcription failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return Result{}, err
	}
	a.log().Info("transcription finished", zap.Duration("elapsed", time.Since(started)), zap.Int("segments", len(transcript.Segments)))

	return newResult(transcript, hint)
}

func (a *appState) ensureModelAvailable(ctx context.Context) (whisper.ResolvedModel, error) {
	modelDir, err := a.modelStorageDir()
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	resolved, err := whisper.ResolveModel(whisper.DefaultModel, modelDir)
	if err != nil {
		return whisper.ResolvedModel{}, err
	}

	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !a.settings.AutoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf("model %q is missing at %s; run `%s setup` or use --auto-download=true", resolved.Name, resolved.Path, programName)
	}

	a.log().Info("model not found, downloading", zap.String("model", resolved.Name), zap.String("destination", resolved.Path))
	if err := a.downloadFn(ctx, a.downloadOptions(resolved)); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("download model %q: %w", resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}

func (a *appState) downloadOptions(model whisper.ResolvedModel) download.Options {
	return download.Options{
		URL:            model.URL,
		Destination:    model.Path,
		ExpectedSHA256: model.SHA256,
		NoProgress:     a.settings.NoProgress,
		Logger:         a.log(),
	}
}
