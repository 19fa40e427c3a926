package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fmueller/voxscribe/internal/config"
	"github.com/fmueller/voxscribe/internal/download"
	"github.com/fmueller/voxscribe/internal/logging"
	"github.com/fmueller/voxscribe/internal/platform"
	"github.com/fmueller/voxscribe/internal/version"
	"github.com/fmueller/voxscribe/internal/whisper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const programName = "voxscribe"

type appState struct {
	settings config.Settings
	logger   *zap.Logger

	engineFn   func() (whisper.Engine, error)
	downloadFn func(ctx context.Context, opts download.Options) error
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&appState{})
}

func newRootCmd(app *appState) *cobra.Command {
	if app.engineFn == nil {
		app.engineFn = app.newEngine
	}
	if app.downloadFn == nil {
		app.downloadFn = download.DownloadFile
	}

	cmd := &cobra.Command{
		Use:   programName + " <audio-file> [language]",
		Short: "Transcribe an audio file with the Whisper tiny model and print JSON",
		Long: "Transcribe an audio file with the Whisper tiny model.\n\n" +
			"Prints one JSON line: {\"text\": ..., \"language\": ..., \"detected_language\": ...}.\n" +
			"Without a language code the spoken language is detected.\n\n" +
			"An audio file named like a subcommand (setup, version, help) must be given\n" +
			"with a path, for example ./setup.",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.initialize(cmd)
		},
		RunE: app.runTranscribe,
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (a *appState) initialize(cmd *cobra.Command) error {
	v, err := config.New(cmd.Flags())
	if err != nil {
		return err
	}
	settings, err := config.Load(v)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Verbose: settings.Verbose, JSON: settings.LogJSON})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	a.settings = settings
	a.logger = logger
	return nil
}

func (a *appState) newEngine() (whisper.Engine, error) {
	switch a.settings.Engine {
	case config.EngineInProcess:
		return whisper.NewInProcessEngine(a.log()), nil
	default:
		return whisper.NewBundledEngine(a.settings.WhisperPath, a.log())
	}
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.settings.ModelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.settings.NoProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
