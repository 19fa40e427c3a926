package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	fs := pflag.NewFlagSet("voxscribe", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func load(t *testing.T, args ...string) (Settings, error) {
	t.Helper()

	v, err := New(newFlagSet(t, args...))
	require.NoError(t, err)
	return Load(v)
}

func TestLoadDefaults(t *testing.T) {
	settings, err := load(t)
	require.NoError(t, err)
	require.Equal(t, Defaults(), settings)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("VOXSCRIBE_MODEL_DIR", "/srv/models")
	t.Setenv("VOXSCRIBE_AUTO_DOWNLOAD", "false")
	t.Setenv("VOXSCRIBE_ENGINE", "InProcess")
	t.Setenv("VOXSCRIBE_THREADS", "3")

	settings, err := load(t)
	require.NoError(t, err)
	require.Equal(t, "/srv/models", settings.ModelDir)
	require.False(t, settings.AutoDownload)
	require.Equal(t, EngineInProcess, settings.Engine)
	require.Equal(t, 3, settings.Threads)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("VOXSCRIBE_MODEL_DIR", "/from/env")
	t.Setenv("VOXSCRIBE_WHISPER_PATH", "/from/env/whisper-cli")

	settings, err := load(t, "--model-dir", "/from/flag", "--verbose")
	require.NoError(t, err)
	require.Equal(t, "/from/flag", settings.ModelDir)
	require.Equal(t, "/from/env/whisper-cli", settings.WhisperPath)
	require.True(t, settings.Verbose)
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	_, err := load(t, "--engine", "cloud")
	require.ErrorContains(t, err, `unknown engine "cloud"`)
}

func TestLoadRejectsNegativeThreads(t *testing.T) {
	_, err := load(t, "--threads", "-2")
	require.ErrorContains(t, err, "threads must not be negative")
}
