// Package config resolves runtime settings from command-line flags and
// VOXSCRIBE_* environment variables. Flags win over the environment, which
// wins over built-in defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "VOXSCRIBE"

const (
	EngineBundled   = "bundled"
	EngineInProcess = "inprocess"
)

// Keys double as flag names; viper maps "model-dir" to VOXSCRIBE_MODEL_DIR.
const (
	KeyModelDir     = "model-dir"
	KeyAutoDownload = "auto-download"
	KeyEngine       = "engine"
	KeyWhisperPath  = "whisper-path"
	KeyThreads      = "threads"
	KeyVerbose      = "verbose"
	KeyLogJSON      = "log-json"
	KeyNoProgress   = "no-progress"
)

type Settings struct {
	ModelDir     string `mapstructure:"model-dir"`
	AutoDownload bool   `mapstructure:"auto-download"`
	Engine       string `mapstructure:"engine"`
	WhisperPath  string `mapstructure:"whisper-path"`
	Threads      int    `mapstructure:"threads"`
	Verbose      bool   `mapstructure:"verbose"`
	LogJSON      bool   `mapstructure:"log-json"`
	NoProgress   bool   `mapstructure:"no-progress"`
}

func Defaults() Settings {
	return Settings{
		AutoDownload: true,
		Engine:       EngineBundled,
	}
}

// RegisterFlags declares every setting on fs with its default.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String(KeyModelDir, d.ModelDir, "Directory where models are stored")
	fs.Bool(KeyAutoDownload, d.AutoDownload, "Automatically download the model when it is missing")
	fs.String(KeyEngine, d.Engine, "Transcription engine: bundled|inprocess")
	fs.String(KeyWhisperPath, d.WhisperPath, "Path to a whisper-cli executable for the bundled engine")
	fs.Int(KeyThreads, d.Threads, "Inference threads; 0 uses the engine default")
	fs.Bool(KeyVerbose, d.Verbose, "Enable verbose logs on stderr")
	fs.Bool(KeyLogJSON, d.LogJSON, "Emit logs as JSON")
	fs.Bool(KeyNoProgress, d.NoProgress, "Disable progress indicators")
}

// New returns a viper instance reading VOXSCRIBE_* variables and bound to
// the flags in fs.
func New(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

func Load(v *viper.Viper) (Settings, error) {
	s := Defaults()
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	s.Engine = strings.ToLower(strings.TrimSpace(s.Engine))
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	switch s.Engine {
	case EngineBundled, EngineInProcess:
	default:
		return fmt.Errorf("unknown engine %q (expected %s or %s)", s.Engine, EngineBundled, EngineInProcess)
	}
	if s.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", s.Threads)
	}
	return nil
}
