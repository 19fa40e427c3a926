package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/fmueller/voxscribe/internal/platform"
	"go.uber.org/zap"
)

// BundledEngine runs a whisper.cpp whisper-cli executable and reads the JSON
// document it writes next to a temporary output base.
type BundledEngine struct {
	Executable string
	Logger     *zap.Logger
	TempDir    string
}

// NewBundledEngine resolves the whisper-cli binary. A non-empty override must
// point at an executable; otherwise the locations shipped with a release are
// searched before falling back to PATH.
func NewBundledEngine(override string, logger *zap.Logger) (*BundledEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override = strings.TrimSpace(override); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("configured whisper path is not executable: %w", err)
		}
		return &BundledEngine{Executable: override, Logger: logger}, nil
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve voxscribe executable path: %w", err)
	}

	whisperExe, err := ResolveBundledEnginePath(self)
	if err != nil {
		if onPath, lookErr := exec.LookPath(engineBinaryName()); lookErr == nil {
			logger.Debug("using whisper engine from PATH", zap.String("engine", onPath))
			return &BundledEngine{Executable: onPath, Logger: logger}, nil
		}
		return nil, err
	}

	return &BundledEngine{Executable: whisperExe, Logger: logger}, nil
}

func ResolveBundledEnginePath(selfExecutable string) (string, error) {
	for _, candidate := range EnginePathCandidates(selfExecutable) {
		if err := ensureExecutable(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("whisper engine not found near %s or on PATH; install whisper.cpp or set --whisper-path (expected ../libexec/whisper/%s)", selfExecutable, engineBinaryName())
}

func EnginePathCandidates(selfExecutable string) []string {
	binDir := filepath.Dir(selfExecutable)
	engineName := engineBinaryName()

	return []string{
		filepath.Join(binDir, "..", "libexec", "whisper", engineName),
		filepath.Join(binDir, "libexec", "whisper", engineName),
		filepath.Join(binDir, "packaging", "whisper", platform.CurrentRuntime().Target(), engineName),
		filepath.Join(binDir, engineName),
	}
}

func (b *BundledEngine) Transcribe(ctx context.Context, req Request) (Transcript, error) {
	if err := req.validate(); err != nil {
		return Transcript{}, err
	}
	if err := ensureExecutable(b.Executable); err != nil {
		return Transcript{}, fmt.Errorf("whisper engine missing or not executable: %w", err)
	}

	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tempDir := b.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	outBase := filepath.Join(tempDir, fmt.Sprintf("voxscribe-%d-%d", os.Getpid(), time.Now().UnixNano()))
	jsonOut := outBase + ".json"
	defer os.Remove(jsonOut)

	args := buildArgs(req, outBase)
	cmd := exec.CommandContext(ctx, b.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	logger.Debug("running whisper engine", zap.String("engine", b.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Transcript{}, fmt.Errorf("whisper transcribe interrupted: %w", ctxErr)
		}
		return Transcript{}, classifyRunError(b.Executable, err, strings.TrimSpace(stderr.String()))
	}
	if engineLog := strings.TrimSpace(stderr.String()); engineLog != "" {
		logger.Debug("whisper engine output", zap.String("stderr", engineLog))
	}

	content, err := os.ReadFile(jsonOut)
	if err != nil {
		return Transcript{}, fmt.Errorf("read whisper output: %w", err)
	}

	transcript, err := parseCLIOutput(content)
	if err != nil {
		return Transcript{}, err
	}
	if transcript.Language == "" && req.Language != "" {
		transcript.Language = req.Language
	}

	return transcript, nil
}

func buildArgs(req Request, outBase string) []string {
	args := []string{
		"-m", req.ModelPath,
		"-f", req.AudioPath,
		"-l", req.languageArg(),
		"-oj",
		"-of", outBase,
		"-np",
	}
	if !req.HalfPrecision {
		args = append(args, "-ng")
	}
	if req.Task == TaskTranslate {
		args = append(args, "-tr")
	}
	if req.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(req.Threads))
	}
	return args
}

func classifyRunError(executable string, runErr error, errText string) error {
	if isMissingSharedLibraryError(errText) {
		return fmt.Errorf("whisper engine at %s is missing required shared libraries (%s); rebuild whisper-cli with BUILD_SHARED_LIBS=OFF or set --whisper-path", executable, errText)
	}
	if isIllegalInstructionError(errText) || isIllegalInstructionError(runErr.Error()) {
		return errors.New("whisper engine crashed with an illegal CPU instruction; " +
			"your CPU may lack required instruction set extensions; " +
			"set --whisper-path to a whisper-cli binary built for your CPU")
	}
	if errText == "" {
		return fmt.Errorf("whisper transcribe failed: %w", runErr)
	}
	return fmt.Errorf("whisper transcribe failed: %w (%s)", runErr, lastLines(errText, 5))
}

func lastLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "; ")
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	for _, pattern := range []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	} {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}
