package whisper

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFakeCLI installs a shell script that behaves like whisper-cli -oj: it
// records its argv and writes a JSON document to the -of base. Auto language
// requests are answered with "de".
func writeFakeCLI(t *testing.T, text string) (executable string, argsFile string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake whisper-cli is a POSIX shell script")
	}

	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	executable = filepath.Join(dir, "whisper-cli")

	script := fmt.Sprintf(`#!/bin/sh
printf '%%s\n' "$@" > %q
out=""
lang="en"
while [ $# -gt 0 ]; do
  case "$1" in
    -of) out="$2"; shift ;;
    -l) lang="$2"; shift ;;
  esac
  shift
done
detected="$lang"
if [ "$lang" = "auto" ]; then detected="de"; fi
echo "whisper_init_from_file: loading model" >&2
cat > "$out.json" <<JSON
{"params":{"model":"m","language":"$lang","translate":false},"result":{"language":"$detected"},"transcription":[{"offsets":{"from":0,"to":1200},"text":" %s"},{"offsets":{"from":1200,"to":2000},"text":" Ende."}]}
JSON
`, argsFile, text)

	require.NoError(t, os.WriteFile(executable, []byte(script), 0o755))
	return executable, argsFile
}

func writeFailingCLI(t *testing.T, stderr string, code int) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake whisper-cli is a POSIX shell script")
	}

	executable := filepath.Join(t.TempDir(), "whisper-cli")
	script := fmt.Sprintf("#!/bin/sh\necho %q >&2\nexit %d\n", stderr, code)
	require.NoError(t, os.WriteFile(executable, []byte(script), 0o755))
	return executable
}
