package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fmueller/voxscribe/internal/whisper"
)

// Result is the single JSON object written to stdout.
type Result struct {
	Text             string `json:"text"`
	Language         string `json:"language"`
	DetectedLanguage bool   `json:"detected_language"`
}

func newResult(transcript whisper.Transcript, hint string) (Result, error) {
	if hint != "" {
		return Result{Text: transcript.Text, Language: hint}, nil
	}
	if transcript.Language == "" {
		return Result{}, errors.New("whisper engine did not report a detected language")
	}
	return Result{Text: transcript.Text, Language: transcript.Language, DetectedLanguage: true}, nil
}

// writeResult emits r as one line. Non-ASCII and HTML characters are kept
// literal rather than \u-escaped.
func writeResult(w io.Writer, r Result) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if _, err := w.Write(unescapeLineSeparators(buf.Bytes())); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes encoding/json
// always emits back into literal runes. Escaped backslashes are skipped as a
// pair so a literal "\\u2028" in the text stays untouched.
func unescapeLineSeparators(encoded []byte) []byte {
	if !bytes.Contains(encoded, []byte(`\u202`)) {
		return encoded
	}

	out := make([]byte, 0, len(encoded))
	for i := 0; i < len(encoded); i++ {
		if encoded[i] != '\\' || i+1 >= len(encoded) {
			out = append(out, encoded[i])
			continue
		}
		if rest := encoded[i:]; len(rest) >= 6 && bytes.HasPrefix(rest, []byte(`\u202`)) && (rest[5] == '8' || rest[5] == '9') {
			out = append(out, string(rune(0x2020+int(rest[5]-'0')))...)
			i += 5
			continue
		}
		out = append(out, encoded[i], encoded[i+1])
		i++
	}
	return out
}
