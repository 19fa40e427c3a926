package whisper

import (
	"encoding/json"
	"fmt"
)

// cliOutput mirrors the subset of whisper-cli's -oj document we consume.
type cliOutput struct {
	Params struct {
		Language  string `json:"language"`
		Translate bool   `json:"translate"`
	} `json:"params"`
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseCLIOutput(content []byte) (Transcript, error) {
	var doc cliOutput
	if err := json.Unmarshal(content, &doc); err != nil {
		return Transcript{}, fmt.Errorf("decode whisper output: %w", err)
	}

	segments := make([]Segment, 0, len(doc.Transcription))
	for _, item := range doc.Transcription {
		segments = append(segments, Segment{
			StartMS: item.Offsets.From,
			EndMS:   item.Offsets.To,
			Text:    item.Text,
		})
	}

	language := doc.Result.Language
	if language == "" && doc.Params.Language != AutoLanguage {
		language = doc.Params.Language
	}

	return Transcript{
		Text:     joinSegments(segments),
		Language: language,
		Segments: segments,
	}, nil
}
