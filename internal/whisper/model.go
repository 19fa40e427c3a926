package whisper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultModel is the checkpoint every transcription runs with: the smallest
// multilingual ggml model.
const DefaultModel = "tiny"

type Model struct {
	Name     string
	FileName string
	URL      string
	SHA256   string
}

type ResolvedModel struct {
	Name          string
	Path          string
	URL           string
	SHA256        string
	NeedsDownload bool
}

const modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

var registry = map[string]Model{
	DefaultModel: {
		Name:     DefaultModel,
		FileName: "ggml-tiny.bin",
		SHA256:   "be07e048e1e599ad46341c8d2a135645097a538221678b7acdd1b1919c6e1b21",
	},
}

func LookupModel(name string) (Model, bool) {
	model, ok := registry[name]
	if !ok {
		return Model{}, false
	}
	model.URL = modelBaseURL + model.FileName
	return model, true
}

// ResolveModel maps a registry name onto its location inside modelDir and
// reports whether the file still has to be fetched.
func ResolveModel(name, modelDir string) (ResolvedModel, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultModel
	}

	model, ok := LookupModel(name)
	if !ok {
		return ResolvedModel{}, fmt.Errorf("unknown model %q (available: %s)", name, DefaultModel)
	}
	if strings.TrimSpace(modelDir) == "" {
		return ResolvedModel{}, errors.New("model directory must not be empty")
	}

	modelPath := filepath.Join(modelDir, model.FileName)
	info, err := os.Stat(modelPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		info = nil
	case err != nil:
		return ResolvedModel{}, fmt.Errorf("stat model path: %w", err)
	case info.IsDir():
		return ResolvedModel{}, fmt.Errorf("model path %s is a directory", modelPath)
	}

	return ResolvedModel{
		Name:          model.Name,
		Path:          modelPath,
		URL:           model.URL,
		SHA256:        model.SHA256,
		NeedsDownload: info == nil || info.Size() == 0,
	}, nil
}
