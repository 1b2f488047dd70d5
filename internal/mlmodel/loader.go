package mlmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/knights-analytics/hugot"
)

const (
	SENTIMENT_ARTIFACT   = "sentiment"
	FAKE_REVIEW_ARTIFACT = "fake"
)

// labels an ONNX classifier may use for class 1
var onnxPositiveLabels = map[string][]string{
	SENTIMENT_ARTIFACT:   {"POSITIVE", "POS", "LABEL_1", "1"},
	FAKE_REVIEW_ARTIFACT: {"FAKE", "CG", "LABEL_1", "1"},
}

type artifactPaths struct {
	model      string
	vectorizer string
	onnxDir    string
}

func pathsFor(dir, name string) artifactPaths {
	return artifactPaths{
		model:      filepath.Join(dir, name+"_model.json"),
		vectorizer: filepath.Join(dir, name+"_vectorizer.json"),
		onnxDir:    filepath.Join(dir, name+"_onnx"),
	}
}

// Load looks for the sentiment and fake review artifacts under dir. It never
// fails: anything that cannot be loaded becomes a Missing artifact and the
// signal runs on its fallback for the rest of the process lifetime.
func Load(dir string) *Set {
	l := &loader{dir: dir}
	set := NewSet(l.load(SENTIMENT_ARTIFACT), l.load(FAKE_REVIEW_ARTIFACT))
	set.closeFn = l.close
	return set
}

type loader struct {
	dir     string
	session *hugot.Session
}

func (l *loader) load(name string) Artifact {
	paths := pathsFor(l.dir, name)

	if fileExists(paths.model) && fileExists(paths.vectorizer) {
		model, err := LoadTextModel(paths.model, paths.vectorizer)
		if err != nil {
			slog.Warn("[ModelLoader] Failed to load model, using fallback",
				slog.String("artifact", name),
				slog.String("path", paths.model),
				slog.String("error", err.Error()))
			return Missing(name)
		}
		slog.Info("[ModelLoader] Model loaded",
			slog.String("artifact", name),
			slog.String("path", paths.model))
		return New(name, paths.model, model)
	}

	if dirExists(paths.onnxDir) {
		model, err := l.loadONNX(name, paths.onnxDir)
		if err != nil {
			slog.Warn("[ModelLoader] Failed to load ONNX model, using fallback",
				slog.String("artifact", name),
				slog.String("path", paths.onnxDir),
				slog.String("error", err.Error()))
			return Missing(name)
		}
		slog.Info("[ModelLoader] ONNX model loaded",
			slog.String("artifact", name),
			slog.String("path", paths.onnxDir))
		return New(name, paths.onnxDir, model)
	}

	slog.Warn("[ModelLoader] No model found, using fallback",
		slog.String("artifact", name),
		slog.String("dir", l.dir))
	return Missing(name)
}

func (l *loader) loadONNX(name, dir string) (*onnxModel, error) {
	if l.session == nil {
		session, err := hugot.NewORTSession()
		if err != nil {
			return nil, fmt.Errorf("failed to start hugot session: %w", err)
		}
		l.session = session
	}
	return loadONNX(l.session, name, dir, onnxPositiveLabels[name])
}

func (l *loader) close() error {
	if l.session == nil {
		return nil
	}
	return l.session.Destroy()
}

// LoadTextModel reads a vectorizer + estimator pair exported as JSON.
func LoadTextModel(modelPath, vectorizerPath string) (*TextModel, error) {
	var vec TfidfVectorizer
	if err := readJSON(vectorizerPath, &vec); err != nil {
		return nil, err
	}
	if err := vec.prepare(); err != nil {
		return nil, fmt.Errorf("invalid vectorizer %s: %w", vectorizerPath, err)
	}

	var file estimatorFile
	if err := readJSON(modelPath, &file); err != nil {
		return nil, err
	}
	est, err := file.build(vec.Features())
	if err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", modelPath, err)
	}

	return &TextModel{vectorizer: &vec, estimator: est}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return err == nil && info.IsDir()
}
