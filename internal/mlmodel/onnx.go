package mlmodel

import (
	"fmt"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

// textClassifier is the part of the hugot pipeline the model calls.
type textClassifier interface {
	RunPipeline(inputs []string) (*pipelines.TextClassificationOutput, error)
}

// onnxModel runs an exported transformer text classifier through hugot.
// Calls are serialised since the backend is not documented as reentrant.
type onnxModel struct {
	mu             sync.Mutex
	pipeline       textClassifier
	positiveLabels map[string]struct{}
}

func loadONNX(session *hugot.Session, name, dir string, positiveLabels []string) (*onnxModel, error) {
	config := hugot.TextClassificationConfig{
		ModelPath: dir,
		Name:      name,
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		return nil, fmt.Errorf("failed to build text classification pipeline: %w", err)
	}

	return newONNXModel(pipeline, positiveLabels), nil
}

func newONNXModel(pipeline textClassifier, positiveLabels []string) *onnxModel {
	labels := make(map[string]struct{}, len(positiveLabels))
	for _, l := range positiveLabels {
		labels[strings.ToUpper(l)] = struct{}{}
	}
	return &onnxModel{pipeline: pipeline, positiveLabels: labels}
}

// run holds the lock only for the pipeline call; a panic inside the backend
// still releases it.
func (m *onnxModel) run(text string) (*pipelines.TextClassificationOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pipeline.RunPipeline([]string{text})
}

func (m *onnxModel) Predict(text string) (Prediction, error) {
	out, err := m.run(text)
	if err != nil {
		return Prediction{}, err
	}
	if out == nil || len(out.ClassificationOutputs) == 0 || len(out.ClassificationOutputs[0]) == 0 {
		return Prediction{}, ErrInvalidPrediction
	}

	best := out.ClassificationOutputs[0][0]
	p := float64(best.Score)
	if _, ok := m.positiveLabels[strings.ToUpper(best.Label)]; ok {
		return Prediction{Class: 1, Probabilities: []float64{1 - p, p}}, nil
	}
	return Prediction{Class: 0, Probabilities: []float64{p, 1 - p}}, nil
}
