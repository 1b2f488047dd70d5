package mlmodel

import (
	"testing"
	"time"

	"github.com/knights-analytics/hugot/pipelines"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPipeline struct {
	panics int
	output *pipelines.TextClassificationOutput
}

func (s *stubPipeline) RunPipeline([]string) (*pipelines.TextClassificationOutput, error) {
	if s.panics > 0 {
		s.panics--
		panic("onnx runtime fault")
	}
	return s.output, nil
}

func classification(label string, score float32) *pipelines.TextClassificationOutput {
	return &pipelines.TextClassificationOutput{
		ClassificationOutputs: [][]pipelines.ClassificationOutput{{{Label: label, Score: score}}},
	}
}

func TestONNXModelMapsLabels(t *testing.T) {
	model := newONNXModel(&stubPipeline{output: classification("positive", 0.8)}, []string{"POSITIVE"})

	pred, err := model.Predict("love it")
	require.NoError(t, err)
	assert.Equal(t, 1, pred.Class)
	assert.InDelta(t, 0.8, pred.Confidence(), 1e-6)

	model = newONNXModel(&stubPipeline{output: classification("NEGATIVE", 0.9)}, []string{"POSITIVE"})
	pred, err = model.Predict("hate it")
	require.NoError(t, err)
	assert.Equal(t, 0, pred.Class)
	assert.InDelta(t, 0.9, pred.Confidence(), 1e-6)
}

func TestONNXModelEmptyOutputIsInvalid(t *testing.T) {
	model := newONNXModel(&stubPipeline{output: &pipelines.TextClassificationOutput{}}, nil)

	_, err := model.Predict("text")
	assert.ErrorIs(t, err, ErrInvalidPrediction)
}

func TestONNXModelPanicReleasesLock(t *testing.T) {
	stub := &stubPipeline{panics: 1, output: classification("POSITIVE", 0.7)}
	artifact := New(SENTIMENT_ARTIFACT, "test", newONNXModel(stub, []string{"POSITIVE"}))

	_, err := artifact.Predict("first call panics")
	require.Error(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := artifact.Predict("second call")
		done <- err
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("prediction blocked after a recovered panic")
	}
}
