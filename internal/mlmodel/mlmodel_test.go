package mlmodel

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func testVectorizer() map[string]any {
	return map[string]any{
		"vocabulary": map[string]int{"great": 0, "terrible": 1, "love": 2},
		"idf":        []float64{1, 1, 1},
		"lowercase":  true,
		"stop_words": []string{"the", "is"},
		"norm":       "l2",
	}
}

func TestLoadTextModelLogisticRegression(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "sentiment_vectorizer.json"), testVectorizer())
	writeJSON(t, filepath.Join(dir, "sentiment_model.json"), map[string]any{
		"type":      "logistic_regression",
		"classes":   []int{0, 1},
		"coef":      []float64{2, -2, 2},
		"intercept": 0,
	})

	model, err := LoadTextModel(filepath.Join(dir, "sentiment_model.json"), filepath.Join(dir, "sentiment_vectorizer.json"))
	require.NoError(t, err)

	pos, err := model.Predict("GREAT product, the fit is great")
	require.NoError(t, err)
	assert.Equal(t, 1, pos.Class)
	assert.Greater(t, pos.Confidence(), 0.5)
	assert.InDelta(t, 1.0, pos.Probabilities[0]+pos.Probabilities[1], 1e-9)

	neg, err := model.Predict("terrible")
	require.NoError(t, err)
	assert.Equal(t, 0, neg.Class)
	assert.Greater(t, neg.Confidence(), 0.5)
}

func TestLoadTextModelRandomForest(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "fake_vectorizer.json"), testVectorizer())
	writeJSON(t, filepath.Join(dir, "fake_model.json"), map[string]any{
		"type": "random_forest",
		"trees": []map[string]any{{
			"children_left":  []int{1, -1, -1},
			"children_right": []int{2, -1, -1},
			"feature":        []int{1, -2, -2},
			"threshold":      []float64{0.5, -2, -2},
			"value":          [][]float64{{5, 3}, {1, 3}, {4, 0}},
		}},
	})

	model, err := LoadTextModel(filepath.Join(dir, "fake_model.json"), filepath.Join(dir, "fake_vectorizer.json"))
	require.NoError(t, err)

	pred, err := model.Predict("great")
	require.NoError(t, err)
	assert.Equal(t, 1, pred.Class)
	assert.InDelta(t, 0.75, pred.Confidence(), 1e-9)

	pred, err = model.Predict("terrible")
	require.NoError(t, err)
	assert.Equal(t, 0, pred.Class)
	assert.InDelta(t, 1.0, pred.Confidence(), 1e-9)
}

func TestLoadTextModelRejectsMismatchedShapes(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "v.json"), testVectorizer())
	writeJSON(t, filepath.Join(dir, "m.json"), map[string]any{
		"type": "logistic_regression",
		"coef": []float64{1, 2},
	})

	_, err := LoadTextModel(filepath.Join(dir, "m.json"), filepath.Join(dir, "v.json"))
	assert.Error(t, err)
}

func TestLoadMissingArtifactsFallBack(t *testing.T) {
	set := Load(t.TempDir())
	defer set.Close()

	assert.False(t, set.Sentiment.Available())
	assert.False(t, set.FakeReview.Available())

	_, err := set.Sentiment.Predict("anything")
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestLoadCorruptArtifactIsMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fake_model.json"), []byte("{not json"), 0o644))
	writeJSON(t, filepath.Join(dir, "fake_vectorizer.json"), testVectorizer())

	set := Load(dir)
	assert.False(t, set.FakeReview.Available())
}

func TestLoadFindsJSONArtifact(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "sentiment_vectorizer.json"), testVectorizer())
	writeJSON(t, filepath.Join(dir, "sentiment_model.json"), map[string]any{
		"type": "logistic_regression",
		"coef": []float64{1, -1, 1},
	})

	set := Load(dir)
	assert.True(t, set.Sentiment.Available())
	assert.Equal(t, filepath.Join(dir, "sentiment_model.json"), set.Sentiment.Source)
	assert.False(t, set.FakeReview.Available())
}

type predictorFunc func(string) (Prediction, error)

func (f predictorFunc) Predict(text string) (Prediction, error) { return f(text) }

func TestArtifactPredictRecoversPanics(t *testing.T) {
	a := New("sentiment", "test", predictorFunc(func(string) (Prediction, error) {
		panic("boom")
	}))

	_, err := a.Predict("text")
	assert.Error(t, err)
}

func TestArtifactPredictValidatesOutput(t *testing.T) {
	a := New("sentiment", "test", predictorFunc(func(string) (Prediction, error) {
		return Prediction{Class: 3, Probabilities: []float64{0.2}}, nil
	}))
	_, err := a.Predict("text")
	assert.ErrorIs(t, err, ErrInvalidPrediction)

	boom := errors.New("boom")
	a = New("sentiment", "test", predictorFunc(func(string) (Prediction, error) {
		return Prediction{}, boom
	}))
	_, err = a.Predict("text")
	assert.ErrorIs(t, err, boom)
}
