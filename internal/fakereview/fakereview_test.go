package fakereview

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/spacesedan/consia/internal/mlmodel"
	"github.com/spacesedan/consia/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genuineReview = "The blender handles frozen fruit well, although the lid is a little hard to clean."

type stubPredictor struct {
	pred mlmodel.Prediction
	err  error
}

func (s stubPredictor) Predict(string) (mlmodel.Prediction, error) { return s.pred, s.err }

func TestRulesCannedShoutingReview(t *testing.T) {
	v := Rules("Best product ever!!!")

	assert.True(t, v.IsFake)
	assert.Equal(t, 85.0, v.Score)
	assert.Equal(t, models.METHOD_RULE_BASED, v.Method)
	assert.Len(t, v.Reasons, 3)
	assert.Contains(t, v.Reasons, "Common fake phrase")
}

func TestRulesThresholdBoundary(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		score  float64
		isFake bool
	}{
		{"four words three exclamations", "Nice blender for kitchen!!!", 70, true},
		{"four words with canned phrase", "Amazing blender, truly great", 45, false},
		{"short and repeated lands on threshold", "good good good", 50, false},
		{"long shouting review", "This blender is loud but it does the job!!!", 40, false},
		{"genuine", genuineReview, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Rules(tc.text)
			assert.Equal(t, tc.score, v.Score)
			assert.Equal(t, tc.isFake, v.IsFake)
		})
	}
}

func TestRulesPunctuationCapped(t *testing.T) {
	v := Rules("Great value for the money honestly!!!!!!!!")
	assert.Equal(t, 40.0, v.Score)
}

func TestRulesScoreClamped(t *testing.T) {
	v := Rules("perfect perfect perfect perfect!!!")
	assert.LessOrEqual(t, v.Score, 100.0)
	assert.Equal(t, 100.0, v.Score)
	assert.True(t, v.IsFake)
}

func TestClassifySkipsShortText(t *testing.T) {
	d := NewDetector(mlmodel.Missing(mlmodel.FAKE_REVIEW_ARTIFACT))

	_, ok := d.Classify("   ok!!   ")
	assert.False(t, ok)

	_, ok = d.Classify("")
	assert.False(t, ok)
}

func TestClassifyUsesModel(t *testing.T) {
	d := NewDetector(mlmodel.New(mlmodel.FAKE_REVIEW_ARTIFACT, "test", stubPredictor{
		pred: mlmodel.Prediction{Class: 1, Probabilities: []float64{0.1, 0.9}},
	}))

	v, ok := d.Classify(genuineReview)
	require.True(t, ok)
	assert.True(t, v.IsFake)
	assert.InDelta(t, 90, v.Score, 1e-9)
	assert.Equal(t, models.METHOD_ML_MODEL, v.Method)
	assert.Empty(t, v.Reasons)
	assert.Equal(t, models.METHOD_ML_MODEL, d.Method())
}

func TestClassifyFallsBackToRules(t *testing.T) {
	d := NewDetector(mlmodel.New(mlmodel.FAKE_REVIEW_ARTIFACT, "test", stubPredictor{err: errors.New("broken")}))

	v, ok := d.Classify("Best product ever!!!")
	require.True(t, ok)
	assert.Equal(t, models.METHOD_RULE_BASED, v.Method)
	assert.True(t, v.IsFake)
}

func TestClassifyWarnsOnceForBrokenModel(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	d := NewDetector(mlmodel.New(mlmodel.FAKE_REVIEW_ARTIFACT, "test", stubPredictor{err: errors.New("broken")}))
	for range 40 {
		d.Classify("Best product ever!!!")
	}

	assert.Equal(t, 1, strings.Count(buf.String(), "level=WARN"))
}

func TestAggregatePercent(t *testing.T) {
	d := NewDetector(mlmodel.Missing(mlmodel.FAKE_REVIEW_ARTIFACT))

	assert.Equal(t, 0.0, d.AggregatePercent(nil))
	assert.Equal(t, 0.0, d.AggregatePercent([]string{"short", "", "tiny!!"}))

	reviews := []string{"Best product ever!!!", genuineReview, "bad", genuineReview}
	assert.Equal(t, 33.3, d.AggregatePercent(reviews))
}

func TestAggregatePercentExaminesFirstThirty(t *testing.T) {
	d := NewDetector(mlmodel.Missing(mlmodel.FAKE_REVIEW_ARTIFACT))

	var reviews []string
	for i := 0; i < MAX_REVIEWS_EXAMINED; i++ {
		reviews = append(reviews, genuineReview)
	}
	for i := 0; i < 20; i++ {
		reviews = append(reviews, "Best product ever!!!")
	}
	assert.Equal(t, 0.0, d.AggregatePercent(reviews))

	var flipped []string
	flipped = append(flipped, "tiny")
	for i := 0; i < 40; i++ {
		flipped = append(flipped, "Best product ever!!!")
	}
	flipped = append(flipped, genuineReview)
	assert.Equal(t, 100.0, d.AggregatePercent(flipped))
}
