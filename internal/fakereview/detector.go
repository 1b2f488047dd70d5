package fakereview

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/spacesedan/consia/internal/mlmodel"
	"github.com/spacesedan/consia/internal/models"
	"github.com/spacesedan/consia/internal/utils"
)

const (
	MIN_REVIEW_LENGTH = 10
	// upper bound on reviews examined per request
	MAX_REVIEWS_EXAMINED = 30
)

type Detector struct {
	model         mlmodel.Artifact
	failureLogged atomic.Bool
}

func NewDetector(model mlmodel.Artifact) *Detector {
	return &Detector{model: model}
}

func (d *Detector) Method() string {
	if d.model.Available() {
		return models.METHOD_ML_MODEL
	}
	return models.METHOD_RULE_BASED
}

// Qualifies reports whether text is long enough to be examined.
func Qualifies(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MIN_REVIEW_LENGTH
}

// Classify returns the verdict for text. The second result is false when the
// text is too short to examine.
func (d *Detector) Classify(text string) (models.FakeVerdict, bool) {
	if !Qualifies(text) {
		return models.FakeVerdict{}, false
	}

	if d.model.Available() {
		pred, err := d.model.Predict(text)
		if err == nil {
			confidence := pred.Confidence()
			return models.FakeVerdict{
				IsFake:     pred.Class == 1,
				Score:      utils.Clamp(confidence*100, 0, 100),
				Confidence: confidence,
				Method:     models.METHOD_ML_MODEL,
			}, true
		}
		level := slog.LevelDebug
		if d.failureLogged.CompareAndSwap(false, true) {
			level = slog.LevelWarn
		}
		slog.Log(context.Background(), level, "[FakeReviewDetector] Model prediction failed, using rules",
			slog.String("artifact", d.model.Name),
			slog.String("error", err.Error()))
	}

	return Rules(text), true
}

// AggregatePercent is the share of fake reviews among the first
// MAX_REVIEWS_EXAMINED qualifying texts, in input order.
func (d *Detector) AggregatePercent(texts []string) float64 {
	fake, examined := 0, 0

	for _, text := range texts {
		if examined >= MAX_REVIEWS_EXAMINED {
			break
		}
		verdict, ok := d.Classify(text)
		if !ok {
			continue
		}
		examined++
		if verdict.IsFake {
			fake++
		}
	}

	return utils.Percent(fake, examined)
}
