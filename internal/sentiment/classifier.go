package sentiment

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/spacesedan/consia/internal/mlmodel"
	"github.com/spacesedan/consia/internal/models"
)

const (
	POSITIVE_THRESHOLD = 0.1
	NEGATIVE_THRESHOLD = -0.1
)

// Classifier labels review texts. It uses the trained model when the artifact
// is available and the lexical polarity path otherwise, or whenever a model
// call fails.
type Classifier struct {
	model mlmodel.Artifact

	// first model failure is a Warn, the rest go to Debug
	failureLogged atomic.Bool
}

func NewClassifier(model mlmodel.Artifact) *Classifier {
	return &Classifier{model: model}
}

// Method is the strategy selected at construction.
func (c *Classifier) Method() string {
	if c.model.Available() {
		return models.METHOD_ML_MODEL
	}
	return models.METHOD_LEXICAL
}

func (c *Classifier) Classify(text string) models.SentimentLabel {
	if c.model.Available() {
		label, err := c.classifyModel(text)
		if err == nil {
			return label
		}
		level := slog.LevelDebug
		if c.failureLogged.CompareAndSwap(false, true) {
			level = slog.LevelWarn
		}
		slog.Log(context.Background(), level, "[SentimentClassifier] Model prediction failed, using lexical fallback",
			slog.String("artifact", c.model.Name),
			slog.String("error", err.Error()))
	}
	return ClassifyLexical(text)
}

func (c *Classifier) classifyModel(text string) (models.SentimentLabel, error) {
	pred, err := c.model.Predict(text)
	if err != nil {
		return models.SentimentLabel{}, err
	}

	label := models.SentimentNegative
	if pred.Class == 1 {
		label = models.SentimentPositive
	}
	return models.SentimentLabel{
		Label:      label,
		Confidence: pred.Confidence(),
		Method:     models.METHOD_ML_MODEL,
	}, nil
}

func ClassifyLexical(text string) models.SentimentLabel {
	polarity := Polarity(text)

	switch {
	case polarity > POSITIVE_THRESHOLD:
		return models.SentimentLabel{
			Label:      models.SentimentPositive,
			Confidence: (polarity + 1) / 2,
			Method:     models.METHOD_LEXICAL,
		}
	case polarity < NEGATIVE_THRESHOLD:
		return models.SentimentLabel{
			Label:      models.SentimentNegative,
			Confidence: (-polarity + 1) / 2,
			Method:     models.METHOD_LEXICAL,
		}
	default:
		return models.SentimentLabel{
			Label:      models.SentimentNeutral,
			Confidence: 0.5,
			Method:     models.METHOD_LEXICAL,
		}
	}
}
