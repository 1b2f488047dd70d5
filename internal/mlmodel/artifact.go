// Package mlmodel loads the optional trained classifiers used by the review
// signals. A missing artifact is a normal state: callers check Available and
// fall back to their heuristic path.
package mlmodel

import (
	"errors"
	"fmt"
)

var (
	ErrNoModel           = errors.New("model artifact not loaded")
	ErrInvalidPrediction = errors.New("model returned an invalid prediction")
)

// Prediction is a binary classification. Class 1 is the "positive" class of
// the artifact (positive sentiment, fake review).
type Prediction struct {
	Class         int
	Probabilities []float64
}

// Confidence is the probability of the predicted class.
func (p Prediction) Confidence() float64 {
	if p.Class < 0 || p.Class >= len(p.Probabilities) {
		return 0
	}
	return p.Probabilities[p.Class]
}

type Predictor interface {
	Predict(text string) (Prediction, error)
}

// Artifact is a loaded model + vectorizer pair, or the Missing sentinel.
type Artifact struct {
	Name      string
	Source    string
	predictor Predictor
}

func New(name, source string, predictor Predictor) Artifact {
	return Artifact{Name: name, Source: source, predictor: predictor}
}

func Missing(name string) Artifact {
	return Artifact{Name: name}
}

func (a Artifact) Available() bool {
	return a.predictor != nil
}

// Predict runs the underlying model. Panics raised inside the model are
// converted into errors.
func (a Artifact) Predict(text string) (pred Prediction, err error) {
	if a.predictor == nil {
		return Prediction{}, ErrNoModel
	}

	defer func() {
		if r := recover(); r != nil {
			pred = Prediction{}
			err = fmt.Errorf("[%s] prediction panicked: %v", a.Name, r)
		}
	}()

	pred, err = a.predictor.Predict(text)
	if err != nil {
		return Prediction{}, fmt.Errorf("[%s] prediction failed: %w", a.Name, err)
	}
	if len(pred.Probabilities) < 2 || pred.Class < 0 || pred.Class > 1 {
		return Prediction{}, fmt.Errorf("[%s] %w", a.Name, ErrInvalidPrediction)
	}

	return pred, nil
}

// Set holds every artifact loaded at startup. It is read-only once built and
// safe to share between goroutines.
type Set struct {
	Sentiment  Artifact
	FakeReview Artifact

	closeFn func() error
}

func NewSet(sentiment, fakeReview Artifact) *Set {
	return &Set{Sentiment: sentiment, FakeReview: fakeReview}
}

// Close releases runtime resources held by ONNX backed artifacts.
func (s *Set) Close() error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
