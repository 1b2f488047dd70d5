// Package analyzer runs the review-to-verdict pipeline for one product.
package analyzer

import (
	"github.com/spacesedan/consia/internal/decision"
	"github.com/spacesedan/consia/internal/fakereview"
	"github.com/spacesedan/consia/internal/mlmodel"
	"github.com/spacesedan/consia/internal/models"
	"github.com/spacesedan/consia/internal/phrases"
	"github.com/spacesedan/consia/internal/scoring"
	"github.com/spacesedan/consia/internal/sentiment"
)

// Analyzer is safe for concurrent use. All state is read-only after New.
type Analyzer struct {
	sentiment *sentiment.Classifier
	fakes     *fakereview.Detector
}

// New builds an analyzer over the loaded artifacts. A nil set runs both
// signals on their heuristic paths.
func New(set *mlmodel.Set) *Analyzer {
	sentimentModel := mlmodel.Missing(mlmodel.SENTIMENT_ARTIFACT)
	fakeModel := mlmodel.Missing(mlmodel.FAKE_REVIEW_ARTIFACT)
	if set != nil {
		sentimentModel, fakeModel = set.Sentiment, set.FakeReview
	}

	return &Analyzer{
		sentiment: sentiment.NewClassifier(sentimentModel),
		fakes:     fakereview.NewDetector(fakeModel),
	}
}

// Methods reports the strategy each signal selected at startup.
func (a *Analyzer) Methods() models.AnalysisMethods {
	return models.AnalysisMethods{
		Sentiment:  a.sentiment.Method(),
		FakeReview: a.fakes.Method(),
	}
}

// Analyze never fails. An empty review list yields the Not Enough Data
// verdict without running any signal.
func (a *Analyzer) Analyze(title string, price *float64, reviews []string) models.Verdict {
	if len(reviews) == 0 {
		return emptyVerdict(title, price)
	}

	report := a.sentiment.Aggregate(reviews)
	fakePercent := a.fakes.AggregatePercent(reviews)
	value := scoring.ValueScore(price, report.PositivePercent, fakePercent)
	rating := scoring.TrueRating(report.PositivePercent, fakePercent, len(reviews))

	recommendation, confidence := decision.Decide(decision.Inputs{
		PositivePercent: report.PositivePercent,
		NeutralPercent:  report.NeutralPercent,
		FakePercent:     fakePercent,
		ValueScore:      value,
		ReviewCount:     len(reviews),
	})

	return models.Verdict{
		Title:             title,
		Price:             priceValue(price),
		Recommendation:    recommendation,
		Confidence:        confidence,
		Sentiment:         report,
		FakeReviewPercent: fakePercent,
		ValueScore:        value,
		TrueRating:        rating,
		Pros:              phrases.Extract(reviews, models.SentimentPositive),
		Cons:              phrases.Extract(reviews, models.SentimentNegative),
		ReviewCount:       len(reviews),
		Summary:           Summary(recommendation, report.PositivePercent, fakePercent, rating, len(reviews)),
		Methods: models.AnalysisMethods{
			Sentiment:  report.Method,
			FakeReview: a.fakes.Method(),
		},
	}
}

func emptyVerdict(title string, price *float64) models.Verdict {
	return models.Verdict{
		Title:          title,
		Price:          priceValue(price),
		Recommendation: models.RECOMMENDATION_NOT_ENOUGH_DATA,
		Confidence:     models.ConfidenceLow,
		Sentiment:      models.SentimentReport{Method: models.METHOD_NONE},
		Pros:           []string{},
		Cons:           []string{},
		Summary:        NO_REVIEWS_SUMMARY,
		Methods: models.AnalysisMethods{
			Sentiment:  models.METHOD_NONE,
			FakeReview: models.METHOD_NONE,
		},
	}
}

func priceValue(price *float64) float64 {
	if price == nil {
		return 0
	}
	return *price
}
