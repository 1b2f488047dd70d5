// Package decision maps the aggregate review metrics onto a recommendation
// label and a confidence tier.
package decision

import "github.com/spacesedan/consia/internal/models"

const (
	STRONG_POSITIVE_MIN = 60.0
	STRONG_FAKE_MAX     = 25.0
	STRONG_VALUE_MIN    = 40.0

	MODERATE_POSITIVE_MIN = 50.0
	MODERATE_FAKE_MAX     = 30.0
	MODERATE_VALUE_MIN    = 35.0

	MIXED_POSITIVE_MIN = 40.0
	MIXED_NEUTRAL_MIN  = 30.0
	MIXED_FAKE_MAX     = 35.0

	HIGH_FAKE_PERCENT = 40.0
	MIN_REVIEW_COUNT  = 5
)

type Inputs struct {
	PositivePercent float64
	NeutralPercent  float64
	FakePercent     float64
	ValueScore      float64
	ReviewCount     int
}

// Decide evaluates the base rules in order, first match wins, then applies
// the overrides. The fake review override is checked before the review
// count override and suppresses it.
func Decide(in Inputs) (string, models.ConfidenceTier) {
	label, tier := base(in)

	switch {
	case in.FakePercent > HIGH_FAKE_PERCENT:
		return models.RECOMMENDATION_HIGH_FAKE, models.ConfidenceHigh
	case in.ReviewCount < MIN_REVIEW_COUNT:
		return models.RECOMMENDATION_LIMITED_REVIEWS, models.ConfidenceLow
	}

	return label, tier
}

func base(in Inputs) (string, models.ConfidenceTier) {
	switch {
	case in.PositivePercent >= STRONG_POSITIVE_MIN && in.FakePercent <= STRONG_FAKE_MAX && in.ValueScore >= STRONG_VALUE_MIN:
		return models.RECOMMENDATION_WORTH_BUYING, models.ConfidenceHigh
	case in.PositivePercent >= MODERATE_POSITIVE_MIN && in.FakePercent <= MODERATE_FAKE_MAX && in.ValueScore >= MODERATE_VALUE_MIN:
		return models.RECOMMENDATION_WORTH_BUYING, models.ConfidenceModerate
	case in.PositivePercent >= MIXED_POSITIVE_MIN && in.NeutralPercent >= MIXED_NEUTRAL_MIN && in.FakePercent <= MIXED_FAKE_MAX:
		return models.RECOMMENDATION_CONSIDER, models.ConfidenceLow
	default:
		return models.RECOMMENDATION_NOT_RECOMMENDED, models.ConfidenceLow
	}
}
