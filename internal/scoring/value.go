// Package scoring turns the aggregate review signals into the numeric
// value score and the synthesized star rating.
package scoring

import "github.com/spacesedan/consia/internal/utils"

const (
	FAKE_VALUE_WEIGHT     = 1.2
	PREMIUM_PRICE         = 5000
	PREMIUM_PENALTY       = 10
	LUXURY_PRICE          = 20000
	LUXURY_PENALTY        = 15
	VALUE_SCORE_PRECISION = 2
)

// ValueScore rates value for money in [0,100]. A nil price counts as 0.
// Both price penalties apply to prices above LUXURY_PRICE.
func ValueScore(price *float64, positivePercent, fakePercent float64) float64 {
	p := 0.0
	if price != nil {
		p = *price
	}

	score := positivePercent - fakePercent*FAKE_VALUE_WEIGHT
	if p > PREMIUM_PRICE {
		score -= PREMIUM_PENALTY
	}
	if p > LUXURY_PRICE {
		score -= LUXURY_PENALTY
	}

	return utils.Round(utils.Clamp(score, 0, 100), VALUE_SCORE_PRECISION)
}
