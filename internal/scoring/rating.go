package scoring

import "github.com/spacesedan/consia/internal/utils"

const (
	MIN_RATING            = 1.0
	MAX_RATING            = 5.0
	RATING_SPAN           = 4.0
	MAX_FAKE_PENALTY      = 1.5
	MAX_REVIEW_BONUS      = 0.5
	REVIEWS_PER_BONUS     = 100.0
	TRUE_RATING_PRECISION = 1
)

// TrueRating maps the positive share onto a 1-5 star scale, removes up to
// MAX_FAKE_PENALTY stars for suspected fakes and adds a small bonus for
// larger corpora.
func TrueRating(positivePercent, fakePercent float64, reviewCount int) float64 {
	base := MIN_RATING + positivePercent/100*RATING_SPAN
	penalty := fakePercent / 100 * MAX_FAKE_PENALTY
	bonus := min(MAX_REVIEW_BONUS, float64(reviewCount)/REVIEWS_PER_BONUS)

	rating := utils.Clamp(base-penalty+bonus, MIN_RATING, MAX_RATING)
	return utils.Round(rating, TRUE_RATING_PRECISION)
}
