package analyzer

import (
	"fmt"
	"strconv"

	"github.com/spacesedan/consia/internal/models"
)

const NO_REVIEWS_SUMMARY = "No reviews found for analysis"

// Summary is the one sentence shown next to the verdict.
func Summary(recommendation string, positivePercent, fakePercent, rating float64, reviewCount int) string {
	switch recommendation {
	case models.RECOMMENDATION_WORTH_BUYING:
		return fmt.Sprintf("Product has %s%% positive reviews with a %s star rating. Good value for money.",
			number(positivePercent), number(rating))
	case models.RECOMMENDATION_CONSIDER:
		return fmt.Sprintf("Mixed reviews (%s%% positive). Consider checking alternatives.",
			number(positivePercent))
	case models.RECOMMENDATION_HIGH_FAKE:
		return fmt.Sprintf("About %s%% of the reviews look fake, so the listed rating is unreliable.",
			number(fakePercent))
	case models.RECOMMENDATION_LIMITED_REVIEWS:
		return fmt.Sprintf("Only %d reviews available (%s%% positive), too few for a confident verdict.",
			reviewCount, number(positivePercent))
	case models.RECOMMENDATION_NOT_ENOUGH_DATA:
		return NO_REVIEWS_SUMMARY
	default:
		return fmt.Sprintf("Low recommendation due to %s%% potential fake reviews or poor sentiment.",
			number(fakePercent))
	}
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
