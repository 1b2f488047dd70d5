package phrases

import (
	"strings"
	"testing"

	"github.com/spacesedan/consia/internal/models"
	"github.com/stretchr/testify/assert"
)

const recommendation = "This is a great product and I would definitely recommend it to my friends."

func TestExtractPositiveExample(t *testing.T) {
	got := Extract([]string{recommendation}, models.SentimentPositive)
	assert.Equal(t, []string{recommendation}, got)
}

func TestExtractDeduplicatesAcrossReviews(t *testing.T) {
	got := Extract([]string{recommendation, recommendation, "  " + recommendation}, models.SentimentPositive)
	assert.Len(t, got, 1)
}

func TestExtractNegative(t *testing.T) {
	reviews := []string{
		"the motor is terrible and it broke after two days! Works fine otherwise",
	}

	got := Extract(reviews, models.SentimentNegative)
	assert.Equal(t, []string{"The motor is terrible and it broke after two days."}, got)
}

func TestExtractCapsAtThree(t *testing.T) {
	reviews := []string{
		"The sound quality is great for the price. I love the long battery life a lot. " +
			"The case feels nice and really sturdy. Setup was a good and happy experience overall.",
	}

	got := Extract(reviews, models.SentimentPositive)
	assert.Len(t, got, MAX_PHRASES)
	for _, p := range got {
		assert.True(t, strings.HasSuffix(p, "."))
	}
}

func TestExtractFiltersLengthAndKeywords(t *testing.T) {
	reviews := []string{
		"Great buy.",                                    // too short
		"The colour is blue and the box was cardboard.", // no keyword
		strings.Repeat("great ", 30),                    // too long
	}

	assert.Empty(t, Extract(reviews, models.SentimentPositive))
	assert.Empty(t, Extract(nil, models.SentimentPositive))
	assert.Empty(t, Extract([]string{recommendation}, models.SentimentNeutral))
}

func TestExtractOnlyLooksAtFirstChars(t *testing.T) {
	review := strings.Repeat("x", MAX_REVIEW_CHARS) + ". " + recommendation
	assert.Empty(t, Extract([]string{review}, models.SentimentPositive))
}
