package fakereview

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spacesedan/consia/internal/models"
)

const (
	SHORT_REVIEW_WORDS   = 5
	SHORT_REVIEW_POINTS  = 30
	PUNCTUATION_LIMIT    = 2
	PUNCTUATION_PER_MARK = 15
	PUNCTUATION_MAX      = 40
	REPEAT_MIN_LENGTH    = 3
	REPEAT_LIMIT         = 2
	REPEAT_POINTS        = 20
	CANNED_PHRASE_POINTS = 15
	FAKE_SCORE_THRESHOLD = 50
)

// checked in order, only the first hit scores
var cannedPhrases = []string{
	"best product ever",
	"must buy",
	"highly recommend",
	"love it",
	"excellent",
	"amazing",
	"awesome",
	"perfect",
}

// Rules scores text with the heuristic detector.
func Rules(text string) models.FakeVerdict {
	score := 0
	var reasons []string

	words := strings.Fields(text)
	if len(words) < SHORT_REVIEW_WORDS {
		score += SHORT_REVIEW_POINTS
		reasons = append(reasons, fmt.Sprintf("Too short (<%d words)", SHORT_REVIEW_WORDS))
	}

	marks := strings.Count(text, "!") + strings.Count(text, "?")
	if marks > PUNCTUATION_LIMIT {
		score += min(PUNCTUATION_MAX, marks*PUNCTUATION_PER_MARK)
		reasons = append(reasons, fmt.Sprintf("Excessive punctuation (%d)", marks))
	}

	if word, ok := repeatedWord(words); ok {
		score += REPEAT_POINTS
		reasons = append(reasons, fmt.Sprintf("Repeated word: '%s'", word))
	}

	lower := strings.ToLower(text)
	for _, phrase := range cannedPhrases {
		if strings.Contains(lower, phrase) {
			score += CANNED_PHRASE_POINTS
			reasons = append(reasons, "Common fake phrase")
			break
		}
	}

	score = min(100, score)
	return models.FakeVerdict{
		IsFake:     score > FAKE_SCORE_THRESHOLD,
		Score:      float64(score),
		Confidence: float64(score) / 100,
		Method:     models.METHOD_RULE_BASED,
		Reasons:    reasons,
	}
}

// repeatedWord returns the first word longer than REPEAT_MIN_LENGTH that
// occurs more than REPEAT_LIMIT times. Words are compared exactly as split.
func repeatedWord(words []string) (string, bool) {
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}
	for _, w := range words {
		if utf8.RuneCountInString(w) > REPEAT_MIN_LENGTH && counts[w] > REPEAT_LIMIT {
			return w, true
		}
	}
	return "", false
}
