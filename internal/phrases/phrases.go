// Package phrases pulls short pro and con sentences out of raw reviews.
package phrases

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spacesedan/consia/internal/models"
	"github.com/spacesedan/consia/internal/sentiment"
)

const (
	MAX_REVIEW_CHARS   = 500
	MIN_SENTENCE_CHARS = 20
	MAX_SENTENCE_CHARS = 150
	MAX_PHRASES        = 3
)

var positiveKeywords = []string{
	"good", "great", "excellent", "awesome", "best", "love",
	"perfect", "amazing", "worth", "recommend", "satisfied",
	"happy", "value", "quality", "comfortable", "nice",
}

var negativeKeywords = []string{
	"bad", "poor", "worst", "waste", "issue", "problem",
	"disappointed", "terrible", "avoid", "don't buy", "not good",
	"broken", "defective", "faulty", "return", "complaint",
}

// Extract returns up to MAX_PHRASES distinct sentences whose keywords and
// lexical polarity both match target. Only positive and negative targets
// produce phrases.
func Extract(reviews []string, target models.Sentiment) []string {
	var keywords []string
	switch target {
	case models.SentimentPositive:
		keywords = positiveKeywords
	case models.SentimentNegative:
		keywords = negativeKeywords
	default:
		return []string{}
	}

	seen := make(map[string]struct{})
	out := []string{}

	for _, review := range reviews {
		for _, sentence := range sentences(truncate(review, MAX_REVIEW_CHARS)) {
			if !matches(sentence, keywords, target) {
				continue
			}

			phrase := normalize(sentence)
			if _, dup := seen[phrase]; dup {
				continue
			}
			seen[phrase] = struct{}{}
			out = append(out, phrase)

			if len(out) == MAX_PHRASES {
				return out
			}
		}
	}

	return out
}

func sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n := utf8.RuneCountInString(p)
		if n > MIN_SENTENCE_CHARS && n < MAX_SENTENCE_CHARS {
			out = append(out, p)
		}
	}
	return out
}

func matches(sentence string, keywords []string, target models.Sentiment) bool {
	lower := strings.ToLower(sentence)

	found := false
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	// always lexical, even when a sentiment model is loaded
	polarity := sentiment.Polarity(sentence)
	if target == models.SentimentPositive {
		return polarity > sentiment.POSITIVE_THRESHOLD
	}
	return polarity < sentiment.NEGATIVE_THRESHOLD
}

// normalize upper-cases the first letter and ensures a trailing period.
func normalize(sentence string) string {
	r, size := utf8.DecodeRuneInString(sentence)
	phrase := string(unicode.ToUpper(r)) + sentence[size:]
	if !strings.HasSuffix(phrase, ".") {
		phrase += "."
	}
	return phrase
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
