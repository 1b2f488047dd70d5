package models

const (
	METHOD_ML_MODEL   = "ml_model"
	METHOD_LEXICAL    = "lexical"
	METHOD_RULE_BASED = "rule_based"
	METHOD_NONE       = "none"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// SentimentLabel is the per-review classification. It only lives for the
// duration of a single analysis.
type SentimentLabel struct {
	Label      Sentiment `json:"label"`
	Confidence float64   `json:"confidence"`
	Method     string    `json:"method"`
}

type SentimentReport struct {
	TotalReviews    int     `json:"total_reviews"`
	PositivePercent float64 `json:"positive_percent"`
	NegativePercent float64 `json:"negative_percent"`
	NeutralPercent  float64 `json:"neutral_percent"`
	PositiveCount   int     `json:"positive_count"`
	NegativeCount   int     `json:"negative_count"`
	NeutralCount    int     `json:"neutral_count"`
	Method          string  `json:"method"`
}

// FakeVerdict is the per-review fake detection result. Reasons are only
// filled in by the rule based detector.
type FakeVerdict struct {
	IsFake     bool     `json:"is_fake"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Method     string   `json:"method"`
	Reasons    []string `json:"reasons,omitempty"`
}
