package models

const (
	RECOMMENDATION_WORTH_BUYING    = "Worth Buying"
	RECOMMENDATION_CONSIDER        = "Consider Alternatives"
	RECOMMENDATION_NOT_RECOMMENDED = "Not Recommended"
	RECOMMENDATION_HIGH_FAKE       = "High Fake Reviews Detected"
	RECOMMENDATION_LIMITED_REVIEWS = "Limited Reviews Available"
	RECOMMENDATION_NOT_ENOUGH_DATA = "Not Enough Data"
	RECOMMENDATION_FAILED          = "Analysis Failed"
)

type ConfidenceTier string

const (
	ConfidenceHigh     ConfidenceTier = "High"
	ConfidenceModerate ConfidenceTier = "Moderate"
	ConfidenceLow      ConfidenceTier = "Low"
)

// Verdict is the complete result of analyzing one product. It is built once
// by the analyzer and handed to the caller as a value.
type Verdict struct {
	Title             string          `json:"title"`
	Price             float64         `json:"price"`
	Recommendation    string          `json:"recommendation"`
	Confidence        ConfidenceTier  `json:"confidence"`
	Sentiment         SentimentReport `json:"sentiment"`
	FakeReviewPercent float64         `json:"fake_review_percent"`
	ValueScore        float64         `json:"value_score"`
	TrueRating        float64         `json:"true_rating"`
	Pros              []string        `json:"pros"`
	Cons              []string        `json:"cons"`
	ReviewCount       int             `json:"review_count"`
	Summary           string          `json:"summary"`
	Methods           AnalysisMethods `json:"analysis_methods"`
}

// AnalysisMethods records which strategy produced each per-review signal.
type AnalysisMethods struct {
	Sentiment  string `json:"sentiment"`
	FakeReview string `json:"fake_review"`
}
