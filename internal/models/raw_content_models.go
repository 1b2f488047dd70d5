package models

const DEFAULT_PRODUCT_TITLE = "Unknown Product"

// ProductReviews is the input of a single analysis, shared by the HTTP API
// and the Kafka worker.
type ProductReviews struct {
	Title   string   `json:"title"`
	Price   *float64 `json:"price"`
	Reviews []string `json:"reviews"`
}

// WithDefaults fills in the title used when a caller omits it.
func (p ProductReviews) WithDefaults() ProductReviews {
	if p.Title == "" {
		p.Title = DEFAULT_PRODUCT_TITLE
	}
	return p
}

// AnalysisRequest is the message consumed from the request topic.
type AnalysisRequest struct {
	RequestID string   `json:"request_id" validate:"required,max=128"`
	Title     string   `json:"title" validate:"max=1000"`
	Price     *float64 `json:"price" validate:"omitempty,gte=0"`
	Reviews   []string `json:"reviews" validate:"max=1000"`
}

func (r AnalysisRequest) Product() ProductReviews {
	return ProductReviews{Title: r.Title, Price: r.Price, Reviews: r.Reviews}.WithDefaults()
}

// AnalysisResult is the message published to the verdict topic.
type AnalysisResult struct {
	RequestID string  `json:"request_id"`
	Verdict   Verdict `json:"verdict"`
}
