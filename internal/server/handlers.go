package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/spacesedan/consia/internal/models"
)

const (
	API_VERSION       = "2.0"
	MAX_BATCH_SIZE    = 50
	DEFAULT_MAX_ITEMS = 1000
)

var features = []string{"sentiment", "fake_detection", "value_score", "true_rating", "pros_cons"}

type AnalyzeRequest struct {
	Title   string   `json:"title" binding:"max=1000"`
	Price   *float64 `json:"price" binding:"omitempty,gte=0"`
	Reviews []string `json:"reviews"`
}

type AnalyzeResponse struct {
	Success bool `json:"success"`
	models.Verdict
	Timestamp        string  `json:"timestamp"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
	Version          string  `json:"version"`
}

type BatchResult struct {
	Title          string  `json:"title"`
	Recommendation string  `json:"recommendation"`
	TrueRating     float64 `json:"true_rating"`
	ValueScore     float64 `json:"value_score"`
}

type BatchResponse struct {
	Success   bool          `json:"success"`
	Count     int           `json:"count"`
	Results   []BatchResult `json:"results"`
	Timestamp string        `json:"timestamp"`
}

type Handler struct {
	service     ReviewService
	maxReviews  int
	cacheStatus func() string
}

func NewHandler(service ReviewService, maxReviews int, cacheStatus func() string) *Handler {
	if maxReviews <= 0 {
		maxReviews = DEFAULT_MAX_ITEMS
	}
	if cacheStatus == nil {
		cacheStatus = func() string { return "disabled" }
	}
	return &Handler{service: service, maxReviews: maxReviews, cacheStatus: cacheStatus}
}

// GET /health
func (h *Handler) Health(c *gin.Context) {
	methods := h.service.Methods()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Consia backend running",
		"version":   API_VERSION,
		"timestamp": timestamp(),
		"features":  features,
		"models": gin.H{
			"sentiment":   methods.Sentiment,
			"fake_review": methods.FakeReview,
		},
		"cache": h.cacheStatus(),
	})
}

// POST /analyze
func (h *Handler) Analyze(c *gin.Context) {
	start := time.Now()

	body, err := c.GetRawData()
	if tooLarge(c, err) {
		return
	}
	if err != nil || isEmptyJSON(body) {
		badRequest(c, "No data provided")
		return
	}

	var req AnalyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		badRequest(c, "Invalid JSON body")
		return
	}
	if err := h.validate(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	in := models.ProductReviews{Title: req.Title, Price: req.Price, Reviews: req.Reviews}.WithDefaults()
	slog.Info("[HTTP] Analyzing product",
		slog.String("title", truncate(in.Title, 60)),
		slog.Int("reviews", len(in.Reviews)),
		slog.String("request_id", c.GetString(REQUEST_ID_KEY)))

	verdict := h.service.Analyze(c.Request.Context(), in)

	c.JSON(http.StatusOK, AnalyzeResponse{
		Success:          true,
		Verdict:          verdict,
		Timestamp:        timestamp(),
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000,
		Version:          API_VERSION,
	})
}

// POST /batch-analyze
func (h *Handler) BatchAnalyze(c *gin.Context) {
	body, err := c.GetRawData()
	if tooLarge(c, err) {
		return
	}
	if err != nil {
		badRequest(c, "Expected list of products")
		return
	}

	var reqs []AnalyzeRequest
	if err := json.Unmarshal(body, &reqs); err != nil || len(reqs) == 0 {
		badRequest(c, "Expected list of products")
		return
	}
	if len(reqs) > MAX_BATCH_SIZE {
		badRequest(c, fmt.Sprintf("At most %d products per batch", MAX_BATCH_SIZE))
		return
	}

	items := make([]models.ProductReviews, len(reqs))
	for i, req := range reqs {
		if err := h.validate(req); err != nil {
			badRequest(c, fmt.Sprintf("product %d: %s", i, err.Error()))
			return
		}
		items[i] = models.ProductReviews{Title: req.Title, Price: req.Price, Reviews: req.Reviews}
	}

	verdicts, err := h.service.AnalyzeBatch(c.Request.Context(), items)
	if err != nil {
		slog.Error("[HTTP] Batch analysis failed",
			slog.String("error", err.Error()),
			slog.String("request_id", c.GetString(REQUEST_ID_KEY)))
		abortFailed(c)
		return
	}

	results := make([]BatchResult, len(verdicts))
	for i, v := range verdicts {
		results[i] = BatchResult{
			Title:          items[i].Title,
			Recommendation: v.Recommendation,
			TrueRating:     v.TrueRating,
			ValueScore:     v.ValueScore,
		}
	}

	c.JSON(http.StatusOK, BatchResponse{
		Success:   true,
		Count:     len(results),
		Results:   results,
		Timestamp: timestamp(),
	})
}

func (h *Handler) validate(req AnalyzeRequest) error {
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return err
	}
	if len(req.Reviews) > h.maxReviews {
		return fmt.Errorf("too many reviews: at most %d per product", h.maxReviews)
	}
	return nil
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success":   false,
		"error":     msg,
		"timestamp": timestamp(),
	})
}

func tooLarge(c *gin.Context, err error) bool {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return false
	}
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
		"success":   false,
		"error":     fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit),
		"timestamp": timestamp(),
	})
	return true
}

// isEmptyJSON matches bodies that carry no product data at all.
func isEmptyJSON(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	var fields map[string]json.RawMessage
	return json.Unmarshal(trimmed, &fields) == nil && len(fields) == 0
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
