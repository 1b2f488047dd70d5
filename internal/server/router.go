package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spacesedan/consia/internal/metrics"
	"github.com/spacesedan/consia/internal/models"
)

type ReviewService interface {
	Analyze(ctx context.Context, in models.ProductReviews) models.Verdict
	AnalyzeBatch(ctx context.Context, items []models.ProductReviews) ([]models.Verdict, error)
	Methods() models.AnalysisMethods
}

type RouterConfig struct {
	Service     ReviewService
	Metrics     *metrics.Metrics
	RateLimiter *RateLimiter
	MaxReviews  int
	// CacheStatus reports the verdict cache state for /health.
	CacheStatus func() string

	// MaxBodyBytes caps analysis request bodies; DEFAULT_MAX_BODY_BYTES when zero.
	MaxBodyBytes int64
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		RequestID(),
		AccessLog(),
		Recovery(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:    []string{"Origin", "Content-Type", REQUEST_ID_HEADER},
			ExposeHeaders:   []string{REQUEST_ID_HEADER},
			MaxAge:          12 * time.Hour,
		}),
		cfg.Metrics.Middleware(),
	)

	h := NewHandler(cfg.Service, cfg.MaxReviews, cfg.CacheStatus)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	api := r.Group("/")
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware())
	}
	api.Use(BodyLimit(cfg.MaxBodyBytes))
	api.POST("/analyze", h.Analyze)
	api.POST("/batch-analyze", h.BatchAnalyze)

	return r
}
