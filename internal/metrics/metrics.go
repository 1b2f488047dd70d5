// Package metrics exposes the Prometheus collectors shared by the HTTP server
// and the Kafka worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spacesedan/consia/internal/models"
)

const NAMESPACE = "consia"

const (
	CACHE_HIT         = "hit"
	CACHE_MISS        = "miss"
	CACHE_ERROR       = "error"
	CACHE_UNAVAILABLE = "unavailable"
	CACHE_BYPASS      = "bypass"
)

const (
	SIGNAL_SENTIMENT = "sentiment"
	SIGNAL_FAKE      = "fake_review"
)

// Metrics methods are safe to call on a nil receiver, which records nothing.
type Metrics struct {
	registry *prometheus.Registry

	verdictsTotal    *prometheus.CounterVec
	methodsTotal     *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	reviewsAnalyzed  prometheus.Histogram
	cacheTotal       *prometheus.CounterVec
	requestTotal     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	verdictsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   NAMESPACE,
			Subsystem:   "analysis",
			Name:        "verdicts_total",
			Help:        "Verdicts produced, by recommendation.",
			ConstLabels: constLabels,
		},
		[]string{"recommendation"},
	)
	methodsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   NAMESPACE,
			Subsystem:   "analysis",
			Name:        "methods_total",
			Help:        "Classifier strategy used per signal.",
			ConstLabels: constLabels,
		},
		[]string{"signal", "method"},
	)
	analysisDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   NAMESPACE,
			Subsystem:   "analysis",
			Name:        "duration_seconds",
			Help:        "Time spent producing one verdict.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
	)
	reviewsAnalyzed := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   NAMESPACE,
			Subsystem:   "analysis",
			Name:        "reviews",
			Help:        "Reviews per analyzed product.",
			Buckets:     []float64{0, 1, 5, 10, 30, 100, 300, 1000},
			ConstLabels: constLabels,
		},
	)
	cacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   NAMESPACE,
			Subsystem:   "cache",
			Name:        "lookups_total",
			Help:        "Verdict cache lookups by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"},
	)
	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   NAMESPACE,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests processed.",
			ConstLabels: constLabels,
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   NAMESPACE,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(
		verdictsTotal,
		methodsTotal,
		analysisDuration,
		reviewsAnalyzed,
		cacheTotal,
		requestTotal,
		requestDuration,
	)

	return &Metrics{
		registry:         registry,
		verdictsTotal:    verdictsTotal,
		methodsTotal:     methodsTotal,
		analysisDuration: analysisDuration,
		reviewsAnalyzed:  reviewsAnalyzed,
		cacheTotal:       cacheTotal,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordVerdict(v models.Verdict, duration time.Duration) {
	if m == nil {
		return
	}
	m.verdictsTotal.WithLabelValues(v.Recommendation).Inc()
	m.methodsTotal.WithLabelValues(SIGNAL_SENTIMENT, v.Methods.Sentiment).Inc()
	m.methodsTotal.WithLabelValues(SIGNAL_FAKE, v.Methods.FakeReview).Inc()
	m.analysisDuration.Observe(duration.Seconds())
	m.reviewsAnalyzed.Observe(float64(v.ReviewCount))
}

func (m *Metrics) RecordCache(result string) {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}

// Middleware records request counts and latency by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
