// Package service wraps the analyzer with the verdict cache and metrics. It
// is shared by the HTTP server and the Kafka worker.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/spacesedan/consia/internal/analyzer"
	"github.com/spacesedan/consia/internal/clients"
	"github.com/spacesedan/consia/internal/metrics"
	"github.com/spacesedan/consia/internal/models"
	"golang.org/x/sync/errgroup"
)

const DEFAULT_BATCH_CONCURRENCY = 4

type VerdictCache interface {
	Get(ctx context.Context, key string) (models.Verdict, bool, error)
	Set(ctx context.Context, key string, verdict models.Verdict) error
}

type ReviewService struct {
	analyzer    *analyzer.Analyzer
	metrics     *metrics.Metrics
	cache       VerdictCache
	cacheHealth *atomic.Bool
	concurrency int
}

type Option func(*ReviewService)

// WithCache enables verdict memoization. While healthy is false the cache is
// skipped entirely.
func WithCache(cache VerdictCache, healthy *atomic.Bool) Option {
	return func(s *ReviewService) {
		s.cache = cache
		s.cacheHealth = healthy
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ReviewService) { s.metrics = m }
}

func WithBatchConcurrency(n int) Option {
	return func(s *ReviewService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewReviewService(a *analyzer.Analyzer, opts ...Option) *ReviewService {
	s := &ReviewService{
		analyzer:    a,
		concurrency: DEFAULT_BATCH_CONCURRENCY,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReviewService) Methods() models.AnalysisMethods {
	return s.analyzer.Methods()
}

// Analyze returns the verdict for one product. Cache failures are logged and
// never change the result.
func (s *ReviewService) Analyze(ctx context.Context, in models.ProductReviews) models.Verdict {
	start := time.Now()
	key := CacheKey(in)

	if verdict, ok := s.lookup(ctx, key); ok {
		return verdict
	}

	verdict := s.analyzer.Analyze(in.Title, in.Price, in.Reviews)
	s.metrics.RecordVerdict(verdict, time.Since(start))
	s.store(ctx, key, verdict)

	return verdict
}

// AnalyzeBatch analyzes every product with bounded concurrency. Results keep
// the input order. A panic in any item fails the whole batch.
func (s *ReviewService) AnalyzeBatch(ctx context.Context, items []models.ProductReviews) ([]models.Verdict, error) {
	verdicts := make([]models.Verdict, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, item := range items {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("[ReviewService] batch item %d panicked: %v", i, r)
				}
			}()

			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = s.Analyze(gctx, item)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}

func (s *ReviewService) cacheUsable() bool {
	return s.cache != nil && (s.cacheHealth == nil || s.cacheHealth.Load())
}

func (s *ReviewService) lookup(ctx context.Context, key string) (models.Verdict, bool) {
	if !s.cacheUsable() {
		if s.cache != nil {
			s.metrics.RecordCache(metrics.CACHE_BYPASS)
		}
		return models.Verdict{}, false
	}

	verdict, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil && clients.IsUnavailable(err):
		// bypass until the health monitor sees Valkey again
		s.metrics.RecordCache(metrics.CACHE_UNAVAILABLE)
		if s.cacheHealth != nil && s.cacheHealth.CompareAndSwap(true, false) {
			slog.Warn("[ReviewService] Verdict cache unavailable, bypassing",
				slog.String("error", err.Error()))
		}
		return models.Verdict{}, false
	case err != nil:
		s.metrics.RecordCache(metrics.CACHE_ERROR)
		slog.Warn("[ReviewService] Cache lookup failed",
			slog.String("error", err.Error()))
		return models.Verdict{}, false
	case !ok:
		s.metrics.RecordCache(metrics.CACHE_MISS)
		return models.Verdict{}, false
	}

	s.metrics.RecordCache(metrics.CACHE_HIT)
	return verdict, true
}

func (s *ReviewService) store(ctx context.Context, key string, verdict models.Verdict) {
	if !s.cacheUsable() {
		return
	}
	if err := s.cache.Set(ctx, key, verdict); err != nil {
		slog.Warn("[ReviewService] Failed to cache verdict",
			slog.String("error", err.Error()))
	}
}

// CacheKey is a stable digest of everything that influences a verdict.
// Fields are length prefixed so no two inputs share an encoding.
func CacheKey(in models.ProductReviews) string {
	h := sha256.New()
	var buf [8]byte

	writeString := func(s string) {
		binary.BigEndian.PutUint64(buf[:], uint64(len(s)))
		h.Write(buf[:])
		h.Write([]byte(s))
	}

	writeString(in.Title)
	if in.Price == nil {
		h.Write([]byte{0})
	} else {
		h.Write([]byte{1})
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(*in.Price))
		h.Write(buf[:])
	}
	binary.BigEndian.PutUint64(buf[:], uint64(len(in.Reviews)))
	h.Write(buf[:])
	for _, r := range in.Reviews {
		writeString(r)
	}

	return hex.EncodeToString(h.Sum(nil))
}
