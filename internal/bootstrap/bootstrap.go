// Package bootstrap builds the shared application graph for both binaries.
package bootstrap

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/spacesedan/consia/config"
	"github.com/spacesedan/consia/internal/analyzer"
	"github.com/spacesedan/consia/internal/clients"
	"github.com/spacesedan/consia/internal/metrics"
	"github.com/spacesedan/consia/internal/mlmodel"
	"github.com/spacesedan/consia/internal/monitoring"
	"github.com/spacesedan/consia/internal/service"
)

const (
	CACHE_DISABLED  = "disabled"
	CACHE_HEALTHY   = "healthy"
	CACHE_UNHEALTHY = "unhealthy"
)

type App struct {
	Config  config.Config
	Models  *mlmodel.Set
	Metrics *metrics.Metrics
	Service *service.ReviewService

	cache        *clients.VerdictCache
	cacheHealthy *atomic.Bool
}

// New never fails on optional dependencies: a failed model sync falls back
// to local artifacts and an unreachable Valkey disables the cache.
func New(ctx context.Context, cfg config.Config, serviceName string) *App {
	if cfg.ModelSyncEnabled() {
		syncModels(ctx, cfg)
	}

	app := &App{
		Config:       cfg,
		Models:       mlmodel.Load(cfg.ModelDir),
		Metrics:      metrics.New(serviceName),
		cacheHealthy: &atomic.Bool{},
	}

	opts := []service.Option{
		service.WithMetrics(app.Metrics),
		service.WithBatchConcurrency(cfg.BatchConcurrency),
	}

	if cfg.CacheEnabled() {
		client, err := clients.NewValkeyClient(clients.ValkeyConfig{
			Address:  cfg.ValkeyAddress,
			Password: cfg.ValkeyPassword,
			TLS:      cfg.ValkeyTLS,
		})
		if err != nil {
			slog.Warn("[Bootstrap] Verdict cache disabled",
				slog.String("error", err.Error()))
		} else {
			app.cache = clients.NewVerdictCache(client, cfg.CacheTTL)
			app.cacheHealthy.Store(true)
			opts = append(opts, service.WithCache(app.cache, app.cacheHealthy))
		}
	}

	a := analyzer.New(app.Models)
	methods := a.Methods()
	slog.Info("[Bootstrap] Analyzer ready",
		slog.String("sentiment", methods.Sentiment),
		slog.String("fake_review", methods.FakeReview),
		slog.Bool("cache", app.cache != nil))

	app.Service = service.NewReviewService(a, opts...)
	return app
}

func syncModels(ctx context.Context, cfg config.Config) {
	ctx, cancel := context.WithTimeout(ctx, clients.MODEL_SYNC_TIMEOUT)
	defer cancel()

	s3Client, err := clients.NewS3Client(ctx, clients.AWSConfig{
		Region:   cfg.AWSRegion,
		Endpoint: cfg.AWSEndpoint,
	})
	if err != nil {
		slog.Warn("[Bootstrap] Model sync skipped",
			slog.String("error", err.Error()))
		return
	}

	n, err := mlmodel.Sync(ctx, s3Client, cfg.ModelS3Bucket, cfg.ModelS3Prefix, cfg.ModelDir)
	if err != nil {
		slog.Warn("[Bootstrap] Model sync failed, using local artifacts",
			slog.Int("downloaded", n),
			slog.String("error", err.Error()))
		return
	}
	slog.Info("[Bootstrap] Model artifacts synced",
		slog.String("bucket", cfg.ModelS3Bucket),
		slog.Int("files", n))
}

// StartMonitors runs the cache health check until ctx is done.
func (a *App) StartMonitors(ctx context.Context) {
	if a.cache == nil {
		return
	}
	go monitoring.MonitorCacheHealth(ctx, a.cache, a.cacheHealthy, monitoring.HEALTHCHECK_TIMER)
}

func (a *App) CacheStatus() string {
	switch {
	case a.cache == nil:
		return CACHE_DISABLED
	case a.cacheHealthy.Load():
		return CACHE_HEALTHY
	default:
		return CACHE_UNHEALTHY
	}
}

func (a *App) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if err := a.Models.Close(); err != nil {
		slog.Warn("[Bootstrap] Failed to release model resources",
			slog.String("error", err.Error()))
	}
}
