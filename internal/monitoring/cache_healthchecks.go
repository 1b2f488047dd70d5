package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	HEALTHCHECK_TIMER   = 15 * time.Second
	HEALTHCHECK_TIMEOUT = 2 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorCacheHealth pings the cache every interval and stores the result in
// healthy until ctx is done. Only transitions are logged.
func MonitorCacheHealth(ctx context.Context, cache Pinger, healthy *atomic.Bool, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckCacheHealth(ctx, cache, healthy)
		}
	}
}

func CheckCacheHealth(ctx context.Context, cache Pinger, healthy *atomic.Bool) bool {
	pingCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	err := cache.Ping(pingCtx)
	isHealthy := err == nil
	was := healthy.Swap(isHealthy)

	switch {
	case was && !isHealthy:
		slog.Warn("[HealthCheck] Verdict cache is unhealthy, bypassing",
			slog.String("error", err.Error()))
	case !was && isHealthy:
		slog.Info("[HealthCheck] Verdict cache recovered")
	}
	return isHealthy
}
