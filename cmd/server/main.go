package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/consia/config"
	"github.com/spacesedan/consia/internal/bootstrap"
	"github.com/spacesedan/consia/internal/logging"
	"github.com/spacesedan/consia/internal/server"
	"golang.org/x/time/rate"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := bootstrap.New(ctx, cfg, "api")
	defer app.Close()
	app.StartMonitors(ctx)

	router := server.NewRouter(server.RouterConfig{
		Service:      app.Service,
		Metrics:      app.Metrics,
		RateLimiter:  server.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		MaxReviews:   cfg.MaxReviewsPerRequest,
		CacheStatus:  app.CacheStatus,
		MaxBodyBytes: int64(cfg.MaxBodyBytes),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("[Main] Consia API listening",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server failed",
				slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down API")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Forced shutdown",
			slog.String("error", err.Error()))
	}
}
