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

	"github.com/spacesedan/consia/config"
	"github.com/spacesedan/consia/internal/bootstrap"
	"github.com/spacesedan/consia/internal/clients/kafka_client"
	"github.com/spacesedan/consia/internal/consumers"
	"github.com/spacesedan/consia/internal/logging"
)

const PRODUCER_RETRY_DELAY = 5 * time.Second

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := bootstrap.New(ctx, cfg, "worker")
	defer app.Close()
	app.StartMonitors(ctx)

	kafkaCfg := kafka_client.NewKafkaConfig(cfg)

	var producer *kafka_client.VerdictProducer
	for {
		p, err := kafka_client.NewVerdictProducer(kafkaCfg)
		if err == nil {
			producer = p
			break
		}

		slog.Warn("[Main] Kafka producer init failed, retrying...",
			slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(PRODUCER_RETRY_DELAY):
		}
	}
	defer producer.Close()

	metricsSrv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           app.Metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("[Main] Metrics endpoint stopped",
				slog.String("error", err.Error()))
		}
	}()
	defer metricsSrv.Close()

	consumers.Register(kafkaCfg, producer, app.Service, consumers.ConsumerOptions{
		BatchSize:  cfg.ConsumerBatchSize,
		MaxReviews: cfg.MaxReviewsPerRequest,
	})

	if err := kafka_client.StartConsumer(ctx, kafkaCfg); err != nil {
		slog.Error("[Main] Consumer stopped",
			slog.String("error", err.Error()))
	}
}
