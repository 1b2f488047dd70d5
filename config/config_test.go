package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"APP_ENV", "API_PORT", "LOG_LEVEL", "MODEL_DIR", "MODEL_S3_BUCKET", "MODEL_S3_PREFIX",
	"VALKEY_INIT_ADDRESS", "VALKEY_TLS", "CACHE_TTL", "KAFKA_REQUEST_TOPIC", "KAFKA_VERDICT_TOPIC",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BATCH_CONCURRENCY", "MAX_REVIEWS_PER_REQUEST",
	"METRICS_PORT", "CONSUMER_BATCH_SIZE", "MAX_BODY_BYTES",
}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "5000", cfg.APIPort)
	assert.Equal(t, "./ml", cfg.ModelDir)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "review-analysis-requests", cfg.KafkaRequestTopic)
	assert.Equal(t, "review-verdicts", cfg.KafkaVerdictTopic)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.Equal(t, 1000, cfg.MaxReviewsPerRequest)
	assert.Equal(t, "9100", cfg.MetricsPort)
	assert.Equal(t, 25, cfg.ConsumerBatchSize)
	assert.Equal(t, 4<<20, cfg.MaxBodyBytes)
	assert.False(t, cfg.CacheEnabled())
	assert.False(t, cfg.ModelSyncEnabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_PORT", "8080")
	t.Setenv("VALKEY_INIT_ADDRESS", "localhost:6379")
	t.Setenv("VALKEY_TLS", "true")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("MODEL_S3_BUCKET", "consia-models")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("BATCH_CONCURRENCY", "8")

	cfg := Load()
	assert.Equal(t, "8080", cfg.APIPort)
	assert.True(t, cfg.ValkeyTLS)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 8, cfg.BatchConcurrency)
	assert.True(t, cfg.CacheEnabled())
	assert.True(t, cfg.ModelSyncEnabled())
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("RATE_LIMIT_BURST", "lots")
	t.Setenv("VALKEY_TLS", "maybe")

	cfg := Load()
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.False(t, cfg.ValkeyTLS)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config", "envs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "envs", ".env.test"),
		[]byte("MAX_REVIEWS_PER_REQUEST=250\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// gotenv keeps variables that already exist, even when empty
	require.NoError(t, os.Unsetenv("MAX_REVIEWS_PER_REQUEST"))
	LoadEnv("test")

	assert.Equal(t, 250, Load().MaxReviewsPerRequest)
}
