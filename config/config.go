package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv      string
	APIPort     string
	MetricsPort string
	LogLevel    string

	ModelDir      string
	ModelS3Bucket string
	ModelS3Prefix string
	AWSRegion     string
	AWSEndpoint   string

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool
	CacheTTL       time.Duration

	KafkaBroker          string
	KafkaConsumerGroupID string
	KafkaRequestTopic    string
	KafkaVerdictTopic    string

	RateLimitRPS         float64
	RateLimitBurst       int
	BatchConcurrency     int
	MaxReviewsPerRequest int
	MaxBodyBytes         int
	ConsumerBatchSize    int
}

func Load() Config {
	return Config{
		AppEnv:      mustEnv("APP_ENV", "dev"),
		APIPort:     mustEnv("API_PORT", "5000"),
		MetricsPort: mustEnv("METRICS_PORT", "9100"),
		LogLevel:    mustEnv("LOG_LEVEL", "info"),

		ModelDir:      mustEnv("MODEL_DIR", "./ml"),
		ModelS3Bucket: mustEnv("MODEL_S3_BUCKET", ""),
		ModelS3Prefix: mustEnv("MODEL_S3_PREFIX", "models/"),
		AWSRegion:     mustEnv("AWS_REGION", "us-west-2"),
		AWSEndpoint:   mustEnv("AWS_ENDPOINT", ""),

		ValkeyAddress:  mustEnv("VALKEY_INIT_ADDRESS", ""),
		ValkeyPassword: mustEnv("VALKEY_PASSWORD", ""),
		ValkeyTLS:      mustEnvBool("VALKEY_TLS", false),
		CacheTTL:       mustEnvDuration("CACHE_TTL", 10*time.Minute),

		KafkaBroker:          mustEnv("KAFKA_BROKER", "localhost:9092"),
		KafkaConsumerGroupID: mustEnv("KAFKA_CONSUMER_GROUP_ID", "consia-analysis"),
		KafkaRequestTopic:    mustEnv("KAFKA_REQUEST_TOPIC", "review-analysis-requests"),
		KafkaVerdictTopic:    mustEnv("KAFKA_VERDICT_TOPIC", "review-verdicts"),

		RateLimitRPS:         mustEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:       mustEnvInt("RATE_LIMIT_BURST", 20),
		BatchConcurrency:     mustEnvInt("BATCH_CONCURRENCY", 4),
		MaxReviewsPerRequest: mustEnvInt("MAX_REVIEWS_PER_REQUEST", 1000),
		MaxBodyBytes:         mustEnvInt("MAX_BODY_BYTES", 4<<20),
		ConsumerBatchSize:    mustEnvInt("CONSUMER_BATCH_SIZE", 25),
	}
}

// CacheEnabled reports whether a Valkey address was configured.
func (c Config) CacheEnabled() bool {
	return c.ValkeyAddress != ""
}

func (c Config) ModelSyncEnabled() bool {
	return c.ModelS3Bucket != ""
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
