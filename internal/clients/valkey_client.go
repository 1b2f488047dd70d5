package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/spacesedan/consia/internal/models"
	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_VERDICT_PREFIX = "consia:verdict:"
	VALKEY_PING_TIMEOUT   = 3 * time.Second
	VALKEY_WRITE_TIMEOUT  = 5 * time.Second
	BREAKER_OPEN_TIMEOUT  = 30 * time.Second
	BREAKER_MIN_REQUESTS  = 5
	BREAKER_FAILURE_RATIO = 0.5
)

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
}

// NewValkeyClient connects and pings once. A failed ping closes the client.
func NewValkeyClient(cfg ValkeyConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			cfg.Address,
		},
		Password:         cfg.Password,
		ConnWriteTimeout: VALKEY_WRITE_TIMEOUT,
		SelectDB:         0,
	}

	if cfg.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), VALKEY_PING_TIMEOUT)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", cfg.Address))
	return client, nil
}

// VerdictCache memoizes verdicts for identical inputs. Every call runs
// through a circuit breaker so an unreachable Valkey fails fast.
type VerdictCache struct {
	client  valkey.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewVerdictCache(client valkey.Client, ttl time.Duration) *VerdictCache {
	settings := gobreaker.Settings{
		Name:    "valkey-verdict-cache",
		Timeout: BREAKER_OPEN_TIMEOUT,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < BREAKER_MIN_REQUESTS {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= BREAKER_FAILURE_RATIO
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("[ValkeyClient] Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &VerdictCache{
		client:  client,
		ttl:     ttl,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// Get returns the cached verdict for key. A miss is (zero, false, nil).
func (vc *VerdictCache) Get(ctx context.Context, key string) (models.Verdict, bool, error) {
	data, err := vc.breaker.Execute(func() ([]byte, error) {
		b, err := vc.client.Do(ctx, vc.client.B().Get().Key(VALKEY_VERDICT_PREFIX+key).Build()).AsBytes()
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		return models.Verdict{}, false, fmt.Errorf("[ValkeyClient] get verdict: %w", err)
	}
	if data == nil {
		return models.Verdict{}, false, nil
	}

	verdict, err := DecodeVerdict(data)
	if err != nil {
		return models.Verdict{}, false, err
	}
	return verdict, true, nil
}

func (vc *VerdictCache) Set(ctx context.Context, key string, verdict models.Verdict) error {
	data, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("[ValkeyClient] encode verdict: %w", err)
	}

	_, err = vc.breaker.Execute(func() ([]byte, error) {
		cmd := vc.client.B().Set().Key(VALKEY_VERDICT_PREFIX + key).Value(valkey.BinaryString(data)).Ex(vc.ttl).Build()
		return nil, vc.client.Do(ctx, cmd).Error()
	})
	if err != nil {
		return fmt.Errorf("[ValkeyClient] set verdict: %w", err)
	}
	return nil
}

// Ping bypasses the breaker so the health monitor can observe recovery.
func (vc *VerdictCache) Ping(ctx context.Context) error {
	return vc.client.Do(ctx, vc.client.B().Ping().Build()).Error()
}

func (vc *VerdictCache) Close() {
	vc.client.Close()
}

func DecodeVerdict(data []byte) (models.Verdict, error) {
	var verdict models.Verdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		return models.Verdict{}, fmt.Errorf("[ValkeyClient] decode verdict: %w", err)
	}
	if verdict.Recommendation == "" {
		return models.Verdict{}, errors.New("[ValkeyClient] decode verdict: missing recommendation")
	}
	return verdict, nil
}

// IsUnavailable reports whether err means Valkey cannot be reached at all,
// either because the breaker is open or the connection failed.
func IsUnavailable(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) ||
		isConnectionError(err)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
