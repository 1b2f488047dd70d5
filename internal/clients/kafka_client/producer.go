package kafka_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/consia/internal/models"
)

// TransactionalProducer is the part of *kafka.Producer the verdict
// publisher drives.
type TransactionalProducer interface {
	BeginTransaction() error
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	CommitTransaction(ctx context.Context) error
	AbortTransaction(ctx context.Context) error
	Flush(timeoutMs int) int
	Close()
}

// txnError matches kafka.Error without constructing one.
type txnError interface {
	error
	IsRetriable() bool
	TxnRequiresAbort() bool
}

type VerdictProducer struct {
	producer TransactionalProducer
	topic    string
}

// NewVerdictProducerFrom wraps a producer whose transactions are already
// initialised.
func NewVerdictProducerFrom(producer TransactionalProducer, topic string) *VerdictProducer {
	return &VerdictProducer{producer: producer, topic: topic}
}

func NewVerdictProducer(cfg KafkaConfig) (*VerdictProducer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("topic", cfg.VerdictTopic))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
		"transactional.id":                      TRANSACTIONAL_ID + "-" + cfg.GroupID,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), TRANSACTION_LIMIT)
	defer cancel()
	if err := p.InitTransactions(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to init transactions: %w", err)
	}

	go logDeliveryErrors(p)

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return NewVerdictProducerFrom(p, cfg.VerdictTopic), nil
}

// logDeliveryErrors drains the producer event channel until it is closed.
func logDeliveryErrors(p *kafka.Producer) {
	for e := range p.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			slog.Warn("[KafkaClient] Delivery failed",
				slog.String("key", string(m.Key)),
				slog.String("error", m.TopicPartition.Error.Error()))
		}
	}
}

func (vp *VerdictProducer) Close() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if remaining := vp.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	vp.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// PublishResults writes the whole batch inside a single transaction. Either
// every verdict becomes visible to read_committed consumers or none does.
func (vp *VerdictProducer) PublishResults(ctx context.Context, results []models.AnalysisResult) error {
	if len(results) == 0 {
		return nil
	}

	messages, err := VerdictMessages(vp.topic, results)
	if err != nil {
		return err
	}

	if err := vp.producer.BeginTransaction(); err != nil {
		return fmt.Errorf("[KafkaClient] failed to begin transaction: %w", err)
	}

	for _, msg := range messages {
		if err := vp.produce(msg); err != nil {
			return vp.abort(ctx, err)
		}
	}

	if err := vp.commit(ctx); err != nil {
		return err
	}

	slog.Info("[KafkaClient] Published verdict batch transactionally",
		slog.String("topic", vp.topic),
		slog.Int("count", len(messages)))
	return nil
}

// commit retries retriable commit failures. Anything else, or running out of
// attempts, aborts so the next batch can begin a fresh transaction.
func (vp *VerdictProducer) commit(ctx context.Context) error {
	var err error
	for i := 0; i < PUBLISH_ATTEMPTS; i++ {
		err = vp.producer.CommitTransaction(ctx)
		if err == nil {
			return nil
		}

		var tErr txnError
		if !errors.As(err, &tErr) || !tErr.IsRetriable() || tErr.TxnRequiresAbort() {
			break
		}
		slog.Warn("[KafkaClient] Commit transaction failed, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	return vp.abort(ctx, fmt.Errorf("failed to commit transaction: %w", err))
}

func (vp *VerdictProducer) produce(msg *kafka.Message) error {
	var err error
	for i := 0; i < PUBLISH_ATTEMPTS; i++ {
		err = vp.producer.Produce(msg, nil)
		if err == nil {
			return nil
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		var kafkaErr kafka.Error
		if !errors.As(err, &kafkaErr) || kafkaErr.Code() != kafka.ErrQueueFull {
			break
		}
		vp.producer.Flush(FLUSH_TIMEOUT_MS / 10)
	}
	return err
}

func (vp *VerdictProducer) abort(ctx context.Context, cause error) error {
	if abortErr := vp.producer.AbortTransaction(ctx); abortErr != nil {
		return fmt.Errorf("[KafkaClient] failed to abort transaction after %v: %w", cause, abortErr)
	}
	return fmt.Errorf("[KafkaClient] transaction aborted: %w", cause)
}

// VerdictMessages encodes results as Kafka messages keyed by request id.
func VerdictMessages(topic string, results []models.AnalysisResult) ([]*kafka.Message, error) {
	messages := make([]*kafka.Message, 0, len(results))
	for _, result := range results {
		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("[KafkaClient] failed to encode verdict %s: %w", result.RequestID, err)
		}
		messages = append(messages, &kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
			Key:            []byte(result.RequestID),
			Value:          data,
			Headers: []kafka.Header{
				{Key: "recommendation", Value: []byte(result.Verdict.Recommendation)},
			},
		})
	}
	return messages, nil
}
