package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/go-playground/validator/v10"
	"github.com/spacesedan/consia/internal/clients/kafka_client"
	"github.com/spacesedan/consia/internal/models"
	"github.com/spacesedan/consia/internal/utils"
)

type MessageSource interface {
	Next() (*kafka.Message, error)
}

type Committer interface {
	Commit(msg *kafka.Message) error
}

type ResultPublisher interface {
	PublishResults(ctx context.Context, results []models.AnalysisResult) error
}

type ReviewAnalyzer interface {
	Analyze(ctx context.Context, in models.ProductReviews) models.Verdict
}

// pendingMessage is a consumed message whose offset may only be committed
// once its verdict, if any, has been published.
type pendingMessage struct {
	msg    *kafka.Message
	result *models.AnalysisResult
}

type AnalysisConsumer struct {
	source    MessageSource
	committer Committer
	publisher ResultPublisher
	analyzer  ReviewAnalyzer
	validate  *validator.Validate

	buffer        *utils.BatchBuffer[pendingMessage]
	maxReviews    int
	flushInterval time.Duration
	retryDelay    time.Duration
}

type ConsumerOptions struct {
	BatchSize     int
	MaxReviews    int
	FlushInterval time.Duration
}

func NewAnalysisConsumer(source MessageSource, committer Committer, publisher ResultPublisher, analyzer ReviewAnalyzer, opts ConsumerOptions) *AnalysisConsumer {
	flushInterval := opts.FlushInterval
	if flushInterval <= 0 {
		flushInterval = utils.BATCH_TIMEOUT
	}

	return &AnalysisConsumer{
		source:        source,
		committer:     committer,
		publisher:     publisher,
		analyzer:      analyzer,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		buffer:        utils.NewBatchBuffer[pendingMessage](opts.BatchSize),
		maxReviews:    opts.MaxReviews,
		flushInterval: flushInterval,
		retryDelay:    kafka_client.RETRY_DELAY,
	}
}

// Register installs the analysis consumer for the request topic.
func Register(cfg kafka_client.KafkaConfig, publisher ResultPublisher, analyzer ReviewAnalyzer, opts ConsumerOptions) {
	kafka_client.RegisterConsumer(cfg.RequestTopic, func(ctx context.Context, consumer *kafka.Consumer) error {
		iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
		// offsets of the final flush are committed after ctx is cancelled
		committer := kafka_client.NewCommitHandler(context.WithoutCancel(ctx), consumer)
		return NewAnalysisConsumer(iterator, committer, publisher, analyzer, opts).Run(ctx)
	})
}

// Run consumes until ctx is done, then flushes what is buffered. It returns
// an error only when a batch could not be published; the uncommitted
// requests are redelivered after a restart.
func (c *AnalysisConsumer) Run(ctx context.Context) error {
	slog.Info("[AnalysisConsumer] Listening for messages...")

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[AnalysisConsumer] Stopping consumer...")
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), kafka_client.TRANSACTION_LIMIT)
			defer cancel()
			return c.Flush(flushCtx)
		case <-ticker.C:
			if err := c.Flush(ctx); err != nil {
				return err
			}
		default:
			msg, err := c.source.Next()
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					utils.HandleConsumerError(err)
				}
				continue
			}
			if msg == nil {
				continue
			}

			if full := c.Handle(ctx, msg); full {
				if err := c.Flush(ctx); err != nil {
					return err
				}
			}
		}
	}
}

// Handle analyzes one message and buffers its result. Malformed messages are
// buffered without a result so their offsets are still committed in order.
// It reports whether the buffer is full.
func (c *AnalysisConsumer) Handle(ctx context.Context, msg *kafka.Message) bool {
	req, err := c.decode(msg.Value)
	if err != nil {
		slog.Warn("[AnalysisConsumer] Skipping malformed request",
			slog.String("key", string(msg.Key)),
			slog.String("error", err.Error()))
		return c.buffer.Add(pendingMessage{msg: msg})
	}

	verdict := c.analyzer.Analyze(ctx, req.Product())
	slog.Debug("[AnalysisConsumer] Analyzed request",
		slog.String("request_id", req.RequestID),
		slog.String("recommendation", verdict.Recommendation))

	return c.buffer.Add(pendingMessage{
		msg:    msg,
		result: &models.AnalysisResult{RequestID: req.RequestID, Verdict: verdict},
	})
}

func (c *AnalysisConsumer) decode(data []byte) (models.AnalysisRequest, error) {
	var req models.AnalysisRequest
	if err := utils.DeserializeFromJSON(data, &req); err != nil {
		return req, err
	}
	if err := c.validate.Struct(req); err != nil {
		return req, fmt.Errorf("invalid request: %w", err)
	}
	if c.maxReviews > 0 && len(req.Reviews) > c.maxReviews {
		return req, fmt.Errorf("too many reviews: %d > %d", len(req.Reviews), c.maxReviews)
	}
	return req, nil
}

// Flush publishes buffered verdicts in one transaction and then commits the
// highest offset seen per partition.
func (c *AnalysisConsumer) Flush(ctx context.Context) error {
	batch := c.buffer.GetAndClear()
	if len(batch) == 0 {
		return nil
	}

	results := make([]models.AnalysisResult, 0, len(batch))
	for _, p := range batch {
		if p.result != nil {
			results = append(results, *p.result)
		}
	}

	if err := c.publish(ctx, results); err != nil {
		return err
	}

	for _, msg := range lastPerPartition(batch) {
		if err := c.committer.Commit(msg); err != nil {
			slog.Warn("[AnalysisConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (c *AnalysisConsumer) publish(ctx context.Context, results []models.AnalysisResult) error {
	if len(results) == 0 {
		return nil
	}

	var err error
	for i := 0; i < kafka_client.PUBLISH_ATTEMPTS; i++ {
		err = c.publisher.PublishResults(ctx, results)
		if err == nil {
			return nil
		}
		slog.Warn("[AnalysisConsumer] Batch publishing failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		time.Sleep(c.retryDelay)
	}
	return fmt.Errorf("[AnalysisConsumer] failed to publish %d verdicts: %w", len(results), err)
}

type partitionKey struct {
	topic     string
	partition int32
}

// lastPerPartition keeps the highest offset message per partition, in first
// seen order. Committing it covers every earlier offset.
func lastPerPartition(batch []pendingMessage) []*kafka.Message {
	latest := make(map[partitionKey]int)
	var out []*kafka.Message

	for _, p := range batch {
		tp := p.msg.TopicPartition
		key := partitionKey{partition: tp.Partition}
		if tp.Topic != nil {
			key.topic = *tp.Topic
		}

		idx, seen := latest[key]
		switch {
		case !seen:
			latest[key] = len(out)
			out = append(out, p.msg)
		case tp.Offset > out[idx].TopicPartition.Offset:
			out[idx] = p.msg
		}
	}
	return out
}
