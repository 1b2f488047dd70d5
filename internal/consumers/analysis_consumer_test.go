package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/consia/internal/analyzer"
	"github.com/spacesedan/consia/internal/models"
	"github.com/spacesedan/consia/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const happyReview = "The blender works great and the motor is strong, very happy with it so far."

var requestTopic = "review-analysis-requests"

type sliceSource struct {
	messages []*kafka.Message
	onEmpty  func()
}

func (s *sliceSource) Next() (*kafka.Message, error) {
	if len(s.messages) == 0 {
		if s.onEmpty != nil {
			s.onEmpty()
		}
		return nil, nil
	}
	msg := s.messages[0]
	s.messages = s.messages[1:]
	return msg, nil
}

type recordingCommitter struct {
	committed []*kafka.Message
}

func (r *recordingCommitter) Commit(msg *kafka.Message) error {
	r.committed = append(r.committed, msg)
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	batches  [][]models.AnalysisResult
	failures int
}

func (r *recordingPublisher) PublishResults(_ context.Context, results []models.AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("transaction aborted")
	}
	r.batches = append(r.batches, results)
	return nil
}

func message(t *testing.T, partition int32, offset kafka.Offset, body any) *kafka.Message {
	t.Helper()
	var data []byte
	switch v := body.(type) {
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(v)
		require.NoError(t, err)
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &requestTopic, Partition: partition, Offset: offset},
		Value:          data,
	}
}

func request(id string, reviews int) models.AnalysisRequest {
	r := models.AnalysisRequest{RequestID: id}
	for i := 0; i < reviews; i++ {
		r.Reviews = append(r.Reviews, happyReview)
	}
	return r
}

func newConsumer(source MessageSource, committer Committer, publisher ResultPublisher, opts ConsumerOptions) *AnalysisConsumer {
	c := NewAnalysisConsumer(source, committer, publisher, service.NewReviewService(analyzer.New(nil)), opts)
	c.retryDelay = time.Millisecond
	return c
}

func TestHandleAndFlush(t *testing.T) {
	committer := &recordingCommitter{}
	publisher := &recordingPublisher{}
	c := newConsumer(&sliceSource{}, committer, publisher, ConsumerOptions{BatchSize: 10})

	msgs := []*kafka.Message{
		message(t, 0, 10, request("req-1", 10)),
		message(t, 1, 3, request("req-2", 0)),
		message(t, 0, 11, "{not json"),
		message(t, 0, 12, request("", 2)),
	}
	for _, m := range msgs {
		assert.False(t, c.Handle(context.Background(), m))
	}

	require.NoError(t, c.Flush(context.Background()))

	require.Len(t, publisher.batches, 1)
	results := publisher.batches[0]
	require.Len(t, results, 2)
	assert.Equal(t, "req-1", results[0].RequestID)
	assert.Equal(t, models.RECOMMENDATION_WORTH_BUYING, results[0].Verdict.Recommendation)
	assert.Equal(t, models.DEFAULT_PRODUCT_TITLE, results[0].Verdict.Title)
	assert.Equal(t, models.RECOMMENDATION_NOT_ENOUGH_DATA, results[1].Verdict.Recommendation)

	// highest offset per partition, malformed messages included
	require.Len(t, committer.committed, 2)
	assert.Equal(t, kafka.Offset(12), committer.committed[0].TopicPartition.Offset)
	assert.Equal(t, kafka.Offset(3), committer.committed[1].TopicPartition.Offset)
}

func TestHandleRejectsOversizedRequests(t *testing.T) {
	publisher := &recordingPublisher{}
	committer := &recordingCommitter{}
	c := newConsumer(&sliceSource{}, committer, publisher, ConsumerOptions{MaxReviews: 3})

	c.Handle(context.Background(), message(t, 0, 1, request("req-1", 4)))
	require.NoError(t, c.Flush(context.Background()))

	assert.Empty(t, publisher.batches)
	assert.Len(t, committer.committed, 1)
}

func TestHandleReportsFullBuffer(t *testing.T) {
	c := newConsumer(&sliceSource{}, &recordingCommitter{}, &recordingPublisher{}, ConsumerOptions{BatchSize: 2})

	assert.False(t, c.Handle(context.Background(), message(t, 0, 1, request("a", 1))))
	assert.True(t, c.Handle(context.Background(), message(t, 0, 2, request("b", 1))))
}

func TestFlushRetriesPublish(t *testing.T) {
	publisher := &recordingPublisher{failures: 2}
	committer := &recordingCommitter{}
	c := newConsumer(&sliceSource{}, committer, publisher, ConsumerOptions{})

	c.Handle(context.Background(), message(t, 0, 1, request("a", 1)))
	require.NoError(t, c.Flush(context.Background()))
	assert.Len(t, publisher.batches, 1)
	assert.Len(t, committer.committed, 1)
}

func TestFlushFailureLeavesOffsetsUncommitted(t *testing.T) {
	publisher := &recordingPublisher{failures: 10}
	committer := &recordingCommitter{}
	c := newConsumer(&sliceSource{}, committer, publisher, ConsumerOptions{})

	c.Handle(context.Background(), message(t, 0, 1, request("a", 1)))
	assert.Error(t, c.Flush(context.Background()))
	assert.Empty(t, committer.committed)
}

func TestRunFlushesOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &sliceSource{
		messages: []*kafka.Message{
			message(t, 0, 1, request("a", 10)),
			message(t, 0, 2, request("b", 10)),
		},
		onEmpty: cancel,
	}
	publisher := &recordingPublisher{}
	committer := &recordingCommitter{}
	c := newConsumer(source, committer, publisher, ConsumerOptions{FlushInterval: time.Hour})

	require.NoError(t, c.Run(ctx))

	require.Len(t, publisher.batches, 1)
	assert.Len(t, publisher.batches[0], 2)
	require.Len(t, committer.committed, 1)
	assert.Equal(t, kafka.Offset(2), committer.committed[0].TopicPartition.Offset)
}
