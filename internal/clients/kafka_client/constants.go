package kafka_client

import "time"

const (
	KAFKA_TOPIC_ANALYSIS_REQUESTS = "review-analysis-requests" // products waiting for a verdict
	KAFKA_TOPIC_VERDICTS          = "review-verdicts"          // verdicts keyed by request id
)

const (
	MAX_RETRIES       = 5
	RETRY_DELAY       = 2 * time.Second
	POLL_TIMEOUT      = 100 * time.Millisecond
	FLUSH_TIMEOUT_MS  = 5000
	TRANSACTIONAL_ID  = "consia-verdict-producer"
	PUBLISH_ATTEMPTS  = 3
	TRANSACTION_LIMIT = 30 * time.Second
)
