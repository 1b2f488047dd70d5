package clients

import "time"

const (
	AWS_APP_ID         = "consia"
	AWS_DEFAULT_REGION = "us-west-2"
	AWS_MAX_ATTEMPTS   = 5
	MODEL_SYNC_TIMEOUT = 2 * time.Minute
)
