package kafka_client

import "github.com/spacesedan/consia/config"

type KafkaConfig struct {
	Broker       string
	GroupID      string
	RequestTopic string
	VerdictTopic string
}

func NewKafkaConfig(cfg config.Config) KafkaConfig {
	return KafkaConfig{
		Broker:       cfg.KafkaBroker,
		GroupID:      cfg.KafkaConsumerGroupID,
		RequestTopic: orDefault(cfg.KafkaRequestTopic, KAFKA_TOPIC_ANALYSIS_REQUESTS),
		VerdictTopic: orDefault(cfg.KafkaVerdictTopic, KAFKA_TOPIC_VERDICTS),
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
