package kafka

// Topic definitions for Kafka event streaming
const (
	// TopicPredictionLogged receives one event per stored prediction
	TopicPredictionLogged = "predictions.logged"
)
