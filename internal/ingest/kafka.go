package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// RideRequestedEvent is the message published for every new ride request.
// The matcher re-reads the ride from the database, so the event only needs
// to carry the ID.
type RideRequestedEvent struct {
	RideID      string    `json:"ride_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// KafkaProducer publishes ride request events.
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a producer for the given brokers and topic.
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &KafkaProducer{writer: w}
}

// PublishRideRequested emits a ride request event keyed by ride ID, so
// retries for the same ride stay on one partition and arrive in order.
func (k *KafkaProducer) PublishRideRequested(ctx context.Context, rideID string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	b, err := json.Marshal(RideRequestedEvent{RideID: rideID, RequestedAt: time.Now()})
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(rideID), Value: b})
}

// Close flushes and closes the underlying writer.
func (k *KafkaProducer) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}

// NewKafkaReader creates a consumer-group reader for ride request events.
func NewKafkaReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  group,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
}
