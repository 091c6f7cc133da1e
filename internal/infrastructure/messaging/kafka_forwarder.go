// Package messaging forwards domain events to Kafka for external consumers.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/t1tandr/uevent/internal/domain/shared"
	"github.com/t1tandr/uevent/internal/infrastructure/config"
	"github.com/t1tandr/uevent/internal/infrastructure/event"
)

// ErrKafkaDisabled is returned when forwarding is switched off
var ErrKafkaDisabled = errors.New("kafka forwarding is disabled")

// MessageWriter is the subset of *kafka.Writer the forwarder needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a writer that keeps per-aggregate ordering by
// hashing the message key
func NewKafkaWriter(cfg config.KafkaConfig) (*kafka.Writer, error) {
	if !cfg.Enabled {
		return nil, ErrKafkaDisabled
	}
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("kafka brokers and topic are required")
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}, nil
}

// KafkaForwarder is a wildcard event handler that publishes every domain
// event as a JSON envelope keyed by aggregate id
type KafkaForwarder struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafkaForwarder creates a forwarder over writer
func NewKafkaForwarder(writer MessageWriter, logger *zap.Logger) *KafkaForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaForwarder{writer: writer, logger: logger}
}

// EventTypes is empty so the forwarder receives all events
func (f *KafkaForwarder) EventTypes() []string {
	return nil
}

// Handle encodes and writes one event
func (f *KafkaForwarder) Handle(ctx context.Context, e shared.DomainEvent) error {
	value, err := event.Marshal(e)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(e.AggregateID().String()),
		Value: value,
		Time:  e.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.EventType())},
			{Key: "aggregate-type", Value: []byte(e.AggregateType())},
		},
	}
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to forward %s to kafka: %w", e.EventType(), err)
	}

	f.logger.Debug("event forwarded to kafka",
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()))
	return nil
}

// Close flushes and closes the writer
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}

var _ shared.EventHandler = (*KafkaForwarder)(nil)
