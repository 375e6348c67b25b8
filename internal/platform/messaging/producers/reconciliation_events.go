// Package producers holds the Kafka writers: the async reconciliation events
// producer fed by the outbox relay, and the synchronous dead letter producer
// used by the feed consumer.
package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/bank-reconciliation-engine/internal/config"
)

// ReconciliationEventProducer publishes reconciliation lifecycle events.
// Delivery guarantees come from the outbox, so the writer runs async.
type ReconciliationEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewReconciliationEventProducer creates the events producer and ensures the
// topic exists.
func NewReconciliationEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ReconciliationEventProducer, error) {
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("kafka events topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for events producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.EventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure events topic %s exists: %w", cfg.EventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventsTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write event messages asynchronously", "topic", cfg.EventsTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote event messages asynchronously", "topic", cfg.EventsTopic, "count", len(messages))
			}
		},
	}

	return &ReconciliationEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EventsTopic,
	}, nil
}

// Publish writes a single event keyed by account so consumers see one
// account's events in order.
func (p *ReconciliationEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal event message value: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event message",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish event message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published event message",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *ReconciliationEventProducer) Close() error {
	p.logger.Info("Closing reconciliation events Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close events kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
