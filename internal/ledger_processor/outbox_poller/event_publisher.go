package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/domain/outbox"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/platform/messaging/producers"
)

// EventPublisher pushes one outbox message to the events topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// ReconciliationEventPublisher publishes reconciliation lifecycle events
// from the outbox to Kafka, keyed by account so consumers see each
// account's events in order.
type ReconciliationEventPublisher struct {
	logger     *slog.Logger
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
}

func NewReconciliationEventPublisher(
	logger *slog.Logger,
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
) *ReconciliationEventPublisher {
	return &ReconciliationEventPublisher{
		logger:     logger,
		outboxRepo: outboxRepo,
		producer:   producer,
	}
}

// PublishEvent decodes the stored event, publishes it, and marks the outbox
// row processed. An undecodable payload is marked failed immediately since
// retrying it can never succeed.
func (p *ReconciliationEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		p.logger.Error("Outbox message payload is not a valid event, marking failed",
			"outbox_id", message.ID,
			"error", err,
		)
		if markErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); markErr != nil {
			return fmt.Errorf("failed to mark undecodable outbox message %d: %w", message.ID, markErr)
		}
		return fmt.Errorf("failed to decode outbox message %d: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	if err := p.producer.Publish(ctx, event.AccountID.String(), event); err != nil {
		return fmt.Errorf("failed to publish event for outbox message %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		return fmt.Errorf("failed to mark outbox message %d processed: %w", message.ID, err)
	}

	logger.Info("Published reconciliation event",
		"outbox_id", message.ID,
		"event_type", event.EventType,
		"reconciliation_id", event.ReconciliationID.String(),
		"account_id", event.AccountID.String(),
	)
	return nil
}
