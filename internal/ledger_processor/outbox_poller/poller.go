// Package outbox_poller relays pending reconciliation events from the
// transactional outbox to Kafka.
package outbox_poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/bank-reconciliation-engine/internal/config"
	"github.com/bank-reconciliation-engine/internal/domain/outbox"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
)

// Poller periodically drains the outbox and hands each pending message to
// the event publisher. Publish failures are retried on later polls until the
// attempt limit is reached.
type Poller struct {
	logger           *slog.Logger
	outboxRepo       outbox.Repository
	publisher        EventPublisher
	pollingInterval  time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	logger *slog.Logger,
	outboxRepo outbox.Repository,
	publisher EventPublisher,
	cfg *config.OutboxConfig,
) *Poller {
	return &Poller{
		logger:           logger,
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		pollingInterval:  cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start runs the polling loop until the context is canceled.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"polling_interval", p.pollingInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)

	ticker := time.NewTicker(p.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Stopping outbox poller")
			return
		case <-ticker.C:
			p.processPendingMessages(ctx)
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("Failed to fetch pending outbox messages", "error", err)
		return
	}

	if len(messages) == 0 {
		return
	}

	p.logger.Debug("Processing pending outbox messages", "count", len(messages))

	for _, message := range messages {
		if err := p.publisher.PublishEvent(ctx, message); err != nil {
			p.logger.Error("Failed to publish outbox message",
				"outbox_id", message.ID,
				"attempts", message.Attempts,
				"error", err,
			)

			if incErr := p.outboxRepo.IncrementAttempts(ctx, message.ID); incErr != nil {
				p.logger.Error("Failed to increment outbox attempts",
					"outbox_id", message.ID,
					"error", incErr,
				)
				continue
			}

			if message.Attempts+1 >= p.maxRetryAttempts {
				p.logger.Error("Outbox message exhausted retries, marking failed",
					"outbox_id", message.ID,
					"attempts", message.Attempts+1,
				)
				if markErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); markErr != nil {
					p.logger.Error("Failed to mark outbox message as failed",
						"outbox_id", message.ID,
						"error", markErr,
					)
				}
			}
			continue
		}
	}
}
