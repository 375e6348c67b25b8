// Package consumer handles the inbound ledger transaction feed topic.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/domain/account"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
	"github.com/bank-reconciliation-engine/internal/ledger_processor/service"
	"github.com/bank-reconciliation-engine/internal/platform/messaging/producers"
)

// LedgerFeedHandler handles incoming ledger transaction messages from Kafka
type LedgerFeedHandler struct {
	ingestionService service.IngestionService
	producer         producers.DeadLetterPublisher
	logger           *slog.Logger
}

// NewLedgerFeedHandler creates a new handler
func NewLedgerFeedHandler(
	logger *slog.Logger,
	ingestionService service.IngestionService,
	producer producers.DeadLetterPublisher,
) *LedgerFeedHandler {
	return &LedgerFeedHandler{
		ingestionService: ingestionService,
		producer:         producer,
		logger:           logger,
	}
}

// HandleMessage processes one feed message. Malformed or permanently invalid
// messages go to the DLQ and the offset is committed; transient failures are
// returned so the message is redelivered.
func (h *LedgerFeedHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var message shared.LedgerFeedMessage
	if err := json.Unmarshal(value, &message); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal ledger feed message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)
		return h.sendToDLQ(ctx, key, value, fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error()), err)
	}

	logger := h.logger
	if message.CorrelationID != "" {
		logger = h.logger.With("correlation_id", message.CorrelationID)
	}

	logger.Info("Received ledger feed message",
		"item_id", message.ItemID.String(),
		"account_id", message.AccountID.String(),
		"direction", message.Direction,
		"amount", message.Amount.String(),
	)

	if err := h.ingestionService.IngestItem(ctx, &message); err != nil {
		if isPermanent(err) {
			logger.Error("Rejecting invalid feed message",
				"item_id", message.ItemID.String(),
				"error", err,
			)
			return h.sendToDLQ(ctx, key, value, err.Error(), err)
		}

		logger.Error("Failed to ingest feed message",
			"item_id", message.ItemID.String(),
			"error", err,
		)
		return fmt.Errorf("ingesting feed item %s failed: %w", message.ItemID.String(), err)
	}

	return nil
}

// sendToDLQ parks the raw message on the dead letter topic. When that
// succeeds the offset is committed; when it fails the original error is
// returned so Kafka redelivers.
func (h *LedgerFeedHandler) sendToDLQ(ctx context.Context, key, value []byte, reason string, original error) error {
	if h.producer == nil {
		return fmt.Errorf("message rejected and no DLQ configured: %w", original)
	}

	if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"original_error", original,
			"message_key", string(key),
		)
		return fmt.Errorf("message rejected and DLQ publish failed: %w", original)
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
	return nil
}

// isPermanent reports whether retrying the message can never succeed.
func isPermanent(err error) bool {
	var accNotFound account.ErrAccountNotFound
	return errors.Is(err, shared.ErrInvalidDirection) ||
		errors.Is(err, shared.ErrInvalidFeedAmount) ||
		errors.As(err, &accNotFound)
}
