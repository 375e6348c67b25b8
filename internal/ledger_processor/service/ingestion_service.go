package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bank-reconciliation-engine/internal/domain/account"
	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
)

// IngestionServiceImpl implements the IngestionService interface
type IngestionServiceImpl struct {
	logger      *slog.Logger
	itemRepo    ledgeritem.Repository
	accountRepo account.Repository
}

// NewIngestionService creates a new feed ingestion service
func NewIngestionService(
	logger *slog.Logger,
	itemRepo ledgeritem.Repository,
	accountRepo account.Repository,
) IngestionService {
	return &IngestionServiceImpl{
		logger:      logger,
		itemRepo:    itemRepo,
		accountRepo: accountRepo,
	}
}

// IngestItem validates a feed message and persists it as a ledger transaction
// item. Redelivered items are acknowledged without a second insert, so the
// feed may be replayed safely.
func (s *IngestionServiceImpl) IngestItem(ctx context.Context, message *shared.LedgerFeedMessage) error {
	logger := s.logger
	if message.CorrelationID != "" {
		logger = s.logger.With("correlation_id", message.CorrelationID)
	}

	direction := ledgeritem.Direction(message.Direction)
	if !direction.Valid() {
		return shared.ErrInvalidDirection
	}
	if !message.Amount.IsPositive() {
		return shared.ErrInvalidFeedAmount
	}

	exists, err := s.accountRepo.Exists(ctx, message.AccountID)
	if err != nil {
		return fmt.Errorf("failed to check account %s: %w", message.AccountID, err)
	}
	if !exists {
		return account.ErrAccountNotFound{AccountID: message.AccountID}
	}

	item := &ledgeritem.Item{
		ID:        message.ItemID,
		EntryID:   message.EntryID,
		AccountID: message.AccountID,
		Date:      message.Date,
		Amount:    message.Amount,
		Direction: direction,
		Narration: message.Narration,
		CreatedAt: message.PostedAt,
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		var duplicate ledgeritem.ErrDuplicateItem
		if errors.As(err, &duplicate) {
			logger.Info("Duplicate feed item acknowledged",
				"item_id", message.ItemID.String(),
				"account_id", message.AccountID.String(),
			)
			return nil
		}
		return fmt.Errorf("failed to store feed item %s: %w", message.ItemID, err)
	}

	logger.Info("Ledger transaction item ingested",
		"item_id", item.ID.String(),
		"account_id", item.AccountID.String(),
		"amount", item.Amount.String(),
		"direction", string(item.Direction),
	)
	return nil
}
