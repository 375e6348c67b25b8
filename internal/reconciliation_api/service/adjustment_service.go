package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bank-reconciliation-engine/internal/domain/audit"
	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
)

// AdjustmentServiceImpl implements the AdjustmentService interface
type AdjustmentServiceImpl struct {
	logger    *slog.Logger
	txRunner  TxRunner
	recRepo   reconciliation.Repository
	adjRepo   reconciliation.AdjustmentRepository
	itemRepo  ledgeritem.Repository
	auditRepo audit.Repository
}

// NewAdjustmentService creates a new adjustment service
func NewAdjustmentService(
	logger *slog.Logger,
	txRunner TxRunner,
	recRepo reconciliation.Repository,
	adjRepo reconciliation.AdjustmentRepository,
	itemRepo ledgeritem.Repository,
	auditRepo audit.Repository,
) AdjustmentService {
	return &AdjustmentServiceImpl{
		logger:    logger,
		txRunner:  txRunner,
		recRepo:   recRepo,
		adjRepo:   adjRepo,
		itemRepo:  itemRepo,
		auditRepo: auditRepo,
	}
}

// CreateAdjustment records a manual adjustment against a draft and folds it
// into the reconciled balance in the same transaction.
func (s *AdjustmentServiceImpl) CreateAdjustment(ctx context.Context, reconciliationID uuid.UUID, adjType reconciliation.AdjustmentType, amount decimal.Decimal, targetAccountID uuid.UUID, description, actor string) (*reconciliation.Adjustment, *reconciliation.Reconciliation, error) {
	var rec *reconciliation.Reconciliation
	var adj *reconciliation.Adjustment

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		recRepo := s.recRepo.WithTx(tx)
		adjRepo := s.adjRepo.WithTx(tx)

		var err error
		rec, err = recRepo.LockForUpdate(ctx, reconciliationID)
		if err != nil {
			return err
		}
		if !rec.IsDraft() {
			return reconciliation.ErrInvalidState{Status: rec.Status, Operation: "adjust"}
		}

		adj, err = reconciliation.NewAdjustment(rec.ID, adjType, amount, targetAccountID, description, actor)
		if err != nil {
			return err
		}
		if err := adjRepo.Create(ctx, adj); err != nil {
			return err
		}

		tickedSums, err := s.itemRepo.WithTx(tx).SumClaimed(ctx, rec.ID)
		if err != nil {
			return err
		}
		adjSums, err := adjRepo.SumByReconciliation(ctx, rec.ID)
		if err != nil {
			return err
		}

		rec.Recompute(tickedSums, adjSums)
		return recRepo.Update(ctx, rec)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Adjustment created",
		"reconciliation_id", rec.ID.String(),
		"adjustment_id", adj.ID.String(),
		"type", string(adjType),
		"amount", amount.String(),
		"difference", rec.Difference.String(),
	)

	event := audit.NewEvent(rec.ID, rec.AccountID, audit.ActionAdjustmentCreated, actor, map[string]any{
		"adjustment_id": adj.ID.String(),
		"type":          string(adjType),
		"amount":        amount.String(),
		"description":   description,
	})
	if err := s.auditRepo.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record audit event",
			"reconciliation_id", rec.ID.String(),
			"action", string(audit.ActionAdjustmentCreated),
			"error", err,
		)
	}

	return adj, rec, nil
}

// ListAdjustments returns the reconciliation's adjustments in creation order
func (s *AdjustmentServiceImpl) ListAdjustments(ctx context.Context, reconciliationID uuid.UUID) ([]*reconciliation.Adjustment, error) {
	if _, err := s.recRepo.GetByID(ctx, reconciliationID); err != nil {
		return nil, err
	}
	return s.adjRepo.ListByReconciliation(ctx, reconciliationID)
}
