package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bank-reconciliation-engine/internal/domain/audit"
	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/domain/outbox"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
)

// WorkflowServiceImpl implements the WorkflowService interface
type WorkflowServiceImpl struct {
	logger     *slog.Logger
	txRunner   TxRunner
	recRepo    reconciliation.Repository
	adjRepo    reconciliation.AdjustmentRepository
	itemRepo   ledgeritem.Repository
	outboxRepo outbox.Repository
	auditRepo  audit.Repository
	tolerance  decimal.Decimal
}

// NewWorkflowService creates a new workflow service
func NewWorkflowService(
	logger *slog.Logger,
	txRunner TxRunner,
	recRepo reconciliation.Repository,
	adjRepo reconciliation.AdjustmentRepository,
	itemRepo ledgeritem.Repository,
	outboxRepo outbox.Repository,
	auditRepo audit.Repository,
	tolerance decimal.Decimal,
) WorkflowService {
	return &WorkflowServiceImpl{
		logger:     logger,
		txRunner:   txRunner,
		recRepo:    recRepo,
		adjRepo:    adjRepo,
		itemRepo:   itemRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		tolerance:  tolerance,
	}
}

// Finalize moves a Draft to Completed. Balances are recomputed from the
// authoritative rows under the row lock before the tolerance gate, so a
// stale in-memory difference can never sneak a finalization through.
func (s *WorkflowServiceImpl) Finalize(ctx context.Context, reconciliationID uuid.UUID, notes, actor string) (*reconciliation.Reconciliation, error) {
	var rec *reconciliation.Reconciliation
	var transitioned bool

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		recRepo := s.recRepo.WithTx(tx)

		var err error
		rec, err = recRepo.LockForUpdate(ctx, reconciliationID)
		if err != nil {
			return err
		}

		if rec.IsDraft() {
			tickedSums, err := s.itemRepo.WithTx(tx).SumClaimed(ctx, rec.ID)
			if err != nil {
				return err
			}
			adjSums, err := s.adjRepo.WithTx(tx).SumByReconciliation(ctx, rec.ID)
			if err != nil {
				return err
			}
			rec.Recompute(tickedSums, adjSums)
		}

		wasDraft := rec.IsDraft()
		if err := rec.Finalize(notes, actor, s.tolerance); err != nil {
			return err
		}
		transitioned = wasDraft

		if !transitioned {
			return nil
		}
		if err := recRepo.Update(ctx, rec); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, rec, shared.EventReconciliationFinalized, actor)
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.logger.Info("Reconciliation finalized",
			"reconciliation_id", rec.ID.String(),
			"difference", rec.Difference.String(),
			"finalized_by", actor,
		)
		s.recordAudit(ctx, rec, audit.ActionFinalized, actor, map[string]any{
			"difference":         rec.Difference.String(),
			"reconciled_balance": rec.ReconciledBalance.String(),
		})
	}

	return rec, nil
}

// Lock permanently freezes a Completed reconciliation
func (s *WorkflowServiceImpl) Lock(ctx context.Context, reconciliationID uuid.UUID, actor string) (*reconciliation.Reconciliation, error) {
	var rec *reconciliation.Reconciliation
	var transitioned bool

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		recRepo := s.recRepo.WithTx(tx)

		var err error
		rec, err = recRepo.LockForUpdate(ctx, reconciliationID)
		if err != nil {
			return err
		}

		wasLocked := rec.Status == reconciliation.StatusLocked
		if err := rec.Lock(); err != nil {
			return err
		}
		transitioned = !wasLocked

		if !transitioned {
			return nil
		}
		if err := recRepo.Update(ctx, rec); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, rec, shared.EventReconciliationLocked, actor)
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.logger.Info("Reconciliation locked", "reconciliation_id", rec.ID.String(), "actor", actor)
		s.recordAudit(ctx, rec, audit.ActionLocked, actor, nil)
	}

	return rec, nil
}

// Delete tears down a Draft or Completed reconciliation in one transaction:
// claimed items are released back to the unreconciled pool, adjustments are
// removed, and a DELETED event is enqueued.
func (s *WorkflowServiceImpl) Delete(ctx context.Context, reconciliationID uuid.UUID, actor string) error {
	var rec *reconciliation.Reconciliation
	var released, adjustmentsRemoved int64

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		recRepo := s.recRepo.WithTx(tx)

		var err error
		rec, err = recRepo.LockForUpdate(ctx, reconciliationID)
		if err != nil {
			return err
		}
		if !rec.CanDelete() {
			return reconciliation.ErrInvalidState{Status: rec.Status, Operation: "delete"}
		}

		released, err = s.itemRepo.WithTx(tx).ReleaseAll(ctx, rec.ID)
		if err != nil {
			return err
		}
		adjustmentsRemoved, err = s.adjRepo.WithTx(tx).DeleteByReconciliation(ctx, rec.ID)
		if err != nil {
			return err
		}
		if err := recRepo.Delete(ctx, rec.ID); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, rec, shared.EventReconciliationDeleted, actor)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Reconciliation deleted",
		"reconciliation_id", rec.ID.String(),
		"items_released", released,
		"adjustments_removed", adjustmentsRemoved,
	)
	s.recordAudit(ctx, rec, audit.ActionDeleted, actor, map[string]any{
		"items_released":      released,
		"adjustments_removed": adjustmentsRemoved,
	})

	return nil
}

// enqueueEvent writes a lifecycle event to the outbox within the caller's
// transaction. The poller publishes it to Kafka after commit.
func (s *WorkflowServiceImpl) enqueueEvent(ctx context.Context, tx pgx.Tx, rec *reconciliation.Reconciliation, eventType shared.EventType, actor string) error {
	event := &shared.ReconciliationEvent{
		EventType:         eventType,
		ReconciliationID:  rec.ID,
		AccountID:         rec.AccountID,
		Period:            rec.Period.String(),
		ReconciledBalance: rec.ReconciledBalance,
		Difference:        rec.Difference,
		Actor:             actor,
		OccurredAt:        time.Now().UTC(),
	}

	message, err := outbox.NewMessage(event)
	if err != nil {
		return err
	}
	return s.outboxRepo.WithTx(tx).Create(ctx, message)
}

func (s *WorkflowServiceImpl) recordAudit(ctx context.Context, rec *reconciliation.Reconciliation, action audit.Action, actor string, details map[string]any) {
	event := audit.NewEvent(rec.ID, rec.AccountID, action, actor, details)
	if err := s.auditRepo.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record audit event",
			"reconciliation_id", rec.ID.String(),
			"action", string(action),
			"error", err,
		)
	}
}
