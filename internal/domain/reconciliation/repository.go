package reconciliation

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bank-reconciliation-engine/internal/domain/period"
)

// Repository defines reconciliation persistence operations.
type Repository interface {
	Create(ctx context.Context, rec *Reconciliation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reconciliation, error)

	// LockForUpdate acquires a row lock on the reconciliation so concurrent
	// tick-set submissions serialize instead of interleaving.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Reconciliation, error)

	Update(ctx context.Context, rec *Reconciliation) error
	Delete(ctx context.Context, id uuid.UUID) error

	// GetDraft returns the open draft for the account+period, or ErrNotFound.
	GetDraft(ctx context.Context, accountID uuid.UUID, p period.Period) (*Reconciliation, error)

	// GetLatestFinalized returns the most recent Completed or Locked
	// reconciliation for the account by period, or ErrNotFound when the
	// account has never been reconciled.
	GetLatestFinalized(ctx context.Context, accountID uuid.UUID) (*Reconciliation, error)

	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Reconciliation, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// AdjustmentRepository defines adjustment persistence operations.
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *Adjustment) error
	ListByReconciliation(ctx context.Context, reconciliationID uuid.UUID) ([]*Adjustment, error)

	// SumByReconciliation totals adjustments by type.
	SumByReconciliation(ctx context.Context, reconciliationID uuid.UUID) (AdjustmentSums, error)

	// DeleteByReconciliation removes all adjustments as part of tearing down
	// the owning reconciliation, returning how many were removed.
	DeleteByReconciliation(ctx context.Context, reconciliationID uuid.UUID) (int64, error)

	WithTx(tx pgx.Tx) AdjustmentRepository
}
