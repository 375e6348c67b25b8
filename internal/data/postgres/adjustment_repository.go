package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
)

// AdjustmentRepository implements reconciliation.AdjustmentRepository for PostgreSQL
type AdjustmentRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAdjustmentRepository creates a new PostgreSQL adjustment repository
func NewAdjustmentRepository(logger *slog.Logger, db *persistence.PostgresDB) reconciliation.AdjustmentRepository {
	return &AdjustmentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to the transaction
func (r *AdjustmentRepository) WithTx(tx pgx.Tx) reconciliation.AdjustmentRepository {
	return &AdjustmentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new adjustment
func (r *AdjustmentRepository) Create(ctx context.Context, adj *reconciliation.Adjustment) error {
	query := `
		INSERT INTO reconciliation_adjustments (id, reconciliation_id, type, amount,
			target_account_id, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		adj.ID,
		adj.ReconciliationID,
		adj.Type,
		adj.Amount,
		adj.TargetAccountID,
		adj.Description,
		adj.CreatedBy,
		adj.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create adjustment", "id", adj.ID.String(), "error", err)
		return fmt.Errorf("failed to create adjustment: %w", err)
	}

	return nil
}

// ListByReconciliation returns the adjustments recorded against the
// reconciliation in creation order.
func (r *AdjustmentRepository) ListByReconciliation(ctx context.Context, reconciliationID uuid.UUID) ([]*reconciliation.Adjustment, error) {
	query := `
		SELECT id, reconciliation_id, type, amount, target_account_id, description, created_by, created_at
		FROM reconciliation_adjustments
		WHERE reconciliation_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query, reconciliationID)
	if err != nil {
		r.logger.Error("Failed to list adjustments", "reconciliation_id", reconciliationID.String(), "error", err)
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []*reconciliation.Adjustment
	for rows.Next() {
		var adj reconciliation.Adjustment
		err := rows.Scan(
			&adj.ID,
			&adj.ReconciliationID,
			&adj.Type,
			&adj.Amount,
			&adj.TargetAccountID,
			&adj.Description,
			&adj.CreatedBy,
			&adj.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan adjustment row", "error", err)
			return nil, fmt.Errorf("failed to scan adjustment row: %w", err)
		}
		adjustments = append(adjustments, &adj)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over adjustment rows", "error", err)
		return nil, fmt.Errorf("error iterating over adjustment rows: %w", err)
	}

	return adjustments, nil
}

// SumByReconciliation totals adjustments by type
func (r *AdjustmentRepository) SumByReconciliation(ctx context.Context, reconciliationID uuid.UUID) (reconciliation.AdjustmentSums, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'DEBIT'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'CREDIT'), 0)
		FROM reconciliation_adjustments
		WHERE reconciliation_id = $1
	`

	var sums reconciliation.AdjustmentSums
	if err := r.querier.QueryRow(ctx, query, reconciliationID).Scan(&sums.Debits, &sums.Credits); err != nil {
		r.logger.Error("Failed to sum adjustments", "reconciliation_id", reconciliationID.String(), "error", err)
		return reconciliation.AdjustmentSums{}, fmt.Errorf("failed to sum adjustments: %w", err)
	}

	return sums, nil
}

// DeleteByReconciliation removes all adjustments for the reconciliation
func (r *AdjustmentRepository) DeleteByReconciliation(ctx context.Context, reconciliationID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM reconciliation_adjustments
		WHERE reconciliation_id = $1
	`

	result, err := r.querier.Exec(ctx, query, reconciliationID)
	if err != nil {
		r.logger.Error("Failed to delete adjustments", "reconciliation_id", reconciliationID.String(), "error", err)
		return 0, fmt.Errorf("failed to delete adjustments: %w", err)
	}

	return result.RowsAffected(), nil
}
