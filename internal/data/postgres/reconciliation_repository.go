// Package postgres provides PostgreSQL implementations of the domain
// repositories. All mutating engine operations compose these repositories
// inside a single pgx transaction via WithTx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bank-reconciliation-engine/internal/domain/period"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
)

const reconciliationColumns = `id, account_id, period, opening_balance, statement_closing_balance,
		reconciled_balance, difference, status, notes, finalized_by, finalized_at, created_at, updated_at`

// ReconciliationRepository implements reconciliation.Repository for PostgreSQL
type ReconciliationRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewReconciliationRepository creates a new PostgreSQL reconciliation repository
func NewReconciliationRepository(logger *slog.Logger, db *persistence.PostgresDB) reconciliation.Repository {
	return &ReconciliationRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so reconciliation updates
// commit atomically with item claims and adjustment changes.
func (r *ReconciliationRepository) WithTx(tx pgx.Tx) reconciliation.Repository {
	return &ReconciliationRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new draft. The partial unique index on
// (account_id, period) WHERE status = 'DRAFT' backstops the one-draft rule;
// a conflict surfaces as ErrDraftExists.
func (r *ReconciliationRepository) Create(ctx context.Context, rec *reconciliation.Reconciliation) error {
	query := `
		INSERT INTO reconciliations (id, account_id, period, opening_balance, statement_closing_balance,
			reconciled_balance, difference, status, notes, finalized_by, finalized_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.AccountID,
		rec.Period.Start(),
		rec.OpeningBalance,
		rec.StatementClosingBalance,
		rec.ReconciledBalance,
		rec.Difference,
		rec.Status,
		rec.Notes,
		rec.FinalizedBy,
		rec.FinalizedAt,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return reconciliation.ErrDraftExists{AccountID: rec.AccountID, Period: rec.Period}
		}
		r.logger.Error("Failed to create reconciliation", "id", rec.ID.String(), "error", err)
		return fmt.Errorf("failed to create reconciliation: %w", err)
	}

	return nil
}

// GetByID retrieves a reconciliation by its ID
func (r *ReconciliationRepository) GetByID(ctx context.Context, id uuid.UUID) (*reconciliation.Reconciliation, error) {
	query := `
		SELECT ` + reconciliationColumns + `
		FROM reconciliations
		WHERE id = $1
	`

	rec, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reconciliation.ErrNotFound{ID: id}
		}
		r.logger.Error("Failed to get reconciliation", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get reconciliation: %w", err)
	}

	return rec, nil
}

// LockForUpdate obtains a row lock on the reconciliation and returns its
// current state. Used within a transaction to serialize tick-set submissions
// and lifecycle transitions.
func (r *ReconciliationRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*reconciliation.Reconciliation, error) {
	query := `
		SELECT ` + reconciliationColumns + `
		FROM reconciliations
		WHERE id = $1
		FOR UPDATE
	`

	rec, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reconciliation.ErrNotFound{ID: id}
		}
		r.logger.Error("Failed to lock reconciliation for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock reconciliation for update: %w", err)
	}

	return rec, nil
}

// Update persists the mutable fields of a reconciliation
func (r *ReconciliationRepository) Update(ctx context.Context, rec *reconciliation.Reconciliation) error {
	query := `
		UPDATE reconciliations
		SET statement_closing_balance = $1, reconciled_balance = $2, difference = $3,
			status = $4, notes = $5, finalized_by = $6, finalized_at = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := r.querier.Exec(ctx, query,
		rec.StatementClosingBalance,
		rec.ReconciledBalance,
		rec.Difference,
		rec.Status,
		rec.Notes,
		rec.FinalizedBy,
		rec.FinalizedAt,
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update reconciliation", "id", rec.ID.String(), "error", err)
		return fmt.Errorf("failed to update reconciliation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return reconciliation.ErrNotFound{ID: rec.ID}
	}

	return nil
}

// Delete removes a reconciliation record. Adjustments cascade at the schema
// level; releasing claimed items is the caller's responsibility within the
// same transaction.
func (r *ReconciliationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM reconciliations
		WHERE id = $1
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete reconciliation", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete reconciliation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return reconciliation.ErrNotFound{ID: id}
	}

	return nil
}

// GetDraft returns the open draft for the account and period, if any
func (r *ReconciliationRepository) GetDraft(ctx context.Context, accountID uuid.UUID, p period.Period) (*reconciliation.Reconciliation, error) {
	query := `
		SELECT ` + reconciliationColumns + `
		FROM reconciliations
		WHERE account_id = $1 AND period = $2 AND status = $3
	`

	rec, err := r.scanOne(r.querier.QueryRow(ctx, query, accountID, p.Start(), reconciliation.StatusDraft))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reconciliation.ErrNotFound{}
		}
		r.logger.Error("Failed to get draft reconciliation", "account_id", accountID.String(), "period", p.String(), "error", err)
		return nil, fmt.Errorf("failed to get draft reconciliation: %w", err)
	}

	return rec, nil
}

// GetLatestFinalized returns the most recently finalized (Completed or
// Locked) reconciliation for the account, used to carry the opening balance
// forward.
func (r *ReconciliationRepository) GetLatestFinalized(ctx context.Context, accountID uuid.UUID) (*reconciliation.Reconciliation, error) {
	query := `
		SELECT ` + reconciliationColumns + `
		FROM reconciliations
		WHERE account_id = $1 AND status IN ($2, $3)
		ORDER BY period DESC
		LIMIT 1
	`

	rec, err := r.scanOne(r.querier.QueryRow(ctx, query, accountID, reconciliation.StatusCompleted, reconciliation.StatusLocked))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reconciliation.ErrNotFound{}
		}
		r.logger.Error("Failed to get latest finalized reconciliation", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to get latest finalized reconciliation: %w", err)
	}

	return rec, nil
}

// ListByAccount returns reconciliations for the account, newest period first
func (r *ReconciliationRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*reconciliation.Reconciliation, error) {
	query := `
		SELECT ` + reconciliationColumns + `
		FROM reconciliations
		WHERE account_id = $1
		ORDER BY period DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list reconciliations", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list reconciliations: %w", err)
	}
	defer rows.Close()

	var recs []*reconciliation.Reconciliation
	for rows.Next() {
		rec, err := r.scanOne(rows)
		if err != nil {
			r.logger.Error("Failed to scan reconciliation row", "error", err)
			return nil, fmt.Errorf("failed to scan reconciliation row: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over reconciliation rows", "error", err)
		return nil, fmt.Errorf("error iterating over reconciliation rows: %w", err)
	}

	return recs, nil
}

// CountByAccount counts reconciliations for the account
func (r *ReconciliationRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM reconciliations
		WHERE account_id = $1
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		r.logger.Error("Failed to count reconciliations", "account_id", accountID.String(), "error", err)
		return 0, fmt.Errorf("failed to count reconciliations: %w", err)
	}

	return count, nil
}

// scanOne reads one reconciliation row, converting the stored period date
// back into its month value.
func (r *ReconciliationRepository) scanOne(row pgx.Row) (*reconciliation.Reconciliation, error) {
	var rec reconciliation.Reconciliation
	var periodDate time.Time

	err := row.Scan(
		&rec.ID,
		&rec.AccountID,
		&periodDate,
		&rec.OpeningBalance,
		&rec.StatementClosingBalance,
		&rec.ReconciledBalance,
		&rec.Difference,
		&rec.Status,
		&rec.Notes,
		&rec.FinalizedBy,
		&rec.FinalizedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Period = period.FromTime(periodDate)
	return &rec, nil
}
