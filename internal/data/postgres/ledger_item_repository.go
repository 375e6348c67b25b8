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

	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
)

const ledgerItemColumns = `id, entry_id, account_id, date, amount, direction, narration,
		reconciliation_id, is_reconciled, investigation_note, created_at`

// LedgerItemRepository implements ledgeritem.Repository for PostgreSQL
type LedgerItemRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewLedgerItemRepository creates a new PostgreSQL ledger item repository
func NewLedgerItemRepository(logger *slog.Logger, db *persistence.PostgresDB) ledgeritem.Repository {
	return &LedgerItemRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a copy of the repository bound to the transaction
func (r *LedgerItemRepository) WithTx(tx pgx.Tx) ledgeritem.Repository {
	return &LedgerItemRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new ledger transaction item. A primary key conflict maps
// to ErrDuplicateItem so feed redeliveries can be dropped quietly.
func (r *LedgerItemRepository) Create(ctx context.Context, item *ledgeritem.Item) error {
	query := `
		INSERT INTO ledger_transaction_items (id, entry_id, account_id, date, amount, direction,
			narration, reconciliation_id, is_reconciled, investigation_note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		item.ID,
		item.EntryID,
		item.AccountID,
		item.Date,
		item.Amount,
		item.Direction,
		item.Narration,
		item.ReconciliationID,
		item.IsReconciled,
		item.InvestigationNote,
		item.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ledgeritem.ErrDuplicateItem{ItemID: item.ID}
		}
		r.logger.Error("Failed to create ledger item", "id", item.ID.String(), "error", err)
		return fmt.Errorf("failed to create ledger item: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger item by its ID
func (r *LedgerItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledgeritem.Item, error) {
	query := `
		SELECT ` + ledgerItemColumns + `
		FROM ledger_transaction_items
		WHERE id = $1
	`

	item, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledgeritem.ErrItemNotFound{ItemID: id}
		}
		r.logger.Error("Failed to get ledger item", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger item: %w", err)
	}

	return item, nil
}

// ListByAccountAndRange returns items for the account dated within [from, to)
// in chronological order.
func (r *LedgerItemRepository) ListByAccountAndRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]*ledgeritem.Item, error) {
	query := `
		SELECT ` + ledgerItemColumns + `
		FROM ledger_transaction_items
		WHERE account_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC, created_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query, accountID, from, to)
	if err != nil {
		r.logger.Error("Failed to list ledger items by range", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list ledger items by range: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ListCarryOver returns items dated strictly before the given instant that
// are either still unreconciled or already claimed by this reconciliation.
// Including the latter keeps previously ticked carry-over items visible so
// they can be unticked.
func (r *LedgerItemRepository) ListCarryOver(ctx context.Context, accountID uuid.UUID, before time.Time, reconciliationID uuid.UUID) ([]*ledgeritem.Item, error) {
	query := `
		SELECT ` + ledgerItemColumns + `
		FROM ledger_transaction_items
		WHERE account_id = $1 AND date < $2
			AND (is_reconciled = false OR reconciliation_id = $3)
		ORDER BY date ASC, created_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query, accountID, before, reconciliationID)
	if err != nil {
		r.logger.Error("Failed to list carry-over ledger items", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list carry-over ledger items: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// ClaimSet ticks the given items for the reconciliation. The guard clause
// skips rows held by a different reconciliation, so the caller compares the
// returned count against len(ids) to detect contention.
func (r *LedgerItemRepository) ClaimSet(ctx context.Context, reconciliationID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE ledger_transaction_items
		SET reconciliation_id = $1, is_reconciled = true
		WHERE id = ANY($2)
			AND (is_reconciled = false OR reconciliation_id = $1)
	`

	result, err := r.querier.Exec(ctx, query, reconciliationID, ids)
	if err != nil {
		r.logger.Error("Failed to claim ledger items", "reconciliation_id", reconciliationID.String(), "error", err)
		return 0, fmt.Errorf("failed to claim ledger items: %w", err)
	}

	return result.RowsAffected(), nil
}

// ReleaseSet unticks the given items if currently held by the reconciliation
func (r *LedgerItemRepository) ReleaseSet(ctx context.Context, reconciliationID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE ledger_transaction_items
		SET reconciliation_id = NULL, is_reconciled = false
		WHERE id = ANY($1) AND reconciliation_id = $2
	`

	_, err := r.querier.Exec(ctx, query, ids, reconciliationID)
	if err != nil {
		r.logger.Error("Failed to release ledger items", "reconciliation_id", reconciliationID.String(), "error", err)
		return fmt.Errorf("failed to release ledger items: %w", err)
	}

	return nil
}

// ReleaseAll unticks every item held by the reconciliation
func (r *LedgerItemRepository) ReleaseAll(ctx context.Context, reconciliationID uuid.UUID) (int64, error) {
	query := `
		UPDATE ledger_transaction_items
		SET reconciliation_id = NULL, is_reconciled = false
		WHERE reconciliation_id = $1
	`

	result, err := r.querier.Exec(ctx, query, reconciliationID)
	if err != nil {
		r.logger.Error("Failed to release all ledger items", "reconciliation_id", reconciliationID.String(), "error", err)
		return 0, fmt.Errorf("failed to release all ledger items: %w", err)
	}

	return result.RowsAffected(), nil
}

// ListClaimedIDs returns the ids of all items currently held by the reconciliation
func (r *LedgerItemRepository) ListClaimedIDs(ctx context.Context, reconciliationID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM ledger_transaction_items
		WHERE reconciliation_id = $1
	`

	rows, err := r.querier.Query(ctx, query, reconciliationID)
	if err != nil {
		r.logger.Error("Failed to list claimed ledger item ids", "reconciliation_id", reconciliationID.String(), "error", err)
		return nil, fmt.Errorf("failed to list claimed ledger item ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan claimed ledger item id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over claimed ledger item ids: %w", err)
	}

	return ids, nil
}

// SumClaimed totals the claimed items by direction. COALESCE keeps the sums
// at zero for an empty tick set.
func (r *LedgerItemRepository) SumClaimed(ctx context.Context, reconciliationID uuid.UUID) (ledgeritem.Sums, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'DEBIT'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'CREDIT'), 0)
		FROM ledger_transaction_items
		WHERE reconciliation_id = $1
	`

	var sums ledgeritem.Sums
	if err := r.querier.QueryRow(ctx, query, reconciliationID).Scan(&sums.Debits, &sums.Credits); err != nil {
		r.logger.Error("Failed to sum claimed ledger items", "reconciliation_id", reconciliationID.String(), "error", err)
		return ledgeritem.Sums{}, fmt.Errorf("failed to sum claimed ledger items: %w", err)
	}

	return sums, nil
}

// SetInvestigationNote updates the free-text note on an item
func (r *LedgerItemRepository) SetInvestigationNote(ctx context.Context, id uuid.UUID, note string) error {
	query := `
		UPDATE ledger_transaction_items
		SET investigation_note = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, note, id)
	if err != nil {
		r.logger.Error("Failed to set investigation note", "id", id.String(), "error", err)
		return fmt.Errorf("failed to set investigation note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ledgeritem.ErrItemNotFound{ItemID: id}
	}

	return nil
}

func (r *LedgerItemRepository) collect(rows pgx.Rows) ([]*ledgeritem.Item, error) {
	var items []*ledgeritem.Item
	for rows.Next() {
		item, err := r.scanOne(rows)
		if err != nil {
			r.logger.Error("Failed to scan ledger item row", "error", err)
			return nil, fmt.Errorf("failed to scan ledger item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over ledger item rows", "error", err)
		return nil, fmt.Errorf("error iterating over ledger item rows: %w", err)
	}

	return items, nil
}

func (r *LedgerItemRepository) scanOne(row pgx.Row) (*ledgeritem.Item, error) {
	var item ledgeritem.Item
	err := row.Scan(
		&item.ID,
		&item.EntryID,
		&item.AccountID,
		&item.Date,
		&item.Amount,
		&item.Direction,
		&item.Narration,
		&item.ReconciliationID,
		&item.IsReconciled,
		&item.InvestigationNote,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
