package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bank-reconciliation-engine/internal/domain/account"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
)

// AccountRepository implements account.Repository for PostgreSQL. Ledger
// account master data is maintained by the surrounding accounting system;
// this engine only reads it.
type AccountRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetByID retrieves a ledger account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.LedgerAccount, error) {
	query := `
		SELECT id, name, code, inception_balance, currency, created_at
		FROM ledger_accounts
		WHERE id = $1
	`

	var acc account.LedgerAccount
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&acc.ID,
		&acc.Name,
		&acc.Code,
		&acc.InceptionBalance,
		&acc.Currency,
		&acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get ledger account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger account: %w", err)
	}

	return &acc, nil
}

// Exists reports whether a ledger account with the given ID exists
func (r *AccountRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM ledger_accounts WHERE id = $1)
	`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		r.logger.Error("Failed to check ledger account existence", "id", id.String(), "error", err)
		return false, fmt.Errorf("failed to check ledger account existence: %w", err)
	}

	return exists, nil
}
