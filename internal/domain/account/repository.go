package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines read access to ledger account master data.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*LedgerAccount, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ErrAccountNotFound indicates a missing ledger account.
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "ledger account not found: " + e.AccountID.String()
}
