package ledgeritem

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Sums holds the debit and credit totals over a set of items.
type Sums struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// Repository manages ledger transaction items and their tick state.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// ListByAccountAndRange returns items for the account dated within
	// [from, to), in chronological order.
	ListByAccountAndRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]*Item, error)

	// ListCarryOver returns items for the account dated strictly before the
	// given instant that are either unreconciled or already claimed by the
	// given reconciliation, in chronological order.
	ListCarryOver(ctx context.Context, accountID uuid.UUID, before time.Time, reconciliationID uuid.UUID) ([]*Item, error)

	// ClaimSet ticks the given items for the reconciliation. It refuses items
	// already held by a different reconciliation: the returned count equals
	// len(ids) only when every requested item was claimed.
	ClaimSet(ctx context.Context, reconciliationID uuid.UUID, ids []uuid.UUID) (int64, error)

	// ReleaseSet unticks the given items if currently held by the
	// reconciliation.
	ReleaseSet(ctx context.Context, reconciliationID uuid.UUID, ids []uuid.UUID) error

	// ReleaseAll unticks every item held by the reconciliation and returns
	// how many were released.
	ReleaseAll(ctx context.Context, reconciliationID uuid.UUID) (int64, error)

	// ListClaimedIDs returns the ids of all items currently held by the
	// reconciliation.
	ListClaimedIDs(ctx context.Context, reconciliationID uuid.UUID) ([]uuid.UUID, error)

	// SumClaimed totals the claimed items by direction.
	SumClaimed(ctx context.Context, reconciliationID uuid.UUID) (Sums, error)

	SetInvestigationNote(ctx context.Context, id uuid.UUID, note string) error

	WithTx(tx pgx.Tx) Repository
}

// ErrItemNotFound indicates a missing ledger transaction item.
type ErrItemNotFound struct {
	ItemID uuid.UUID
}

func (e ErrItemNotFound) Error() string {
	return "ledger transaction item not found: " + e.ItemID.String()
}

// ErrDuplicateItem indicates the feed delivered an item id twice.
type ErrDuplicateItem struct {
	ItemID uuid.UUID
}

func (e ErrDuplicateItem) Error() string {
	return "duplicate ledger transaction item: " + e.ItemID.String()
}
