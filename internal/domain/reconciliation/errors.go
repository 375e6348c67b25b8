package reconciliation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bank-reconciliation-engine/internal/domain/period"
)

// Validation sentinels for malformed input.
var (
	ErrInvalidAdjustmentType = errors.New("adjustment type must be DEBIT or CREDIT")
	ErrNonPositiveAmount     = errors.New("amount must be positive")
	ErrEmptyDescription      = errors.New("description cannot be empty")
)

// ErrNotFound indicates a missing reconciliation.
type ErrNotFound struct {
	ID uuid.UUID
}

func (e ErrNotFound) Error() string {
	return "reconciliation not found: " + e.ID.String()
}

// ErrDraftExists rejects opening a second draft for the same account+period.
type ErrDraftExists struct {
	AccountID uuid.UUID
	Period    period.Period
}

func (e ErrDraftExists) Error() string {
	return fmt.Sprintf("a draft reconciliation already exists for account %s period %s", e.AccountID, e.Period)
}

// ErrPeriodOutOfRange rejects periods outside the active financial year.
type ErrPeriodOutOfRange struct {
	Period period.Period
	Range  period.FinancialYearRange
}

func (e ErrPeriodOutOfRange) Error() string {
	return fmt.Sprintf("period %s is outside the active financial year %s..%s", e.Period, e.Range.From, e.Range.To)
}

// ErrInvalidState rejects an operation attempted in the wrong lifecycle state.
type ErrInvalidState struct {
	Status    Status
	Operation string
}

func (e ErrInvalidState) Error() string {
	return fmt.Sprintf("cannot %s a %s reconciliation", e.Operation, e.Status)
}

// ErrUnresolvedDifference rejects finalization while the difference exceeds
// the tolerance. The current difference is carried so the caller can decide
// between more ticking and an adjustment.
type ErrUnresolvedDifference struct {
	Difference decimal.Decimal
	Tolerance  decimal.Decimal
}

func (e ErrUnresolvedDifference) Error() string {
	return fmt.Sprintf("difference %s exceeds tolerance %s", e.Difference, e.Tolerance)
}

// ErrItemClaimed rejects ticking an item another reconciliation holds.
type ErrItemClaimed struct {
	ItemID uuid.UUID
}

func (e ErrItemClaimed) Error() string {
	return "ledger transaction item is claimed by another reconciliation: " + e.ItemID.String()
}

// ErrItemNotEligible rejects ticking an item outside the reconciliation's
// current-period and carry-over sets.
type ErrItemNotEligible struct {
	ItemID uuid.UUID
}

func (e ErrItemNotEligible) Error() string {
	return "ledger transaction item is not eligible for this reconciliation: " + e.ItemID.String()
}
