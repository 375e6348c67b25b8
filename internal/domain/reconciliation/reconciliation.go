// Package reconciliation holds the Reconciliation aggregate: the record that
// matches one ledger account against one bank statement for one period,
// together with its manual adjustments and the Draft/Completed/Locked
// lifecycle.
package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/domain/period"
)

// Status is the lifecycle state of a reconciliation.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusCompleted Status = "COMPLETED"
	StatusLocked    Status = "LOCKED"
)

// DefaultTolerance is the rounding guard within which a difference counts as
// resolved for finalization.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Reconciliation matches a ledger account against an externally reported
// statement balance for a single period.
type Reconciliation struct {
	ID                      uuid.UUID       `json:"id"`
	AccountID               uuid.UUID       `json:"account_id"`
	Period                  period.Period   `json:"period"`
	OpeningBalance          decimal.Decimal `json:"opening_balance"`
	StatementClosingBalance decimal.Decimal `json:"statement_closing_balance"`
	ReconciledBalance       decimal.Decimal `json:"reconciled_balance"`
	Difference              decimal.Decimal `json:"difference"`
	Status                  Status          `json:"status"`
	Notes                   string          `json:"notes,omitempty"`
	FinalizedBy             string          `json:"finalized_by,omitempty"`
	FinalizedAt             *time.Time      `json:"finalized_at,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// New opens a draft reconciliation. The opening balance is carried over from
// the last finalized period (or the account's inception balance), never
// user-entered. With nothing ticked yet the reconciled balance equals the
// opening balance.
func New(accountID uuid.UUID, p period.Period, openingBalance, statementClosingBalance decimal.Decimal) *Reconciliation {
	now := time.Now().UTC()
	r := &Reconciliation{
		ID:                      uuid.New(),
		AccountID:               accountID,
		Period:                  p,
		OpeningBalance:          openingBalance,
		StatementClosingBalance: statementClosingBalance,
		ReconciledBalance:       openingBalance,
		Status:                  StatusDraft,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	r.Difference = statementClosingBalance.Sub(r.ReconciledBalance)
	return r
}

// IsDraft reports whether the record still accepts mutations.
func (r *Reconciliation) IsDraft() bool {
	return r.Status == StatusDraft
}

// Recompute rederives the balance fields from the ticked-item and adjustment
// totals:
//
//	reconciled = opening + ticked debits - ticked credits
//	                     + adjustment debits - adjustment credits
//	difference = statement closing - reconciled
func (r *Reconciliation) Recompute(ticked ledgeritem.Sums, adjustments AdjustmentSums) {
	r.ReconciledBalance = r.OpeningBalance.
		Add(ticked.Debits).Sub(ticked.Credits).
		Add(adjustments.Debits).Sub(adjustments.Credits)
	r.Difference = r.StatementClosingBalance.Sub(r.ReconciledBalance)
	r.UpdatedAt = time.Now().UTC()
}

// SetStatementBalance replaces the externally reported closing balance.
// Allowed only while Draft; the difference is rederived in place.
func (r *Reconciliation) SetStatementBalance(balance decimal.Decimal) error {
	if !r.IsDraft() {
		return ErrInvalidState{Status: r.Status, Operation: "set statement balance"}
	}
	r.StatementClosingBalance = balance
	r.Difference = balance.Sub(r.ReconciledBalance)
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Finalize moves Draft to Completed once the difference is within tolerance.
// Calling it on an already Completed record is a no-op.
func (r *Reconciliation) Finalize(notes, finalizedBy string, tolerance decimal.Decimal) error {
	switch r.Status {
	case StatusCompleted:
		return nil
	case StatusLocked:
		return ErrInvalidState{Status: r.Status, Operation: "finalize"}
	}

	if r.Difference.Abs().GreaterThan(tolerance) {
		return ErrUnresolvedDifference{Difference: r.Difference, Tolerance: tolerance}
	}

	now := time.Now().UTC()
	r.Status = StatusCompleted
	r.Notes = notes
	r.FinalizedBy = finalizedBy
	r.FinalizedAt = &now
	r.UpdatedAt = now
	return nil
}

// Lock freezes a Completed reconciliation permanently. Calling it on an
// already Locked record is a no-op; locking a Draft is rejected.
func (r *Reconciliation) Lock() error {
	switch r.Status {
	case StatusLocked:
		return nil
	case StatusDraft:
		return ErrInvalidState{Status: r.Status, Operation: "lock"}
	}
	r.Status = StatusLocked
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// CanDelete reports whether the record may still be torn down. Locked
// reconciliations are immutable, deletion included.
func (r *Reconciliation) CanDelete() bool {
	return r.Status != StatusLocked
}
