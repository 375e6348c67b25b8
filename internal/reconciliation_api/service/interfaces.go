// Package service implements the reconciliation engine's use cases on top of
// the domain repositories. Every mutating operation runs inside a single
// PostgreSQL transaction with a row lock on the reconciliation, so derived
// balances always match the persisted tick state.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bank-reconciliation-engine/internal/domain/account"
	"github.com/bank-reconciliation-engine/internal/domain/audit"
	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/domain/period"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
)

// TxRunner runs a function within a database transaction. Satisfied by
// persistence.PostgresDB.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// ItemView is a ledger transaction item decorated with the running book
// balance up to and including that item.
type ItemView struct {
	*ledgeritem.Item
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// EligibleTransactions is the working set a draft reconciliation may tick:
// the period's own items plus unreconciled carry-over from earlier periods.
// Running balances fold the opening balance through the current-period items
// in chronological order; carry-over items carry no running balance, they
// only widen what may be ticked.
type EligibleTransactions struct {
	Reconciliation *reconciliation.Reconciliation `json:"reconciliation"`
	CarryOver      []*ledgeritem.Item             `json:"carry_over"`
	Current        []ItemView                     `json:"current"`
}

// ReportSnapshot is the full state of a reconciliation for reporting:
// balances, the ticked ledger with running balances, the outstanding items,
// and adjustments.
type ReportSnapshot struct {
	Reconciliation   *reconciliation.Reconciliation `json:"reconciliation"`
	Account          *account.LedgerAccount         `json:"account"`
	TickedItems      []ItemView                     `json:"ticked_items"`
	OutstandingItems []*ledgeritem.Item             `json:"outstanding_items"`
	Adjustments      []*reconciliation.Adjustment   `json:"adjustments"`
	TickedDebits     decimal.Decimal                `json:"ticked_debits"`
	TickedCredits    decimal.Decimal                `json:"ticked_credits"`
}

// MatchingService covers the draft-phase operations: opening a
// reconciliation, inspecting the eligible set, and maintaining the tick set.
type MatchingService interface {
	// OpenReconciliation opens a draft for the account and period. The opening
	// balance is derived, never caller-supplied.
	// Returns ErrDraftExists, ErrPeriodOutOfRange or ErrAccountNotFound.
	OpenReconciliation(ctx context.Context, accountID uuid.UUID, p period.Period, statementClosingBalance decimal.Decimal, actor string) (*reconciliation.Reconciliation, error)

	// GetEligibleTransactions returns the tickable item sets with running
	// balances.
	GetEligibleTransactions(ctx context.Context, reconciliationID uuid.UUID) (*EligibleTransactions, error)

	// SetTickedSet replaces the reconciliation's ticked set with exactly the
	// given items and returns the recomputed record. Submitting the same set
	// twice is a no-op. Returns ErrItemClaimed when another reconciliation
	// holds a requested item, ErrItemNotEligible for items outside the
	// eligible sets, ErrInvalidState unless the record is Draft.
	SetTickedSet(ctx context.Context, reconciliationID uuid.UUID, itemIDs []uuid.UUID, actor string) (*reconciliation.Reconciliation, error)

	// SetStatementBalance replaces the statement closing balance on a draft.
	SetStatementBalance(ctx context.Context, reconciliationID uuid.UUID, balance decimal.Decimal, actor string) (*reconciliation.Reconciliation, error)

	// SetInvestigationNote annotates a ledger item with a free-text note.
	SetInvestigationNote(ctx context.Context, itemID uuid.UUID, note string, actor string) error
}

// WorkflowService covers lifecycle transitions past the draft phase.
type WorkflowService interface {
	// Finalize moves a Draft to Completed once the difference is within
	// tolerance. Idempotent on an already Completed record.
	Finalize(ctx context.Context, reconciliationID uuid.UUID, notes, actor string) (*reconciliation.Reconciliation, error)

	// Lock permanently freezes a Completed reconciliation. Idempotent on an
	// already Locked record.
	Lock(ctx context.Context, reconciliationID uuid.UUID, actor string) (*reconciliation.Reconciliation, error)

	// Delete tears down a Draft or Completed reconciliation: claimed items are
	// released, adjustments removed, the record deleted. Locked records cannot
	// be deleted.
	Delete(ctx context.Context, reconciliationID uuid.UUID, actor string) error
}

// AdjustmentService manages manual adjustments on draft reconciliations.
type AdjustmentService interface {
	// CreateAdjustment records an adjustment and returns it together with the
	// recomputed reconciliation.
	CreateAdjustment(ctx context.Context, reconciliationID uuid.UUID, adjType reconciliation.AdjustmentType, amount decimal.Decimal, targetAccountID uuid.UUID, description, actor string) (*reconciliation.Adjustment, *reconciliation.Reconciliation, error)

	// ListAdjustments returns the reconciliation's adjustments in creation
	// order.
	ListAdjustments(ctx context.Context, reconciliationID uuid.UUID) ([]*reconciliation.Adjustment, error)
}

// ReportService covers the read-only surfaces.
type ReportService interface {
	// GetReconciliation returns a reconciliation by id.
	GetReconciliation(ctx context.Context, reconciliationID uuid.UUID) (*reconciliation.Reconciliation, error)

	// ListReconciliations returns a page of the account's reconciliations,
	// newest period first, with the total count.
	ListReconciliations(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*reconciliation.Reconciliation, int64, error)

	// GetReport assembles the reconciliation report snapshot.
	GetReport(ctx context.Context, reconciliationID uuid.UUID) (*ReportSnapshot, error)

	// GetAuditTrail returns a page of the reconciliation's audit events,
	// newest first, with the total count.
	GetAuditTrail(ctx context.Context, reconciliationID uuid.UUID, page, perPage int) ([]*audit.Event, int64, error)
}
