// Package ledgeritem models the dated, signed ledger transactions a
// reconciliation ticks off against the bank statement. Items are posted by
// the external accounting system; this engine owns only their
// reconciliation-linkage fields and the investigation note.
package ledgeritem

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction tells whether an item increases or decreases the book balance.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// Valid reports whether the direction is one of the two known values.
func (d Direction) Valid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// Item is a single ledger transaction eligible for reconciliation.
type Item struct {
	ID                uuid.UUID       `json:"id"`
	EntryID           uuid.UUID       `json:"entry_id"`
	AccountID         uuid.UUID       `json:"account_id"`
	Date              time.Time       `json:"date"`
	Amount            decimal.Decimal `json:"amount"` // Always positive; Direction carries the sign
	Direction         Direction       `json:"direction"`
	Narration         string          `json:"narration"`
	ReconciliationID  *uuid.UUID      `json:"reconciliation_id,omitempty"`
	IsReconciled      bool            `json:"is_reconciled"`
	InvestigationNote string          `json:"investigation_note,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Signed returns the amount with debit positive and credit negative, the
// convention used when folding items into a running balance.
func (i *Item) Signed() decimal.Decimal {
	if i.Direction == DirectionCredit {
		return i.Amount.Neg()
	}
	return i.Amount
}

// ClaimedBy reports whether the item is currently ticked for the given
// reconciliation.
func (i *Item) ClaimedBy(reconciliationID uuid.UUID) bool {
	return i.IsReconciled && i.ReconciliationID != nil && *i.ReconciliationID == reconciliationID
}

// ClaimedByOther reports whether a different reconciliation holds the item.
func (i *Item) ClaimedByOther(reconciliationID uuid.UUID) bool {
	return i.IsReconciled && i.ReconciliationID != nil && *i.ReconciliationID != reconciliationID
}
