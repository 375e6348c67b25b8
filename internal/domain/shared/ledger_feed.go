// Package shared holds the wire types exchanged with the surrounding
// accounting system: the inbound ledger transaction feed and the outbound
// reconciliation lifecycle events.
package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDirection  = errors.New("direction must be DEBIT or CREDIT")
	ErrInvalidFeedAmount = errors.New("feed amount must be positive")
)

// LedgerFeedMessage is a posted ledger transaction published by the external
// accounting system on the ledger transaction feed topic.
type LedgerFeedMessage struct {
	ItemID        uuid.UUID       `json:"item_id"`
	EntryID       uuid.UUID       `json:"entry_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Direction     string          `json:"direction"`
	Narration     string          `json:"narration"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	PostedAt      time.Time       `json:"posted_at"`
}
