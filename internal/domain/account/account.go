// Package account models the ledger accounts reconciliations run against.
// Accounts are mastered by the surrounding accounting system; this engine
// only reads them to validate references and seed opening balances.
package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName       = errors.New("account name cannot be empty")
	ErrEmptyCode       = errors.New("account code cannot be empty")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter code")
)

// LedgerAccount is a cash or bank account with dated debit/credit postings.
type LedgerAccount struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Code             string          `json:"code"`
	InceptionBalance decimal.Decimal `json:"inception_balance"`
	Currency         string          `json:"currency"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewLedgerAccount validates and builds a ledger account record.
func NewLedgerAccount(name, code string, inceptionBalance decimal.Decimal, currency string) (*LedgerAccount, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if code == "" {
		return nil, ErrEmptyCode
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}

	return &LedgerAccount{
		ID:               uuid.New(),
		Name:             name,
		Code:             code,
		InceptionBalance: inceptionBalance,
		Currency:         currency,
		CreatedAt:        time.Now(),
	}, nil
}
