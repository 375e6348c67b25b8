package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentType tells whether an adjustment raises or lowers the reconciled
// balance.
type AdjustmentType string

const (
	AdjustmentDebit  AdjustmentType = "DEBIT"
	AdjustmentCredit AdjustmentType = "CREDIT"
)

// Valid reports whether the adjustment type is one of the two known values.
func (t AdjustmentType) Valid() bool {
	return t == AdjustmentDebit || t == AdjustmentCredit
}

// Adjustment is a manual correction recorded against a draft reconciliation
// to explain a residual difference (bank fees, timing errors). It only moves
// the reconciliation-side derived balance; posting a real double-entry
// correction is the accounting system's concern.
type Adjustment struct {
	ID               uuid.UUID       `json:"id"`
	ReconciliationID uuid.UUID       `json:"reconciliation_id"`
	Type             AdjustmentType  `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	TargetAccountID  uuid.UUID       `json:"target_account_id"`
	Description      string          `json:"description"`
	CreatedBy        string          `json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
}

// AdjustmentSums holds the debit and credit adjustment totals for one
// reconciliation.
type AdjustmentSums struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// NewAdjustment validates and builds an adjustment. The owning record must be
// checked for Draft status by the caller, under the same lock that applies
// the recomputation.
func NewAdjustment(reconciliationID uuid.UUID, adjType AdjustmentType, amount decimal.Decimal, targetAccountID uuid.UUID, description, createdBy string) (*Adjustment, error) {
	if !adjType.Valid() {
		return nil, ErrInvalidAdjustmentType
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if description == "" {
		return nil, ErrEmptyDescription
	}

	return &Adjustment{
		ID:               uuid.New(),
		ReconciliationID: reconciliationID,
		Type:             adjType,
		Amount:           amount,
		TargetAccountID:  targetAccountID,
		Description:      description,
		CreatedBy:        createdBy,
		CreatedAt:        time.Now().UTC(),
	}, nil
}
