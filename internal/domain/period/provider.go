package period

import "context"

// FinancialYearRange bounds the months that may be reconciled.
type FinancialYearRange struct {
	Label string `json:"label"`
	From  Period `json:"from"`
	To    Period `json:"to"`
}

// Contains reports whether the period lies inside the range, inclusive.
func (r FinancialYearRange) Contains(p Period) bool {
	return !p.Before(r.From) && !p.After(r.To)
}

// Provider supplies the active financial year's month range. The engine only
// validates against it; maintaining financial years belongs to the
// surrounding accounting system.
type Provider interface {
	ActiveYearRange(ctx context.Context) (FinancialYearRange, error)
}

// ErrNoActiveFinancialYear indicates that no financial year is marked active.
type ErrNoActiveFinancialYear struct{}

func (e ErrNoActiveFinancialYear) Error() string {
	return "no active financial year configured"
}
