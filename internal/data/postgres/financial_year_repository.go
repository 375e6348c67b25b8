package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bank-reconciliation-engine/internal/domain/period"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
)

// FinancialYearRepository implements period.Provider against the
// financial_years table maintained by the accounting system.
type FinancialYearRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewFinancialYearRepository creates a new PostgreSQL financial year repository
func NewFinancialYearRepository(logger *slog.Logger, db *persistence.PostgresDB) period.Provider {
	return &FinancialYearRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// ActiveYearRange returns the month range of the financial year currently
// marked active.
func (r *FinancialYearRepository) ActiveYearRange(ctx context.Context) (period.FinancialYearRange, error) {
	query := `
		SELECT label, start_month, end_month
		FROM financial_years
		WHERE is_active = true
	`

	var label string
	var startMonth, endMonth time.Time
	err := r.querier.QueryRow(ctx, query).Scan(&label, &startMonth, &endMonth)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return period.FinancialYearRange{}, period.ErrNoActiveFinancialYear{}
		}
		r.logger.Error("Failed to get active financial year", "error", err)
		return period.FinancialYearRange{}, fmt.Errorf("failed to get active financial year: %w", err)
	}

	return period.FinancialYearRange{
		Label: label,
		From:  period.FromTime(startMonth),
		To:    period.FromTime(endMonth),
	}, nil
}
