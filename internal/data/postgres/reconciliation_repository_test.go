package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bank-reconciliation-engine/internal/domain/period"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var reconciliationRows = []string{
	"id", "account_id", "period", "opening_balance", "statement_closing_balance",
	"reconciled_balance", "difference", "status", "notes", "finalized_by",
	"finalized_at", "created_at", "updated_at",
}

func testReconciliation() *reconciliation.Reconciliation {
	now := time.Now().UTC()
	return &reconciliation.Reconciliation{
		ID:                      uuid.New(),
		AccountID:               uuid.New(),
		Period:                  period.Period{Year: 2025, Month: time.March},
		OpeningBalance:          decimal.RequireFromString("1000.00"),
		StatementClosingBalance: decimal.RequireFromString("1500.00"),
		ReconciledBalance:       decimal.RequireFromString("1000.00"),
		Difference:              decimal.RequireFromString("500.00"),
		Status:                  reconciliation.StatusDraft,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

func addReconciliationRow(rows *pgxmock.Rows, rec *reconciliation.Reconciliation) *pgxmock.Rows {
	return rows.AddRow(
		rec.ID, rec.AccountID, rec.Period.Start(), rec.OpeningBalance, rec.StatementClosingBalance,
		rec.ReconciledBalance, rec.Difference, rec.Status, rec.Notes, rec.FinalizedBy,
		rec.FinalizedAt, rec.CreatedAt, rec.UpdatedAt,
	)
}

func TestReconciliationRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ReconciliationRepository{querier: mock, logger: logger}
	rec := testReconciliation()

	query := `
		INSERT INTO reconciliations \(id, account_id, period, opening_balance, statement_closing_balance,
			reconciled_balance, difference, status, notes, finalized_by, finalized_at, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10, \$11, \$12, \$13\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(rec.ID, rec.AccountID, rec.Period.Start(), rec.OpeningBalance, rec.StatementClosingBalance,
				rec.ReconciledBalance, rec.Difference, rec.Status, rec.Notes, rec.FinalizedBy,
				rec.FinalizedAt, rec.CreatedAt, rec.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, rec)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(rec.ID, rec.AccountID, rec.Period.Start(), rec.OpeningBalance, rec.StatementClosingBalance,
				rec.ReconciledBalance, rec.Difference, rec.Status, rec.Notes, rec.FinalizedBy,
				rec.FinalizedAt, rec.CreatedAt, rec.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, rec)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create reconciliation")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate draft maps to conflict", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(rec.ID, rec.AccountID, rec.Period.Start(), rec.OpeningBalance, rec.StatementClosingBalance,
				rec.ReconciledBalance, rec.Difference, rec.Status, rec.Notes, rec.FinalizedBy,
				rec.FinalizedAt, rec.CreatedAt, rec.UpdatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_reconciliations_one_draft"})

		err := repo.Create(ctx, rec)
		assert.Error(t, err)
		var draftExists reconciliation.ErrDraftExists
		assert.ErrorAs(t, err, &draftExists)
		assert.Equal(t, rec.AccountID, draftExists.AccountID)
		assert.Equal(t, rec.Period, draftExists.Period)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReconciliationRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ReconciliationRepository{querier: mock, logger: logger}
	expected := testReconciliation()

	query := `
		SELECT id, account_id, period, opening_balance, statement_closing_balance,
		reconciled_balance, difference, status, notes, finalized_by, finalized_at, created_at, updated_at
		FROM reconciliations
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		rows := addReconciliationRow(pgxmock.NewRows(reconciliationRows), expected)
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnRows(rows)

		rec, err := repo.GetByID(ctx, expected.ID)
		assert.NoError(t, err)
		assert.Equal(t, expected, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnError(pgx.ErrNoRows)

		rec, err := repo.GetByID(ctx, expected.ID)
		assert.Error(t, err)
		assert.Nil(t, rec)
		var notFoundErr reconciliation.ErrNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, expected.ID, notFoundErr.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnError(dbErr)

		rec, err := repo.GetByID(ctx, expected.ID)
		assert.Error(t, err)
		assert.Nil(t, rec)
		assert.Contains(t, err.Error(), "failed to get reconciliation")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReconciliationRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ReconciliationRepository{querier: mock, logger: logger}
	expected := testReconciliation()

	query := `
		SELECT id, account_id, period, opening_balance, statement_closing_balance,
		reconciled_balance, difference, status, notes, finalized_by, finalized_at, created_at, updated_at
		FROM reconciliations
		WHERE id = \$1
		FOR UPDATE
	`

	t.Run("success", func(t *testing.T) {
		rows := addReconciliationRow(pgxmock.NewRows(reconciliationRows), expected)
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnRows(rows)

		rec, err := repo.LockForUpdate(ctx, expected.ID)
		assert.NoError(t, err)
		assert.Equal(t, expected, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnError(pgx.ErrNoRows)

		rec, err := repo.LockForUpdate(ctx, expected.ID)
		assert.Error(t, err)
		assert.Nil(t, rec)
		var notFoundErr reconciliation.ErrNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReconciliationRepository_Update(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ReconciliationRepository{querier: mock, logger: logger}
	rec := testReconciliation()

	query := `
		UPDATE reconciliations
		SET statement_closing_balance = \$1, reconciled_balance = \$2, difference = \$3,
			status = \$4, notes = \$5, finalized_by = \$6, finalized_at = \$7, updated_at = \$8
		WHERE id = \$9
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(rec.StatementClosingBalance, rec.ReconciledBalance, rec.Difference,
				rec.Status, rec.Notes, rec.FinalizedBy, rec.FinalizedAt, rec.UpdatedAt, rec.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Update(ctx, rec)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(rec.StatementClosingBalance, rec.ReconciledBalance, rec.Difference,
				rec.Status, rec.Notes, rec.FinalizedBy, rec.FinalizedAt, rec.UpdatedAt, rec.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, rec)
		assert.Error(t, err)
		var notFoundErr reconciliation.ErrNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, rec.ID, notFoundErr.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReconciliationRepository_Delete(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ReconciliationRepository{querier: mock, logger: logger}
	recID := uuid.New()

	query := `
		DELETE FROM reconciliations
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(recID).WillReturnResult(pgxmock.NewResult("DELETE", 1))

		err := repo.Delete(ctx, recID)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(recID).WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.Delete(ctx, recID)
		assert.Error(t, err)
		var notFoundErr reconciliation.ErrNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReconciliationRepository_GetDraft(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ReconciliationRepository{querier: mock, logger: logger}
	expected := testReconciliation()

	query := `
		SELECT id, account_id, period, opening_balance, statement_closing_balance,
		reconciled_balance, difference, status, notes, finalized_by, finalized_at, created_at, updated_at
		FROM reconciliations
		WHERE account_id = \$1 AND period = \$2 AND status = \$3
	`

	t.Run("success", func(t *testing.T) {
		rows := addReconciliationRow(pgxmock.NewRows(reconciliationRows), expected)
		mock.ExpectQuery(query).
			WithArgs(expected.AccountID, expected.Period.Start(), reconciliation.StatusDraft).
			WillReturnRows(rows)

		rec, err := repo.GetDraft(ctx, expected.AccountID, expected.Period)
		assert.NoError(t, err)
		assert.Equal(t, expected, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(expected.AccountID, expected.Period.Start(), reconciliation.StatusDraft).
			WillReturnError(pgx.ErrNoRows)

		rec, err := repo.GetDraft(ctx, expected.AccountID, expected.Period)
		assert.Error(t, err)
		assert.Nil(t, rec)
		var notFoundErr reconciliation.ErrNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReconciliationRepository_GetLatestFinalized(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ReconciliationRepository{querier: mock, logger: logger}
	expected := testReconciliation()
	expected.Status = reconciliation.StatusCompleted

	query := `
		SELECT id, account_id, period, opening_balance, statement_closing_balance,
		reconciled_balance, difference, status, notes, finalized_by, finalized_at, created_at, updated_at
		FROM reconciliations
		WHERE account_id = \$1 AND status IN \(\$2, \$3\)
		ORDER BY period DESC
		LIMIT 1
	`

	t.Run("success", func(t *testing.T) {
		rows := addReconciliationRow(pgxmock.NewRows(reconciliationRows), expected)
		mock.ExpectQuery(query).
			WithArgs(expected.AccountID, reconciliation.StatusCompleted, reconciliation.StatusLocked).
			WillReturnRows(rows)

		rec, err := repo.GetLatestFinalized(ctx, expected.AccountID)
		assert.NoError(t, err)
		assert.Equal(t, expected, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("never reconciled", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(expected.AccountID, reconciliation.StatusCompleted, reconciliation.StatusLocked).
			WillReturnError(pgx.ErrNoRows)

		rec, err := repo.GetLatestFinalized(ctx, expected.AccountID)
		assert.Error(t, err)
		assert.Nil(t, rec)
		var notFoundErr reconciliation.ErrNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReconciliationRepository_ListByAccount(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ReconciliationRepository{querier: mock, logger: logger}
	first := testReconciliation()
	second := testReconciliation()
	second.AccountID = first.AccountID
	second.Period = period.Period{Year: 2025, Month: time.February}

	query := `
		SELECT id, account_id, period, opening_balance, statement_closing_balance,
		reconciled_balance, difference, status, notes, finalized_by, finalized_at, created_at, updated_at
		FROM reconciliations
		WHERE account_id = \$1
		ORDER BY period DESC
		LIMIT \$2 OFFSET \$3
	`

	rows := pgxmock.NewRows(reconciliationRows)
	rows = addReconciliationRow(rows, first)
	rows = addReconciliationRow(rows, second)

	mock.ExpectQuery(query).WithArgs(first.AccountID, 20, 0).WillReturnRows(rows)

	recs, err := repo.ListByAccount(ctx, first.AccountID, 20, 0)
	assert.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, first, recs[0])
	assert.Equal(t, second, recs[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconciliationRepository_WithTx(t *testing.T) {
	logger := newTestLogger()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	originalRepo := &ReconciliationRepository{querier: mockPool, logger: logger}

	mockPool.ExpectBegin()
	pgxTx, err := mockPool.Begin(context.Background())
	require.NoError(t, err)

	txRepo := originalRepo.WithTx(pgxTx)

	assert.NotNil(t, txRepo)
	assert.Equal(t, originalRepo.logger, txRepo.(*ReconciliationRepository).logger)
	assert.Equal(t, pgxTx, txRepo.(*ReconciliationRepository).querier)

	assert.NoError(t, mockPool.ExpectationsWereMet())
}
