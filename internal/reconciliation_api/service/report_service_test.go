package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bank-reconciliation-engine/internal/domain/audit"
	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
)

func newReportServiceForTest() (*MockReconciliationRepository, *MockLedgerItemRepository, *MockAdjustmentRepository, *MockAccountRepository, *MockAuditRepository, ReportService) {
	recRepo := new(MockReconciliationRepository)
	itemRepo := new(MockLedgerItemRepository)
	adjRepo := new(MockAdjustmentRepository)
	accountRepo := new(MockAccountRepository)
	auditRepo := new(MockAuditRepository)
	svc := NewReportService(newTestLogger(), recRepo, itemRepo, adjRepo, accountRepo, auditRepo)
	return recRepo, itemRepo, adjRepo, accountRepo, auditRepo, svc
}

func TestGetReconciliation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		recRepo, _, _, _, _, svc := newReportServiceForTest()
		rec := testDraft(uuid.New())

		recRepo.On("GetByID", ctx, rec.ID).Return(rec, nil).Once()

		got, err := svc.GetReconciliation(ctx, rec.ID)

		assert.NoError(t, err)
		assert.Equal(t, rec, got)
	})

	t.Run("Not found", func(t *testing.T) {
		recRepo, _, _, _, _, svc := newReportServiceForTest()
		id := uuid.New()

		recRepo.On("GetByID", ctx, id).Return(nil, reconciliation.ErrNotFound{ID: id}).Once()

		got, err := svc.GetReconciliation(ctx, id)

		assert.Nil(t, got)
		var notFound reconciliation.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestListReconciliations(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("Success with pagination", func(t *testing.T) {
		recRepo, _, _, _, _, svc := newReportServiceForTest()
		recs := []*reconciliation.Reconciliation{testDraft(accountID)}

		recRepo.On("ListByAccount", ctx, accountID, 10, 10).Return(recs, nil).Once()
		recRepo.On("CountByAccount", ctx, accountID).Return(int64(25), nil).Once()

		got, total, err := svc.ListReconciliations(ctx, accountID, 2, 10)

		assert.NoError(t, err)
		assert.Equal(t, recs, got)
		assert.Equal(t, int64(25), total)
		recRepo.AssertExpectations(t)
	})

	t.Run("List error", func(t *testing.T) {
		recRepo, _, _, _, _, svc := newReportServiceForTest()

		recRepo.On("ListByAccount", ctx, accountID, 20, 0).Return(nil, assert.AnError).Once()

		got, total, err := svc.ListReconciliations(ctx, accountID, 1, 20)

		assert.Nil(t, got)
		assert.Zero(t, total)
		assert.Error(t, err)
	})
}

func TestGetReport(t *testing.T) {
	ctx := context.Background()

	t.Run("Success splits ticked and outstanding items", func(t *testing.T) {
		recRepo, itemRepo, adjRepo, accountRepo, _, svc := newReportServiceForTest()
		acc := testAccount()
		rec := testDraft(acc.ID)

		carryTicked := testItem(acc.ID, time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC), "200.00", ledgeritem.DirectionCredit)
		carryTicked.ReconciliationID = &rec.ID
		carryTicked.IsReconciled = true

		ticked := testItem(acc.ID, time.Date(2026, time.April, 5, 0, 0, 0, 0, time.UTC), "600.00", ledgeritem.DirectionDebit)
		ticked.ReconciliationID = &rec.ID
		ticked.IsReconciled = true

		outstanding := testItem(acc.ID, time.Date(2026, time.April, 12, 0, 0, 0, 0, time.UTC), "100.00", ledgeritem.DirectionCredit)

		otherRec := uuid.New()
		foreign := testItem(acc.ID, time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC), "42.00", ledgeritem.DirectionDebit)
		foreign.ReconciliationID = &otherRec
		foreign.IsReconciled = true

		adj, err := reconciliation.NewAdjustment(rec.ID, reconciliation.AdjustmentDebit, decimal.RequireFromString("10.00"), uuid.New(), "bank interest", "jane")
		assert.NoError(t, err)

		recRepo.On("GetByID", ctx, rec.ID).Return(rec, nil).Once()
		accountRepo.On("GetByID", ctx, acc.ID).Return(acc, nil).Once()
		itemRepo.On("ListCarryOver", ctx, acc.ID, rec.Period.Start(), rec.ID).Return([]*ledgeritem.Item{carryTicked}, nil).Once()
		itemRepo.On("ListByAccountAndRange", ctx, acc.ID, rec.Period.Start(), rec.Period.End()).Return([]*ledgeritem.Item{ticked, outstanding, foreign}, nil).Once()
		adjRepo.On("ListByReconciliation", ctx, rec.ID).Return([]*reconciliation.Adjustment{adj}, nil).Once()
		itemRepo.On("SumClaimed", ctx, rec.ID).Return(ledgeritem.Sums{
			Debits:  decimal.RequireFromString("600.00"),
			Credits: decimal.RequireFromString("200.00"),
		}, nil).Once()

		report, err := svc.GetReport(ctx, rec.ID)

		assert.NoError(t, err)
		assert.Equal(t, rec, report.Reconciliation)
		assert.Equal(t, acc, report.Account)
		assert.Len(t, report.TickedItems, 2)
		assert.Equal(t, carryTicked.ID, report.TickedItems[0].ID)
		assert.Equal(t, ticked.ID, report.TickedItems[1].ID)
		// The ticked ledger folds from the opening balance of 1000.00.
		assert.True(t, report.TickedItems[0].RunningBalance.Equal(decimal.RequireFromString("800.00")))
		assert.True(t, report.TickedItems[1].RunningBalance.Equal(decimal.RequireFromString("1400.00")))
		// Items held by another reconciliation are neither ticked here nor
		// outstanding.
		assert.Len(t, report.OutstandingItems, 1)
		assert.Equal(t, outstanding.ID, report.OutstandingItems[0].ID)
		assert.Len(t, report.Adjustments, 1)
		assert.True(t, report.TickedDebits.Equal(decimal.RequireFromString("600.00")))
		assert.True(t, report.TickedCredits.Equal(decimal.RequireFromString("200.00")))
		itemRepo.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		recRepo, itemRepo, _, _, _, svc := newReportServiceForTest()
		id := uuid.New()

		recRepo.On("GetByID", ctx, id).Return(nil, reconciliation.ErrNotFound{ID: id}).Once()

		report, err := svc.GetReport(ctx, id)

		assert.Nil(t, report)
		assert.Error(t, err)
		itemRepo.AssertNotCalled(t, "ListCarryOver", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetAuditTrail(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		recRepo, _, _, _, auditRepo, svc := newReportServiceForTest()
		rec := testDraft(uuid.New())
		events := []*audit.Event{
			audit.NewEvent(rec.ID, rec.AccountID, audit.ActionOpened, "jane", nil),
			audit.NewEvent(rec.ID, rec.AccountID, audit.ActionTickSetApplied, "jane", nil),
		}

		recRepo.On("GetByID", ctx, rec.ID).Return(rec, nil).Once()
		auditRepo.On("ListByReconciliation", ctx, rec.ID, 50, 0).Return(events, nil).Once()
		auditRepo.On("CountByReconciliation", ctx, rec.ID).Return(int64(2), nil).Once()

		got, total, err := svc.GetAuditTrail(ctx, rec.ID, 1, 50)

		assert.NoError(t, err)
		assert.Equal(t, events, got)
		assert.Equal(t, int64(2), total)
		auditRepo.AssertExpectations(t)
	})

	t.Run("Reconciliation not found", func(t *testing.T) {
		recRepo, _, _, _, auditRepo, svc := newReportServiceForTest()
		id := uuid.New()

		recRepo.On("GetByID", ctx, id).Return(nil, reconciliation.ErrNotFound{ID: id}).Once()

		got, total, err := svc.GetAuditTrail(ctx, id, 1, 50)

		assert.Nil(t, got)
		assert.Zero(t, total)
		assert.Error(t, err)
		auditRepo.AssertNotCalled(t, "ListByReconciliation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
