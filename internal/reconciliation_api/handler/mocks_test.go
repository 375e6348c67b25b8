package handler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/bank-reconciliation-engine/internal/domain/audit"
	"github.com/bank-reconciliation-engine/internal/domain/period"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/reconciliation_api/service"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// PaginatedResponse is a generic version of Response for decoding paginated
// test responses
type PaginatedResponse[T any] struct {
	Data          []T        `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

func testReconciliation() *reconciliation.Reconciliation {
	return reconciliation.New(
		uuid.New(),
		period.Period{Year: 2026, Month: time.April},
		decimal.RequireFromString("1000.00"),
		decimal.RequireFromString("1500.00"),
	)
}

type MockMatchingService struct {
	mock.Mock
}

func (m *MockMatchingService) OpenReconciliation(ctx context.Context, accountID uuid.UUID, p period.Period, statementClosingBalance decimal.Decimal, actor string) (*reconciliation.Reconciliation, error) {
	args := m.Called(ctx, accountID, p, statementClosingBalance, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Reconciliation), args.Error(1)
}

func (m *MockMatchingService) GetEligibleTransactions(ctx context.Context, reconciliationID uuid.UUID) (*service.EligibleTransactions, error) {
	args := m.Called(ctx, reconciliationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EligibleTransactions), args.Error(1)
}

func (m *MockMatchingService) SetTickedSet(ctx context.Context, reconciliationID uuid.UUID, itemIDs []uuid.UUID, actor string) (*reconciliation.Reconciliation, error) {
	args := m.Called(ctx, reconciliationID, itemIDs, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Reconciliation), args.Error(1)
}

func (m *MockMatchingService) SetStatementBalance(ctx context.Context, reconciliationID uuid.UUID, balance decimal.Decimal, actor string) (*reconciliation.Reconciliation, error) {
	args := m.Called(ctx, reconciliationID, balance, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Reconciliation), args.Error(1)
}

func (m *MockMatchingService) SetInvestigationNote(ctx context.Context, itemID uuid.UUID, note string, actor string) error {
	args := m.Called(ctx, itemID, note, actor)
	return args.Error(0)
}

type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) Finalize(ctx context.Context, reconciliationID uuid.UUID, notes, actor string) (*reconciliation.Reconciliation, error) {
	args := m.Called(ctx, reconciliationID, notes, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Reconciliation), args.Error(1)
}

func (m *MockWorkflowService) Lock(ctx context.Context, reconciliationID uuid.UUID, actor string) (*reconciliation.Reconciliation, error) {
	args := m.Called(ctx, reconciliationID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Reconciliation), args.Error(1)
}

func (m *MockWorkflowService) Delete(ctx context.Context, reconciliationID uuid.UUID, actor string) error {
	args := m.Called(ctx, reconciliationID, actor)
	return args.Error(0)
}

type MockAdjustmentService struct {
	mock.Mock
}

func (m *MockAdjustmentService) CreateAdjustment(ctx context.Context, reconciliationID uuid.UUID, adjType reconciliation.AdjustmentType, amount decimal.Decimal, targetAccountID uuid.UUID, description, actor string) (*reconciliation.Adjustment, *reconciliation.Reconciliation, error) {
	args := m.Called(ctx, reconciliationID, adjType, amount, targetAccountID, description, actor)
	var adj *reconciliation.Adjustment
	if args.Get(0) != nil {
		adj = args.Get(0).(*reconciliation.Adjustment)
	}
	var rec *reconciliation.Reconciliation
	if args.Get(1) != nil {
		rec = args.Get(1).(*reconciliation.Reconciliation)
	}
	return adj, rec, args.Error(2)
}

func (m *MockAdjustmentService) ListAdjustments(ctx context.Context, reconciliationID uuid.UUID) ([]*reconciliation.Adjustment, error) {
	args := m.Called(ctx, reconciliationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reconciliation.Adjustment), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) GetReconciliation(ctx context.Context, reconciliationID uuid.UUID) (*reconciliation.Reconciliation, error) {
	args := m.Called(ctx, reconciliationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Reconciliation), args.Error(1)
}

func (m *MockReportService) ListReconciliations(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*reconciliation.Reconciliation, int64, error) {
	args := m.Called(ctx, accountID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*reconciliation.Reconciliation), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportService) GetReport(ctx context.Context, reconciliationID uuid.UUID) (*service.ReportSnapshot, error) {
	args := m.Called(ctx, reconciliationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportSnapshot), args.Error(1)
}

func (m *MockReportService) GetAuditTrail(ctx context.Context, reconciliationID uuid.UUID, page, perPage int) ([]*audit.Event, int64, error) {
	args := m.Called(ctx, reconciliationID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*audit.Event), args.Get(1).(int64), args.Error(2)
}
