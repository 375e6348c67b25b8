package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/bank-reconciliation-engine/internal/domain/account"
	"github.com/bank-reconciliation-engine/internal/domain/audit"
	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/domain/outbox"
	"github.com/bank-reconciliation-engine/internal/domain/period"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/domain/shared"
)

// fakeTxRunner executes the function directly, standing in for a real
// transaction. WithTx on the mocks below returns the mock itself, so the
// services exercise the same expectations inside and outside a transaction.
type fakeTxRunner struct{}

func (fakeTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type MockReconciliationRepository struct {
	mock.Mock
}

func (m *MockReconciliationRepository) Create(ctx context.Context, rec *reconciliation.Reconciliation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockReconciliationRepository) GetByID(ctx context.Context, id uuid.UUID) (*reconciliation.Reconciliation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Reconciliation), args.Error(1)
}

func (m *MockReconciliationRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*reconciliation.Reconciliation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Reconciliation), args.Error(1)
}

func (m *MockReconciliationRepository) Update(ctx context.Context, rec *reconciliation.Reconciliation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockReconciliationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReconciliationRepository) GetDraft(ctx context.Context, accountID uuid.UUID, p period.Period) (*reconciliation.Reconciliation, error) {
	args := m.Called(ctx, accountID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Reconciliation), args.Error(1)
}

func (m *MockReconciliationRepository) GetLatestFinalized(ctx context.Context, accountID uuid.UUID) (*reconciliation.Reconciliation, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Reconciliation), args.Error(1)
}

func (m *MockReconciliationRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*reconciliation.Reconciliation, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reconciliation.Reconciliation), args.Error(1)
}

func (m *MockReconciliationRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReconciliationRepository) WithTx(tx pgx.Tx) reconciliation.Repository {
	return m
}

type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) Create(ctx context.Context, adj *reconciliation.Adjustment) error {
	args := m.Called(ctx, adj)
	return args.Error(0)
}

func (m *MockAdjustmentRepository) ListByReconciliation(ctx context.Context, reconciliationID uuid.UUID) ([]*reconciliation.Adjustment, error) {
	args := m.Called(ctx, reconciliationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reconciliation.Adjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) SumByReconciliation(ctx context.Context, reconciliationID uuid.UUID) (reconciliation.AdjustmentSums, error) {
	args := m.Called(ctx, reconciliationID)
	return args.Get(0).(reconciliation.AdjustmentSums), args.Error(1)
}

func (m *MockAdjustmentRepository) DeleteByReconciliation(ctx context.Context, reconciliationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, reconciliationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdjustmentRepository) WithTx(tx pgx.Tx) reconciliation.AdjustmentRepository {
	return m
}

type MockLedgerItemRepository struct {
	mock.Mock
}

func (m *MockLedgerItemRepository) Create(ctx context.Context, item *ledgeritem.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockLedgerItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledgeritem.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgeritem.Item), args.Error(1)
}

func (m *MockLedgerItemRepository) ListByAccountAndRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]*ledgeritem.Item, error) {
	args := m.Called(ctx, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledgeritem.Item), args.Error(1)
}

func (m *MockLedgerItemRepository) ListCarryOver(ctx context.Context, accountID uuid.UUID, before time.Time, reconciliationID uuid.UUID) ([]*ledgeritem.Item, error) {
	args := m.Called(ctx, accountID, before, reconciliationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledgeritem.Item), args.Error(1)
}

func (m *MockLedgerItemRepository) ClaimSet(ctx context.Context, reconciliationID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, reconciliationID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerItemRepository) ReleaseSet(ctx context.Context, reconciliationID uuid.UUID, ids []uuid.UUID) error {
	args := m.Called(ctx, reconciliationID, ids)
	return args.Error(0)
}

func (m *MockLedgerItemRepository) ReleaseAll(ctx context.Context, reconciliationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, reconciliationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerItemRepository) ListClaimedIDs(ctx context.Context, reconciliationID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, reconciliationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockLedgerItemRepository) SumClaimed(ctx context.Context, reconciliationID uuid.UUID) (ledgeritem.Sums, error) {
	args := m.Called(ctx, reconciliationID)
	return args.Get(0).(ledgeritem.Sums), args.Error(1)
}

func (m *MockLedgerItemRepository) SetInvestigationNote(ctx context.Context, id uuid.UUID, note string) error {
	args := m.Called(ctx, id, note)
	return args.Error(0)
}

func (m *MockLedgerItemRepository) WithTx(tx pgx.Tx) ledgeritem.Repository {
	return m
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.LedgerAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.LedgerAccount), args.Error(1)
}

func (m *MockAccountRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, event *audit.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByReconciliation(ctx context.Context, reconciliationID uuid.UUID, limit, offset int) ([]*audit.Event, error) {
	args := m.Called(ctx, reconciliationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Event), args.Error(1)
}

func (m *MockAuditRepository) CountByReconciliation(ctx context.Context, reconciliationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, reconciliationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockPeriodProvider struct {
	mock.Mock
}

func (m *MockPeriodProvider) ActiveYearRange(ctx context.Context) (period.FinancialYearRange, error) {
	args := m.Called(ctx)
	return args.Get(0).(period.FinancialYearRange), args.Error(1)
}
