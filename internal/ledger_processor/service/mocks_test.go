package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/bank-reconciliation-engine/internal/domain/account"
	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
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
