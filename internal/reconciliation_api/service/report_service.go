package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bank-reconciliation-engine/internal/domain/account"
	"github.com/bank-reconciliation-engine/internal/domain/audit"
	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
)

// ReportServiceImpl implements the ReportService interface
type ReportServiceImpl struct {
	logger      *slog.Logger
	recRepo     reconciliation.Repository
	itemRepo    ledgeritem.Repository
	adjRepo     reconciliation.AdjustmentRepository
	accountRepo account.Repository
	auditRepo   audit.Repository
}

// NewReportService creates a new report service
func NewReportService(
	logger *slog.Logger,
	recRepo reconciliation.Repository,
	itemRepo ledgeritem.Repository,
	adjRepo reconciliation.AdjustmentRepository,
	accountRepo account.Repository,
	auditRepo audit.Repository,
) ReportService {
	return &ReportServiceImpl{
		logger:      logger,
		recRepo:     recRepo,
		itemRepo:    itemRepo,
		adjRepo:     adjRepo,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
	}
}

// GetReconciliation returns a reconciliation by id
func (s *ReportServiceImpl) GetReconciliation(ctx context.Context, reconciliationID uuid.UUID) (*reconciliation.Reconciliation, error) {
	return s.recRepo.GetByID(ctx, reconciliationID)
}

// ListReconciliations returns a page of the account's reconciliations with
// the total count.
func (s *ReportServiceImpl) ListReconciliations(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*reconciliation.Reconciliation, int64, error) {
	offset := (page - 1) * perPage

	recs, err := s.recRepo.ListByAccount(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.recRepo.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}

// GetReport assembles the reconciliation report: ticked and outstanding item
// sets split out of the eligible pool, plus adjustments and the direction
// totals backing the reconciled balance.
func (s *ReportServiceImpl) GetReport(ctx context.Context, reconciliationID uuid.UUID) (*ReportSnapshot, error) {
	rec, err := s.recRepo.GetByID(ctx, reconciliationID)
	if err != nil {
		return nil, err
	}

	acc, err := s.accountRepo.GetByID(ctx, rec.AccountID)
	if err != nil {
		return nil, err
	}

	carryOver, err := s.itemRepo.ListCarryOver(ctx, rec.AccountID, rec.Period.Start(), rec.ID)
	if err != nil {
		return nil, err
	}
	current, err := s.itemRepo.ListByAccountAndRange(ctx, rec.AccountID, rec.Period.Start(), rec.Period.End())
	if err != nil {
		return nil, err
	}

	// Carry-over precedes current in the pool, keeping the ticked ledger in
	// date order. The running balance folds the opening balance through the
	// ticked items; its final value is the reconciled balance before
	// adjustments.
	running := rec.OpeningBalance
	ticked := make([]ItemView, 0)
	outstanding := make([]*ledgeritem.Item, 0)
	for _, item := range append(carryOver, current...) {
		if item.ClaimedBy(rec.ID) {
			running = running.Add(item.Signed())
			ticked = append(ticked, ItemView{Item: item, RunningBalance: running})
		} else if !item.IsReconciled {
			outstanding = append(outstanding, item)
		}
	}

	adjustments, err := s.adjRepo.ListByReconciliation(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	sums, err := s.itemRepo.SumClaimed(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	return &ReportSnapshot{
		Reconciliation:   rec,
		Account:          acc,
		TickedItems:      ticked,
		OutstandingItems: outstanding,
		Adjustments:      adjustments,
		TickedDebits:     sums.Debits,
		TickedCredits:    sums.Credits,
	}, nil
}

// GetAuditTrail returns a page of the reconciliation's audit events with the
// total count.
func (s *ReportServiceImpl) GetAuditTrail(ctx context.Context, reconciliationID uuid.UUID, page, perPage int) ([]*audit.Event, int64, error) {
	if _, err := s.recRepo.GetByID(ctx, reconciliationID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	events, err := s.auditRepo.ListByReconciliation(ctx, reconciliationID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.auditRepo.CountByReconciliation(ctx, reconciliationID)
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
