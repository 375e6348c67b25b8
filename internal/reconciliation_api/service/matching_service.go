package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bank-reconciliation-engine/internal/domain/account"
	"github.com/bank-reconciliation-engine/internal/domain/audit"
	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/domain/period"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
)

// MatchingServiceImpl implements the MatchingService interface
type MatchingServiceImpl struct {
	logger      *slog.Logger
	txRunner    TxRunner
	recRepo     reconciliation.Repository
	adjRepo     reconciliation.AdjustmentRepository
	itemRepo    ledgeritem.Repository
	accountRepo account.Repository
	yearRange   period.Provider
	auditRepo   audit.Repository
}

// NewMatchingService creates a new matching service
func NewMatchingService(
	logger *slog.Logger,
	txRunner TxRunner,
	recRepo reconciliation.Repository,
	adjRepo reconciliation.AdjustmentRepository,
	itemRepo ledgeritem.Repository,
	accountRepo account.Repository,
	yearRange period.Provider,
	auditRepo audit.Repository,
) MatchingService {
	return &MatchingServiceImpl{
		logger:      logger,
		txRunner:    txRunner,
		recRepo:     recRepo,
		adjRepo:     adjRepo,
		itemRepo:    itemRepo,
		accountRepo: accountRepo,
		yearRange:   yearRange,
		auditRepo:   auditRepo,
	}
}

// OpenReconciliation opens a draft for the account and period. The opening
// balance carries over from the last finalized reconciliation, falling back
// to the account's inception balance.
func (s *MatchingServiceImpl) OpenReconciliation(ctx context.Context, accountID uuid.UUID, p period.Period, statementClosingBalance decimal.Decimal, actor string) (*reconciliation.Reconciliation, error) {
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	yearRange, err := s.yearRange.ActiveYearRange(ctx)
	if err != nil {
		return nil, err
	}
	if !yearRange.Contains(p) {
		return nil, reconciliation.ErrPeriodOutOfRange{Period: p, Range: yearRange}
	}

	// Existence check, opening-balance derivation and the insert share one
	// transaction. The partial unique index on (account_id, period) backs
	// the one-draft rule for inserts racing past the check.
	var rec *reconciliation.Reconciliation
	var openingBalance decimal.Decimal
	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		recRepo := s.recRepo.WithTx(tx)

		if existing, err := recRepo.GetDraft(ctx, accountID, p); err == nil && existing != nil {
			return reconciliation.ErrDraftExists{AccountID: accountID, Period: p}
		} else if err != nil {
			var notFound reconciliation.ErrNotFound
			if !errors.As(err, &notFound) {
				return err
			}
		}

		openingBalance = acc.InceptionBalance
		if latest, err := recRepo.GetLatestFinalized(ctx, accountID); err == nil {
			openingBalance = latest.ReconciledBalance
		} else {
			var notFound reconciliation.ErrNotFound
			if !errors.As(err, &notFound) {
				return err
			}
		}

		rec = reconciliation.New(accountID, p, openingBalance, statementClosingBalance)
		return recRepo.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reconciliation opened",
		"reconciliation_id", rec.ID.String(),
		"account_id", accountID.String(),
		"period", p.String(),
		"opening_balance", openingBalance.String(),
	)

	s.recordAudit(ctx, rec, audit.ActionOpened, actor, map[string]any{
		"period":                    p.String(),
		"opening_balance":           openingBalance.String(),
		"statement_closing_balance": statementClosingBalance.String(),
	})

	return rec, nil
}

// GetEligibleTransactions returns the tickable item sets. Running balances
// fold the opening balance through the current-period items in date order.
func (s *MatchingServiceImpl) GetEligibleTransactions(ctx context.Context, reconciliationID uuid.UUID) (*EligibleTransactions, error) {
	rec, err := s.recRepo.GetByID(ctx, reconciliationID)
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

	// The fold covers current-period items only; carry-over affects
	// eligibility, not the displayed balance.
	running := rec.OpeningBalance
	currentViews := make([]ItemView, 0, len(current))
	for _, item := range current {
		running = running.Add(item.Signed())
		currentViews = append(currentViews, ItemView{Item: item, RunningBalance: running})
	}

	return &EligibleTransactions{
		Reconciliation: rec,
		CarryOver:      carryOver,
		Current:        currentViews,
	}, nil
}

// SetTickedSet atomically replaces the ticked set with exactly the given
// items and recomputes the derived balances. The reconciliation row lock
// serializes concurrent submissions; the guarded claim update detects items
// grabbed by another reconciliation in the meantime.
func (s *MatchingServiceImpl) SetTickedSet(ctx context.Context, reconciliationID uuid.UUID, itemIDs []uuid.UUID, actor string) (*reconciliation.Reconciliation, error) {
	var rec *reconciliation.Reconciliation

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		recRepo := s.recRepo.WithTx(tx)
		itemRepo := s.itemRepo.WithTx(tx)
		adjRepo := s.adjRepo.WithTx(tx)

		var err error
		rec, err = recRepo.LockForUpdate(ctx, reconciliationID)
		if err != nil {
			return err
		}
		if !rec.IsDraft() {
			return reconciliation.ErrInvalidState{Status: rec.Status, Operation: "tick"}
		}

		eligible, err := s.eligibleItemSet(ctx, itemRepo, rec)
		if err != nil {
			return err
		}
		requested := dedupe(itemIDs)
		for _, id := range requested {
			item, ok := eligible[id]
			if !ok {
				return reconciliation.ErrItemNotEligible{ItemID: id}
			}
			if item.ClaimedByOther(rec.ID) {
				return reconciliation.ErrItemClaimed{ItemID: id}
			}
		}

		// Full replacement: release everything no longer requested, then
		// claim the requested set.
		claimedIDs, err := itemRepo.ListClaimedIDs(ctx, rec.ID)
		if err != nil {
			return err
		}
		requestedSet := make(map[uuid.UUID]struct{}, len(requested))
		for _, id := range requested {
			requestedSet[id] = struct{}{}
		}
		var toRelease []uuid.UUID
		for _, id := range claimedIDs {
			if _, keep := requestedSet[id]; !keep {
				toRelease = append(toRelease, id)
			}
		}
		if err := itemRepo.ReleaseSet(ctx, rec.ID, toRelease); err != nil {
			return err
		}

		claimed, err := itemRepo.ClaimSet(ctx, rec.ID, requested)
		if err != nil {
			return err
		}
		if claimed != int64(len(requested)) {
			// Another reconciliation won a claim between our snapshot and
			// the guarded update. Abort; nothing is persisted.
			for _, id := range requested {
				item, err := itemRepo.GetByID(ctx, id)
				if err != nil {
					return err
				}
				if item.ClaimedByOther(rec.ID) {
					return reconciliation.ErrItemClaimed{ItemID: id}
				}
			}
			return reconciliation.ErrItemClaimed{}
		}

		tickedSums, err := itemRepo.SumClaimed(ctx, rec.ID)
		if err != nil {
			return err
		}
		adjSums, err := adjRepo.SumByReconciliation(ctx, rec.ID)
		if err != nil {
			return err
		}

		rec.Recompute(tickedSums, adjSums)
		return recRepo.Update(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tick set applied",
		"reconciliation_id", rec.ID.String(),
		"ticked_count", len(itemIDs),
		"reconciled_balance", rec.ReconciledBalance.String(),
		"difference", rec.Difference.String(),
	)

	s.recordAudit(ctx, rec, audit.ActionTickSetApplied, actor, map[string]any{
		"ticked_count":       len(itemIDs),
		"reconciled_balance": rec.ReconciledBalance.String(),
		"difference":         rec.Difference.String(),
	})

	return rec, nil
}

// SetStatementBalance replaces the statement closing balance on a draft and
// rederives the difference.
func (s *MatchingServiceImpl) SetStatementBalance(ctx context.Context, reconciliationID uuid.UUID, balance decimal.Decimal, actor string) (*reconciliation.Reconciliation, error) {
	var rec *reconciliation.Reconciliation

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		recRepo := s.recRepo.WithTx(tx)

		var err error
		rec, err = recRepo.LockForUpdate(ctx, reconciliationID)
		if err != nil {
			return err
		}
		if err := rec.SetStatementBalance(balance); err != nil {
			return err
		}
		return recRepo.Update(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, rec, audit.ActionStatementBalanceChanged, actor, map[string]any{
		"statement_closing_balance": balance.String(),
		"difference":                rec.Difference.String(),
	})

	return rec, nil
}

// SetInvestigationNote annotates a ledger item. Notes survive ticking and
// finalization; they only describe why an item is outstanding.
func (s *MatchingServiceImpl) SetInvestigationNote(ctx context.Context, itemID uuid.UUID, note string, actor string) error {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if err := s.itemRepo.SetInvestigationNote(ctx, itemID, note); err != nil {
		return err
	}

	if item.ReconciliationID != nil {
		event := audit.NewEvent(*item.ReconciliationID, item.AccountID, audit.ActionInvestigationNoteSet, actor, map[string]any{
			"item_id": itemID.String(),
			"note":    note,
		})
		if err := s.auditRepo.Create(ctx, event); err != nil {
			s.logger.Warn("Failed to record audit event", "action", string(audit.ActionInvestigationNoteSet), "error", err)
		}
	}

	return nil
}

// eligibleItemSet indexes the reconciliation's tickable items by id.
func (s *MatchingServiceImpl) eligibleItemSet(ctx context.Context, itemRepo ledgeritem.Repository, rec *reconciliation.Reconciliation) (map[uuid.UUID]*ledgeritem.Item, error) {
	carryOver, err := itemRepo.ListCarryOver(ctx, rec.AccountID, rec.Period.Start(), rec.ID)
	if err != nil {
		return nil, err
	}
	current, err := itemRepo.ListByAccountAndRange(ctx, rec.AccountID, rec.Period.Start(), rec.Period.End())
	if err != nil {
		return nil, err
	}

	eligible := make(map[uuid.UUID]*ledgeritem.Item, len(carryOver)+len(current))
	for _, item := range carryOver {
		eligible[item.ID] = item
	}
	for _, item := range current {
		eligible[item.ID] = item
	}
	return eligible, nil
}

// recordAudit writes an audit event best-effort. Failures are logged, never
// surfaced: the trail must not be able to fail the business operation.
func (s *MatchingServiceImpl) recordAudit(ctx context.Context, rec *reconciliation.Reconciliation, action audit.Action, actor string, details map[string]any) {
	event := audit.NewEvent(rec.ID, rec.AccountID, action, actor, details)
	if err := s.auditRepo.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record audit event",
			"reconciliation_id", rec.ID.String(),
			"action", string(action),
			"error", err,
		)
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
