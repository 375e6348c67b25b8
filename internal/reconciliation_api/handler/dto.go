package handler

import (
	"time"

	"github.com/bank-reconciliation-engine/internal/domain/audit"
	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/reconciliation_api/service"
)

// OpenReconciliationRequest represents a request to open a draft
// reconciliation. Balances travel as decimal strings to avoid float rounding.
type OpenReconciliationRequest struct {
	AccountID               string `json:"account_id" binding:"required,uuid"`
	Period                  string `json:"period" binding:"required"`
	StatementClosingBalance string `json:"statement_closing_balance" binding:"required"`
	Actor                   string `json:"actor,omitempty"`
}

// SetTickedSetRequest represents a full-replacement tick submission
type SetTickedSetRequest struct {
	ItemIDs []string `json:"item_ids" binding:"required,dive,uuid"`
	Actor   string   `json:"actor,omitempty"`
}

// SetStatementBalanceRequest represents a statement balance correction
type SetStatementBalanceRequest struct {
	StatementClosingBalance string `json:"statement_closing_balance" binding:"required"`
	Actor                   string `json:"actor,omitempty"`
}

// CreateAdjustmentRequest represents a request to record a manual adjustment
type CreateAdjustmentRequest struct {
	Type            string `json:"type" binding:"required,oneof=DEBIT CREDIT"`
	Amount          string `json:"amount" binding:"required"`
	TargetAccountID string `json:"target_account_id" binding:"required,uuid"`
	Description     string `json:"description" binding:"required"`
	Actor           string `json:"actor,omitempty"`
}

// FinalizeRequest represents a request to finalize a draft reconciliation
type FinalizeRequest struct {
	Notes string `json:"notes,omitempty"`
	Actor string `json:"actor,omitempty"`
}

// ActorRequest carries the acting user for operations with no other payload
type ActorRequest struct {
	Actor string `json:"actor,omitempty"`
}

// SetInvestigationNoteRequest represents a request to annotate a ledger item
type SetInvestigationNoteRequest struct {
	Note  string `json:"note" binding:"required"`
	Actor string `json:"actor,omitempty"`
}

// ListReconciliationsParams represents the query parameters of the list
// endpoint
type ListReconciliationsParams struct {
	AccountID string `form:"account_id" binding:"required,uuid"`
	Page      int    `form:"page,default=1" binding:"min=1"`
	PerPage   int    `form:"per_page,default=10" binding:"min=1,max=100"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// ReconciliationResponse represents a reconciliation in API responses
type ReconciliationResponse struct {
	ID                      string `json:"id"`
	AccountID               string `json:"account_id"`
	Period                  string `json:"period"`
	OpeningBalance          string `json:"opening_balance"`
	StatementClosingBalance string `json:"statement_closing_balance"`
	ReconciledBalance       string `json:"reconciled_balance"`
	Difference              string `json:"difference"`
	Status                  string `json:"status"`
	Notes                   string `json:"notes,omitempty"`
	FinalizedBy             string `json:"finalized_by,omitempty"`
	FinalizedAt             string `json:"finalized_at,omitempty"`
	CreatedAt               string `json:"created_at"`
	UpdatedAt               string `json:"updated_at"`
}

// ItemResponse represents a ledger transaction item in API responses
type ItemResponse struct {
	ID                string `json:"id"`
	EntryID           string `json:"entry_id"`
	AccountID         string `json:"account_id"`
	Date              string `json:"date"`
	Amount            string `json:"amount"`
	Direction         string `json:"direction"`
	Narration         string `json:"narration"`
	ReconciliationID  string `json:"reconciliation_id,omitempty"`
	IsReconciled      bool   `json:"is_reconciled"`
	InvestigationNote string `json:"investigation_note,omitempty"`
	RunningBalance    string `json:"running_balance,omitempty"`
}

// EligibleTransactionsResponse represents the tickable item sets
type EligibleTransactionsResponse struct {
	Reconciliation ReconciliationResponse `json:"reconciliation"`
	CarryOver      []ItemResponse         `json:"carry_over"`
	Current        []ItemResponse         `json:"current"`
}

// AdjustmentResponse represents a manual adjustment in API responses
type AdjustmentResponse struct {
	ID               string `json:"id"`
	ReconciliationID string `json:"reconciliation_id"`
	Type             string `json:"type"`
	Amount           string `json:"amount"`
	TargetAccountID  string `json:"target_account_id"`
	Description      string `json:"description"`
	CreatedBy        string `json:"created_by,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// AccountResponse represents a ledger account in API responses
type AccountResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Code             string `json:"code"`
	InceptionBalance string `json:"inception_balance"`
	Currency         string `json:"currency"`
}

// ReportResponse represents the full reconciliation report
type ReportResponse struct {
	Reconciliation   ReconciliationResponse `json:"reconciliation"`
	Account          AccountResponse        `json:"account"`
	TickedItems      []ItemResponse         `json:"ticked_items"`
	OutstandingItems []ItemResponse         `json:"outstanding_items"`
	Adjustments      []AdjustmentResponse   `json:"adjustments"`
	TickedDebits     string                 `json:"ticked_debits"`
	TickedCredits    string                 `json:"ticked_credits"`
}

// AuditEventResponse represents an audit trail entry in API responses
type AuditEventResponse struct {
	ReconciliationID string         `json:"reconciliation_id"`
	AccountID        string         `json:"account_id"`
	Action           string         `json:"action"`
	Actor            string         `json:"actor,omitempty"`
	Details          map[string]any `json:"details,omitempty"`
	CreatedAt        string         `json:"created_at"`
}

func mapReconciliationToResponse(rec *reconciliation.Reconciliation) ReconciliationResponse {
	response := ReconciliationResponse{
		ID:                      rec.ID.String(),
		AccountID:               rec.AccountID.String(),
		Period:                  rec.Period.String(),
		OpeningBalance:          rec.OpeningBalance.String(),
		StatementClosingBalance: rec.StatementClosingBalance.String(),
		ReconciledBalance:       rec.ReconciledBalance.String(),
		Difference:              rec.Difference.String(),
		Status:                  string(rec.Status),
		Notes:                   rec.Notes,
		FinalizedBy:             rec.FinalizedBy,
		CreatedAt:               rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:               rec.UpdatedAt.Format(time.RFC3339),
	}

	if rec.FinalizedAt != nil {
		response.FinalizedAt = rec.FinalizedAt.Format(time.RFC3339)
	}

	return response
}

func mapItemToResponse(item *ledgeritem.Item) ItemResponse {
	response := ItemResponse{
		ID:                item.ID.String(),
		EntryID:           item.EntryID.String(),
		AccountID:         item.AccountID.String(),
		Date:              item.Date.Format("2006-01-02"),
		Amount:            item.Amount.String(),
		Direction:         string(item.Direction),
		Narration:         item.Narration,
		IsReconciled:      item.IsReconciled,
		InvestigationNote: item.InvestigationNote,
	}

	if item.ReconciliationID != nil {
		response.ReconciliationID = item.ReconciliationID.String()
	}

	return response
}

func mapItemViewToResponse(view service.ItemView) ItemResponse {
	response := mapItemToResponse(view.Item)
	response.RunningBalance = view.RunningBalance.String()
	return response
}

func mapAdjustmentToResponse(adj *reconciliation.Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:               adj.ID.String(),
		ReconciliationID: adj.ReconciliationID.String(),
		Type:             string(adj.Type),
		Amount:           adj.Amount.String(),
		TargetAccountID:  adj.TargetAccountID.String(),
		Description:      adj.Description,
		CreatedBy:        adj.CreatedBy,
		CreatedAt:        adj.CreatedAt.Format(time.RFC3339),
	}
}

func mapAuditEventToResponse(event *audit.Event) AuditEventResponse {
	return AuditEventResponse{
		ReconciliationID: event.ReconciliationID.String(),
		AccountID:        event.AccountID.String(),
		Action:           string(event.Action),
		Actor:            event.Actor,
		Details:          event.Details,
		CreatedAt:        event.CreatedAt.Format(time.RFC3339),
	}
}
