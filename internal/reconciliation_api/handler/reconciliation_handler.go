package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bank-reconciliation-engine/internal/domain/period"
	"github.com/bank-reconciliation-engine/internal/reconciliation_api/service"
)

// ReconciliationHandler handles HTTP requests for the reconciliation
// lifecycle, matching and reporting operations
type ReconciliationHandler struct {
	matchingService service.MatchingService
	workflowService service.WorkflowService
	reportService   service.ReportService
	logger          *slog.Logger
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(
	logger *slog.Logger,
	matchingService service.MatchingService,
	workflowService service.WorkflowService,
	reportService service.ReportService,
) *ReconciliationHandler {
	return &ReconciliationHandler{
		matchingService: matchingService,
		workflowService: workflowService,
		reportService:   reportService,
		logger:          logger,
	}
}

// Open opens a draft reconciliation for an account and period
func (h *ReconciliationHandler) Open(c *gin.Context) {
	var req OpenReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	p, err := period.Parse(req.Period)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	balance, err := decimal.NewFromString(req.StatementClosingBalance)
	if err != nil {
		RespondBadRequest(c, "Invalid statement closing balance")
		return
	}

	rec, err := h.matchingService.OpenReconciliation(c.Request.Context(), accountID, p, balance, req.Actor)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapReconciliationToResponse(rec))
}

// List returns a page of an account's reconciliations, newest period first
func (h *ReconciliationHandler) List(c *gin.Context) {
	var params ListReconciliationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(params.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	recs, total, err := h.reportService.ListReconciliations(c.Request.Context(), accountID, params.Page, params.PerPage)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	responses := make([]ReconciliationResponse, 0, len(recs))
	for _, rec := range recs {
		responses = append(responses, mapReconciliationToResponse(rec))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

// GetByID returns a reconciliation by its ID
func (h *ReconciliationHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	rec, err := h.reportService.GetReconciliation(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapReconciliationToResponse(rec))
}

// GetEligibleTransactions returns the tickable item sets with running balances
func (h *ReconciliationHandler) GetEligibleTransactions(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	eligible, err := h.matchingService.GetEligibleTransactions(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	response := EligibleTransactionsResponse{
		Reconciliation: mapReconciliationToResponse(eligible.Reconciliation),
		CarryOver:      make([]ItemResponse, 0, len(eligible.CarryOver)),
		Current:        make([]ItemResponse, 0, len(eligible.Current)),
	}
	for _, item := range eligible.CarryOver {
		response.CarryOver = append(response.CarryOver, mapItemToResponse(item))
	}
	for _, view := range eligible.Current {
		response.Current = append(response.Current, mapItemViewToResponse(view))
	}

	RespondOK(c, response)
}

// SetTickedSet replaces the reconciliation's ticked set with exactly the
// submitted items
func (h *ReconciliationHandler) SetTickedSet(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req SetTickedSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	itemIDs := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		itemID, err := uuid.Parse(raw)
		if err != nil {
			RespondBadRequest(c, "Invalid item ID: "+raw)
			return
		}
		itemIDs = append(itemIDs, itemID)
	}

	rec, err := h.matchingService.SetTickedSet(c.Request.Context(), id, itemIDs, req.Actor)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapReconciliationToResponse(rec))
}

// SetStatementBalance replaces the statement closing balance on a draft
func (h *ReconciliationHandler) SetStatementBalance(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req SetStatementBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	balance, err := decimal.NewFromString(req.StatementClosingBalance)
	if err != nil {
		RespondBadRequest(c, "Invalid statement closing balance")
		return
	}

	rec, err := h.matchingService.SetStatementBalance(c.Request.Context(), id, balance, req.Actor)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapReconciliationToResponse(rec))
}

// Finalize moves a draft reconciliation to Completed
func (h *ReconciliationHandler) Finalize(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	// Notes and actor are optional; an empty body is fine.
	var req FinalizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	rec, err := h.workflowService.Finalize(c.Request.Context(), id, req.Notes, req.Actor)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapReconciliationToResponse(rec))
}

// Lock permanently freezes a completed reconciliation
func (h *ReconciliationHandler) Lock(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req ActorRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	rec, err := h.workflowService.Lock(c.Request.Context(), id, req.Actor)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapReconciliationToResponse(rec))
}

// Delete tears down a draft or completed reconciliation
func (h *ReconciliationHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.workflowService.Delete(c.Request.Context(), id, c.Query("actor")); err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

// GetReport returns the full reconciliation report
func (h *ReconciliationHandler) GetReport(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetReport(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	response := ReportResponse{
		Reconciliation: mapReconciliationToResponse(report.Reconciliation),
		Account: AccountResponse{
			ID:               report.Account.ID.String(),
			Name:             report.Account.Name,
			Code:             report.Account.Code,
			InceptionBalance: report.Account.InceptionBalance.String(),
			Currency:         report.Account.Currency,
		},
		TickedItems:      make([]ItemResponse, 0, len(report.TickedItems)),
		OutstandingItems: make([]ItemResponse, 0, len(report.OutstandingItems)),
		Adjustments:      make([]AdjustmentResponse, 0, len(report.Adjustments)),
		TickedDebits:     report.TickedDebits.String(),
		TickedCredits:    report.TickedCredits.String(),
	}
	for _, view := range report.TickedItems {
		response.TickedItems = append(response.TickedItems, mapItemViewToResponse(view))
	}
	for _, item := range report.OutstandingItems {
		response.OutstandingItems = append(response.OutstandingItems, mapItemToResponse(item))
	}
	for _, adj := range report.Adjustments {
		response.Adjustments = append(response.Adjustments, mapAdjustmentToResponse(adj))
	}

	RespondOK(c, response)
}

// GetAuditTrail returns a page of the reconciliation's audit events
func (h *ReconciliationHandler) GetAuditTrail(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	events, total, err := h.reportService.GetAuditTrail(c.Request.Context(), id, pagination.Page, pagination.PerPage)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	responses := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, mapAuditEventToResponse(event))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

func (h *ReconciliationHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid reconciliation ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid reconciliation ID")
		return uuid.Nil, false
	}
	return id, true
}
