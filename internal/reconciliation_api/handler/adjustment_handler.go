package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
	"github.com/bank-reconciliation-engine/internal/reconciliation_api/service"
)

// AdjustmentHandler handles HTTP requests for manual adjustments
type AdjustmentHandler struct {
	adjustmentService service.AdjustmentService
	logger            *slog.Logger
}

// NewAdjustmentHandler creates a new adjustment handler
func NewAdjustmentHandler(logger *slog.Logger, adjustmentService service.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{
		adjustmentService: adjustmentService,
		logger:            logger,
	}
}

// Create records a manual adjustment against a draft reconciliation. The
// response carries both the adjustment and the recomputed reconciliation.
func (h *AdjustmentHandler) Create(c *gin.Context) {
	idParam := c.Param("id")
	reconciliationID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid reconciliation ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid reconciliation ID")
		return
	}

	var req CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	targetAccountID, err := uuid.Parse(req.TargetAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid target account ID")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		RespondBadRequest(c, "Invalid amount")
		return
	}

	adj, rec, err := h.adjustmentService.CreateAdjustment(
		c.Request.Context(),
		reconciliationID,
		reconciliation.AdjustmentType(req.Type),
		amount,
		targetAccountID,
		req.Description,
		req.Actor,
	)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, gin.H{
		"adjustment":     mapAdjustmentToResponse(adj),
		"reconciliation": mapReconciliationToResponse(rec),
	})
}

// List returns the reconciliation's adjustments in creation order
func (h *AdjustmentHandler) List(c *gin.Context) {
	idParam := c.Param("id")
	reconciliationID, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid reconciliation ID")
		return
	}

	adjustments, err := h.adjustmentService.ListAdjustments(c.Request.Context(), reconciliationID)
	if err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	responses := make([]AdjustmentResponse, 0, len(adjustments))
	for _, adj := range adjustments {
		responses = append(responses, mapAdjustmentToResponse(adj))
	}

	RespondOK(c, responses)
}
