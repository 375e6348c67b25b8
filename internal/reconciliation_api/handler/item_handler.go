package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bank-reconciliation-engine/internal/reconciliation_api/service"
)

// ItemHandler handles HTTP requests on individual ledger transaction items
type ItemHandler struct {
	matchingService service.MatchingService
	logger          *slog.Logger
}

// NewItemHandler creates a new ledger item handler
func NewItemHandler(logger *slog.Logger, matchingService service.MatchingService) *ItemHandler {
	return &ItemHandler{
		matchingService: matchingService,
		logger:          logger,
	}
}

// SetInvestigationNote annotates a ledger item with a free-text note
// explaining why it is outstanding
func (h *ItemHandler) SetInvestigationNote(c *gin.Context) {
	idParam := c.Param("id")
	itemID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid item ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid item ID")
		return
	}

	var req SetInvestigationNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.matchingService.SetInvestigationNote(c.Request.Context(), itemID, req.Note, req.Actor); err != nil {
		respondDomainError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}
