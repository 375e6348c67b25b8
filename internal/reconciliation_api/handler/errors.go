package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/bank-reconciliation-engine/internal/domain/account"
	"github.com/bank-reconciliation-engine/internal/domain/ledgeritem"
	"github.com/bank-reconciliation-engine/internal/domain/period"
	"github.com/bank-reconciliation-engine/internal/domain/reconciliation"
)

// respondDomainError translates a service error into the HTTP vocabulary:
// missing resources map to 404, lifecycle and claim conflicts to 409,
// business-rule violations on well-formed requests to 422, bad input to 400.
// Anything unrecognized is logged and answered with a 500.
func respondDomainError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		recNotFound     reconciliation.ErrNotFound
		accNotFound     account.ErrAccountNotFound
		itemNotFound    ledgeritem.ErrItemNotFound
		draftExists     reconciliation.ErrDraftExists
		invalidState    reconciliation.ErrInvalidState
		itemClaimed     reconciliation.ErrItemClaimed
		itemNotEligible reconciliation.ErrItemNotEligible
		outOfRange      reconciliation.ErrPeriodOutOfRange
		unresolved      reconciliation.ErrUnresolvedDifference
		noActiveYear    period.ErrNoActiveFinancialYear
	)

	switch {
	case errors.As(err, &recNotFound):
		RespondNotFound(c, recNotFound.Error())
	case errors.As(err, &accNotFound):
		RespondNotFound(c, accNotFound.Error())
	case errors.As(err, &itemNotFound):
		RespondNotFound(c, itemNotFound.Error())
	case errors.As(err, &draftExists):
		RespondConflict(c, "DRAFT_EXISTS", draftExists.Error())
	case errors.As(err, &invalidState):
		RespondConflict(c, "INVALID_STATE", invalidState.Error())
	case errors.As(err, &itemClaimed):
		RespondConflict(c, "ITEM_CLAIMED", itemClaimed.Error())
	case errors.As(err, &itemNotEligible):
		RespondUnprocessable(c, "ITEM_NOT_ELIGIBLE", itemNotEligible.Error())
	case errors.As(err, &outOfRange):
		RespondUnprocessable(c, "PERIOD_OUT_OF_RANGE", outOfRange.Error())
	case errors.As(err, &unresolved):
		RespondUnprocessable(c, "UNRESOLVED_DIFFERENCE", unresolved.Error())
	case errors.As(err, &noActiveYear):
		RespondUnprocessable(c, "NO_ACTIVE_FINANCIAL_YEAR", noActiveYear.Error())
	case errors.Is(err, reconciliation.ErrInvalidAdjustmentType),
		errors.Is(err, reconciliation.ErrNonPositiveAmount),
		errors.Is(err, reconciliation.ErrEmptyDescription):
		RespondBadRequest(c, err.Error())
	default:
		logger.Error("Unhandled service error", "error", err, "path", c.Request.URL.Path)
		RespondInternalError(c)
	}
}
