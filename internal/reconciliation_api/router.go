package reconciliation_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bank-reconciliation-engine/internal/reconciliation_api/handler"
	"github.com/bank-reconciliation-engine/internal/reconciliation_api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	reconciliationHandler *handler.ReconciliationHandler,
	adjustmentHandler *handler.AdjustmentHandler,
	itemHandler *handler.ItemHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		reconciliations := v1.Group("/reconciliations")
		{
			reconciliations.POST("", reconciliationHandler.Open)
			reconciliations.GET("", reconciliationHandler.List)
			reconciliations.GET("/:id", reconciliationHandler.GetByID)
			reconciliations.DELETE("/:id", reconciliationHandler.Delete)

			// Matching operations on a draft
			reconciliations.GET("/:id/transactions", reconciliationHandler.GetEligibleTransactions)
			reconciliations.PUT("/:id/ticks", reconciliationHandler.SetTickedSet)
			reconciliations.PUT("/:id/statement-balance", reconciliationHandler.SetStatementBalance)

			// Manual adjustments
			reconciliations.POST("/:id/adjustments", adjustmentHandler.Create)
			reconciliations.GET("/:id/adjustments", adjustmentHandler.List)

			// Lifecycle transitions
			reconciliations.POST("/:id/finalize", reconciliationHandler.Finalize)
			reconciliations.POST("/:id/lock", reconciliationHandler.Lock)

			// Reporting
			reconciliations.GET("/:id/report", reconciliationHandler.GetReport)
			reconciliations.GET("/:id/audit", reconciliationHandler.GetAuditTrail)
		}

		items := v1.Group("/ledger-items")
		{
			items.PUT("/:id/investigation-note", itemHandler.SetInvestigationNote)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
