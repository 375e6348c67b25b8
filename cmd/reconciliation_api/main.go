package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bank-reconciliation-engine/internal/config"
	"github.com/bank-reconciliation-engine/internal/data/mongo"
	"github.com/bank-reconciliation-engine/internal/data/postgres"
	"github.com/bank-reconciliation-engine/internal/logger"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
	"github.com/bank-reconciliation-engine/internal/reconciliation_api"
	"github.com/bank-reconciliation-engine/internal/reconciliation_api/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("reconciliation_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Reconciliation API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	recRepo := postgres.NewReconciliationRepository(log, postgresDB)
	adjRepo := postgres.NewAdjustmentRepository(log, postgresDB)
	itemRepo := postgres.NewLedgerItemRepository(log, postgresDB)
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	yearProvider := postgres.NewFinancialYearRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())

	// Initialize services
	matchingService := service.NewMatchingService(log, postgresDB, recRepo, adjRepo, itemRepo, accountRepo, yearProvider, auditRepo)
	workflowService := service.NewWorkflowService(log, postgresDB, recRepo, adjRepo, itemRepo, outboxRepo, auditRepo, cfg.Reconciliation.ToleranceDecimal())
	adjustmentService := service.NewAdjustmentService(log, postgresDB, recRepo, adjRepo, itemRepo, auditRepo)
	reportService := service.NewReportService(log, recRepo, itemRepo, adjRepo, accountRepo, auditRepo)

	// Initialize HTTP server
	server := reconciliation_api.NewServer(log, cfg, matchingService, workflowService, adjustmentService, reportService)

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			serverErr <- err
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		log.Error("HTTP server error", "error", err)
	}

	// Cancel the application context
	cancelAppCtx()

	// Graceful shutdown with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", "error", err)
	}

	// Close database connections
	postgresDB.Close()
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	log.Info("Reconciliation API shutdown completed")
}
