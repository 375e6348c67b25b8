package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bank-reconciliation-engine/internal/config"
	"github.com/bank-reconciliation-engine/internal/data/postgres"
	"github.com/bank-reconciliation-engine/internal/ledger_processor/consumer"
	"github.com/bank-reconciliation-engine/internal/ledger_processor/outbox_poller"
	"github.com/bank-reconciliation-engine/internal/ledger_processor/service"
	"github.com/bank-reconciliation-engine/internal/logger"
	"github.com/bank-reconciliation-engine/internal/platform/messaging/consumers"
	"github.com/bank-reconciliation-engine/internal/platform/messaging/producers"
	"github.com/bank-reconciliation-engine/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("ledger_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Ledger Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	itemRepo := postgres.NewLedgerItemRepository(log, postgresDB)
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)

	// Initialize Kafka consumer for the ledger transaction feed
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for reconciliation events
	eventProducer, err := producers.NewReconciliationEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize events Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize ingestion service behind a worker pool
	ingestionService := service.NewIngestionService(log, itemRepo, accountRepo)
	pooledService, err := service.NewWorkerPoolIngestionService(
		ingestionService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize feed message handler
	feedHandler := consumer.NewLedgerFeedHandler(log, pooledService, dlqProducer)

	// Initialize outbox poller
	eventPublisher := outbox_poller.NewReconciliationEventPublisher(log, outboxRepo, eventProducer)
	poller := outbox_poller.NewPoller(log, outboxRepo, eventPublisher, &cfg.Outbox)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.LedgerFeedTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.LedgerFeedTopic, cfg.Kafka.ConsumerGroup, feedHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shut down the worker pool before closing its downstream dependencies
	pooledService.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close Kafka producers and consumer
	if dlqProducer != nil {
		if err := dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}
	if err := eventProducer.Close(); err != nil {
		log.Error("Error closing events Kafka producer", "error", err)
	}
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if serviceErr != nil {
		log.Error("Ledger Processor shutdown with errors", "error", serviceErr)
		return
	}
	log.Info("Ledger Processor shutdown completed successfully")
}
