package service

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/bank-reconciliation-engine/internal/domain/shared"
)

// WorkerPoolIngestionService fans feed messages out over a bounded worker
// pool. The caller still observes the result of its own message, so offset
// commits keep their at-least-once meaning.
type WorkerPoolIngestionService struct {
	baseService IngestionService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolIngestionService(
	baseService IngestionService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolIngestionService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolIngestionService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// IngestItem submits the message to the worker pool and waits for its result.
func (s *WorkerPoolIngestionService) IngestItem(ctx context.Context, message *shared.LedgerFeedMessage) error {
	resultChan := make(chan error, 1)

	// Copy the message so the submitting goroutine cannot race the worker.
	messageCopy := *message

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.IngestItem(ctx, &messageCopy)
		close(resultChan)
	})
	if err != nil {
		s.logger.Error("Failed to submit feed message to worker pool",
			"item_id", message.ItemID.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolIngestionService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolIngestionService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolIngestionService) Capacity() int {
	return s.pool.Cap()
}
