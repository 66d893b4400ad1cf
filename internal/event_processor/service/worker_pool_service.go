package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolProjectionService runs projections on a bounded ants pool so a burst of
// redeliveries cannot open more Mongo writes than the pool size.
type WorkerPoolProjectionService struct {
	baseService ProjectionService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolProjectionService(
	baseService ProjectionService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProjectionService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &WorkerPoolProjectionService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Project submits the event to the pool and waits for its result or for ctx to end
func (s *WorkerPoolProjectionService) Project(ctx context.Context, event *journal.Event) error {
	resultChan := make(chan error, 1)

	eventCopy := *event
	err := s.pool.Submit(func() {
		resultChan <- s.baseService.Project(ctx, &eventCopy)
	})
	if err != nil {
		s.logger.Error("Failed to submit event to worker pool", "event_id", event.EventID, "error", err)
		return fmt.Errorf("submit event %s: %w", event.EventID, err)
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolProjectionService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolProjectionService) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolProjectionService) Capacity() int {
	return s.pool.Cap()
}
