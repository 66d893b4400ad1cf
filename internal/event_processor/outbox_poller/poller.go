package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fueleu-compliance-ledger/internal/config"
	"github.com/fueleu-compliance-ledger/internal/domain/outbox"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
)

// Poller relays pending outbox messages to the event stream
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        EventPublisher
	metrics          *metrics.Metrics
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		metrics:          m,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping")
			return
		case <-ticker.C:
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))

	for _, msg := range messages {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.relay(ctx, msg)
	}
	return nil
}

func (p *Poller) relay(ctx context.Context, msg *outbox.Message) {
	logger := p.logger.With("outbox_id", msg.ID, "event_id", msg.EventID, "ship_id", msg.ShipID, "event_type", msg.EventType)

	err := p.publisher.PublishEvent(ctx, msg)
	if err == nil {
		if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusProcessed); errUpdate != nil {
			// The event is out; a later poll republishes it and the journal drops the duplicate.
			logger.Error("Published event but failed to mark outbox message processed", "error", errUpdate)
			p.metrics.IncOutboxPublished(metrics.OutcomeError)
			return
		}
		p.metrics.IncOutboxPublished(metrics.OutcomeSuccess)
		logger.Debug("Outbox message published")
		return
	}

	var malformed ErrMalformedMessage
	if errors.As(err, &malformed) {
		logger.Error("Outbox message cannot be published, marking FAILED_TO_PUBLISH", "error", err)
		p.markFailed(ctx, logger, msg)
		return
	}

	logger.Warn("Failed to publish outbox message", "attempts", msg.Attempts, "error", err)
	p.metrics.IncOutboxPublished(metrics.OutcomeError)

	if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
		logger.Error("Failed to increment attempts for outbox message", "error", errInc)
		return
	}

	if msg.Attempts+1 >= p.maxRetryAttempts {
		logger.Error("Max retry attempts reached, marking FAILED_TO_PUBLISH", "attempts_made", msg.Attempts+1)
		p.markFailed(ctx, logger, msg)
	}
}

func (p *Poller) markFailed(ctx context.Context, logger *slog.Logger, msg *outbox.Message) {
	p.metrics.IncOutboxPublished(metrics.OutcomeRejected)
	if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); err != nil {
		logger.Error("Failed to update outbox status to FAILED_TO_PUBLISH", "error", err)
	}
}
