package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/fueleu-compliance-ledger/internal/domain/outbox"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
	"github.com/jackc/pgx/v5"
)

// recordEvents writes events to the outbox inside tx, so they are published only if tx commits
func recordEvents(ctx context.Context, outboxRepo outbox.Repository, tx pgx.Tx, events ...*journal.Event) error {
	repo := outboxRepo.WithTx(tx)
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return fmt.Errorf("failed to build outbox message: %w", err)
		}
		if err := repo.Create(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// outcomeOf classifies an operation error for metrics
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, shared.ValidationError{}), errors.Is(err, shared.NotFoundError{}):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
