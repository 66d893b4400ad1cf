package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
)

// Projection outcome recorded when the journal already holds the event
const outcomeDuplicate = "duplicate"

// JournalProjectionService appends events to the journal. Redelivered events are acknowledged
// without a second write because Append rejects a repeated event id.
type JournalProjectionService struct {
	journalRepo journal.Repository
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewJournalProjectionService(journalRepo journal.Repository, m *metrics.Metrics, logger *slog.Logger) *JournalProjectionService {
	return &JournalProjectionService{
		journalRepo: journalRepo,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *JournalProjectionService) Project(ctx context.Context, event *journal.Event) error {
	logger := s.logger.With("event_id", event.EventID, "ship_id", event.ShipID, "type", event.Type)
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	recordedAt := s.now().UTC()
	event.RecordedAt = &recordedAt

	err := s.journalRepo.Append(ctx, event)
	switch {
	case err == nil:
		s.metrics.IncJournalProjected(metrics.OutcomeSuccess)
		logger.Info("Compliance event journaled", "year", event.Year, "cb_after", event.CBAfter.String())
		return nil
	case errors.Is(err, journal.ErrDuplicateEvent{}):
		s.metrics.IncJournalProjected(outcomeDuplicate)
		logger.Info("Compliance event already journaled")
		return nil
	default:
		s.metrics.IncJournalProjected(metrics.OutcomeError)
		logger.Error("Failed to journal compliance event", "error", err)
		return fmt.Errorf("journal event %s: %w", event.EventID, err)
	}
}
