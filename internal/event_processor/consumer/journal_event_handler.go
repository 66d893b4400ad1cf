package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/fueleu-compliance-ledger/internal/event_processor/service"
	"github.com/fueleu-compliance-ledger/internal/platform/messaging/producers"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
	"github.com/google/uuid"
)

const outcomeDeadLettered = "dead_lettered"

// JournalEventHandler projects compliance events read from Kafka into the journal
type JournalEventHandler struct {
	projectionService service.ProjectionService
	producer          producers.DeadLetterPublisher
	metrics           *metrics.Metrics
	logger            *slog.Logger
}

func NewJournalEventHandler(
	logger *slog.Logger,
	projectionService service.ProjectionService,
	producer producers.DeadLetterPublisher,
	m *metrics.Metrics,
) *JournalEventHandler {
	return &JournalEventHandler{
		projectionService: projectionService,
		producer:          producer,
		metrics:           m,
		logger:            logger,
	}
}

// HandleMessage returns nil once the event is journaled or dead lettered.
// An error leaves the offset uncommitted so the event is redelivered.
func (h *JournalEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	event, err := decodeEvent(value)
	if err != nil {
		h.logger.Error("Unprocessable compliance event", "message_key", string(key), "error", err)
		return h.deadLetter(ctx, key, value, err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}
	logger.Debug("Received compliance event", "event_id", event.EventID, "type", event.Type, "ship_id", event.ShipID)

	if err := h.projectionService.Project(ctx, event); err != nil {
		return fmt.Errorf("projecting event %s failed: %w", event.EventID, err)
	}
	return nil
}

func (h *JournalEventHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	if h.producer == nil {
		return fmt.Errorf("unprocessable event and no DLQ configured: %w", cause)
	}

	reason := "unprocessable compliance event: " + cause.Error()
	if err := h.producer.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		h.logger.Error("Failed to publish message to DLQ", "dlq_error", err, "original_error", cause, "message_key", string(key))
		return fmt.Errorf("dead letter failed: %w", err)
	}

	h.metrics.IncJournalProjected(outcomeDeadLettered)
	return nil
}

func decodeEvent(value []byte) (*journal.Event, error) {
	var event journal.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.EventID == uuid.Nil {
		return nil, fmt.Errorf("event has no id")
	}
	if !event.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}
	if event.ShipID == "" {
		return nil, fmt.Errorf("event %s has no ship id", event.EventID)
	}
	return &event, nil
}
