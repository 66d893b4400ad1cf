package journal

import (
	"context"
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is one committed change to a ship's compliance position.
type Event struct {
	EventID       uuid.UUID        `json:"event_id"`
	Type          shared.EventType `json:"type"`
	ShipID        string           `json:"ship_id"`
	Year          int              `json:"year"`
	Amount        decimal.Decimal  `json:"amount"`
	CBBefore      decimal.Decimal  `json:"cb_before"`
	CBAfter       decimal.Decimal  `json:"cb_after"`
	PoolID        *uuid.UUID       `json:"pool_id,omitempty"`
	CorrelationID string           `json:"correlation_id,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
	RecordedAt    *time.Time       `json:"recorded_at,omitempty"`
}

// NewEvent stamps a fresh event, picking up the correlation id carried by ctx.
func NewEvent(ctx context.Context, eventType shared.EventType, shipID string, year int, amount, cbBefore, cbAfter decimal.Decimal) *Event {
	return &Event{
		EventID:       uuid.New(),
		Type:          eventType,
		ShipID:        shipID,
		Year:          year,
		Amount:        amount,
		CBBefore:      cbBefore,
		CBAfter:       cbAfter,
		CorrelationID: shared.CorrelationIDFrom(ctx),
		OccurredAt:    time.Now().UTC(),
	}
}

// WithPool tags the event with the pool that caused it
func (e *Event) WithPool(poolID uuid.UUID) *Event {
	id := poolID
	e.PoolID = &id
	return e
}
