package outbox

import (
	"context"
	"strconv"

	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages transactional outbox message persistence
type Repository interface {
	Create(ctx context.Context, message *Message) error
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error
	IncrementAttempts(ctx context.Context, id int64) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*Message, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrMessageNotFound is returned when no row matches the outbox id or event id.
type ErrMessageNotFound struct {
	ID      int64
	EventID uuid.UUID
}

func (e ErrMessageNotFound) Error() string {
	if e.EventID != uuid.Nil {
		return "outbox message not found for event " + e.EventID.String()
	}
	return "outbox message not found: " + strconv.FormatInt(e.ID, 10)
}

// ErrDuplicateMessage means the event was already recorded in the outbox.
type ErrDuplicateMessage struct {
	EventID uuid.UUID
}

func (e ErrDuplicateMessage) Error() string {
	return "duplicate outbox message: " + e.EventID.String()
}
