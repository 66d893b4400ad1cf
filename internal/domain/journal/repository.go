package journal

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the append-only compliance history
type Repository interface {
	// Append stores e; replaying an already stored event returns ErrDuplicateEvent
	Append(ctx context.Context, e *Event) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*Event, error)
	ListByShip(ctx context.Context, shipID string, limit, offset int) ([]*Event, error)
	CountByShip(ctx context.Context, shipID string) (int64, error)
}

// ErrEventNotFound indicates missing journal event
type ErrEventNotFound struct {
	EventID uuid.UUID
}

func (e ErrEventNotFound) Error() string {
	return "journal event not found: " + e.EventID.String()
}

// Is matches any ErrEventNotFound when the target id is nil
func (e ErrEventNotFound) Is(target error) bool {
	t, ok := target.(ErrEventNotFound)
	if !ok {
		return false
	}
	if t.EventID == uuid.Nil {
		return true
	}
	return e.EventID == t.EventID
}

// ErrDuplicateEvent indicates the event was already journaled
type ErrDuplicateEvent struct {
	EventID uuid.UUID
}

func (e ErrDuplicateEvent) Error() string {
	return "duplicate journal event: " + e.EventID.String()
}

// Is matches any ErrDuplicateEvent when the target id is nil
func (e ErrDuplicateEvent) Is(target error) bool {
	t, ok := target.(ErrDuplicateEvent)
	if !ok {
		return false
	}
	if t.EventID == uuid.Nil {
		return true
	}
	return e.EventID == t.EventID
}
