package service

import (
	"context"

	"github.com/fueleu-compliance-ledger/internal/domain/journal"
)

// ProjectionService writes consumed compliance events into the journal
type ProjectionService interface {
	Project(ctx context.Context, event *journal.Event) error
}
