package route

import (
	"context"
)

// Repository is read-only: routes are seeded and never mutated by the ledger
type Repository interface {
	GetByRouteID(ctx context.Context, routeID string) (*Route, error)
	List(ctx context.Context, filter Filter) ([]*Route, error)
}
