package pooling

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository stores pools together with their members
type Repository interface {
	// Create writes the pool and all its members; callers run it inside the same
	// transaction as the member balance updates
	Create(ctx context.Context, pool *Pool) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pool, error)
	ListByYear(ctx context.Context, year int) ([]*Pool, error)
	WithTx(tx pgx.Tx) Repository
}
