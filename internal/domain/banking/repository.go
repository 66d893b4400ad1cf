package banking

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository persists bank entries
type Repository interface {
	Create(ctx context.Context, entry *Entry) error

	// ListByShip returns a ship's entries newest first. A non-nil year keeps entries
	// banked in that year or applied to it.
	ListByShip(ctx context.Context, shipID string, year *int) ([]*Entry, error)

	// ListUnapplied returns unapplied entries in FIFO order, row-locked when run inside a transaction
	ListUnapplied(ctx context.Context, shipID string) ([]*Entry, error)

	Update(ctx context.Context, entry *Entry) error
	SumUnapplied(ctx context.Context, shipID string) (decimal.Decimal, error)
	SumAppliedToYear(ctx context.Context, shipID string, year int) (decimal.Decimal, error)
	WithTx(tx pgx.Tx) Repository
}
