package compliance

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository stores one Record per (ship, year)
type Repository interface {
	Get(ctx context.Context, shipID string, year int) (*Record, error)

	// CreateIfAbsent inserts record unless (ship, year) already exists and returns whichever row is stored
	CreateIfAbsent(ctx context.Context, record *Record) (stored *Record, created bool, err error)

	// LockForUpdate reads the record with a row lock held until the surrounding transaction ends
	LockForUpdate(ctx context.Context, shipID string, year int) (*Record, error)

	UpdateBalance(ctx context.Context, id uuid.UUID, cb decimal.Decimal) error
	ListByYear(ctx context.Context, year int) ([]*Record, error)
	WithTx(tx pgx.Tx) Repository
}

// ShipLocker serializes ledger mutations per ship for the lifetime of a transaction
type ShipLocker interface {
	LockShips(ctx context.Context, tx pgx.Tx, shipIDs ...string) error
}
