package service

import (
	"context"

	"github.com/fueleu-compliance-ledger/internal/domain/banking"
	"github.com/fueleu-compliance-ledger/internal/domain/compliance"
	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/fueleu-compliance-ledger/internal/domain/pooling"
	"github.com/fueleu-compliance-ledger/internal/domain/route"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComplianceService defines the interface for compliance balance reads
type ComplianceService interface {
	// GetComplianceBalance returns the stored record for (shipID, year), computing and storing it
	// from the ship's route on first access. Returns NotFoundError when no route matches
	GetComplianceBalance(ctx context.Context, shipID string, year int) (*compliance.Record, error)

	// GetAdjustedCompliance returns the stored balance plus banked amounts applied to year
	GetAdjustedCompliance(ctx context.Context, shipID string, year int) (*compliance.Adjusted, error)

	// ListComplianceBalances returns the balance of every ship with a route in year
	ListComplianceBalances(ctx context.Context, year int) ([]*compliance.Record, error)

	ListAdjustedCompliance(ctx context.Context, year int) ([]*compliance.Adjusted, error)
}

// BankingService defines the interface for banking operations
type BankingService interface {
	// BankSurplus moves amount from the (shipID, year) balance into a new bank entry
	// Returns ValidationError for non-positive amounts or amounts above the current surplus
	BankSurplus(ctx context.Context, shipID string, year int, amount decimal.Decimal) (*banking.Result, error)

	// ApplyBanked consumes banked entries oldest first and credits the deficit year's balance
	// Returns ConsistencyError if the entry queue runs dry after the availability check passed
	ApplyBanked(ctx context.Context, shipID string, deficitYear int, amount decimal.Decimal) (*banking.Result, error)

	GetAvailableBalance(ctx context.Context, shipID string) (decimal.Decimal, error)

	// GetBankingRecords lists a ship's entries, optionally narrowed to one banked-from or applied-to year
	GetBankingRecords(ctx context.Context, shipID string, year *int) ([]*banking.Entry, error)
}

// PoolingService defines the interface for pooling operations
type PoolingService interface {
	// ValidatePool checks a proposal against current balances without writing anything
	ValidatePool(ctx context.Context, year int, shipIDs []string) (*pooling.ValidationResult, error)

	// CreatePool re-validates and, when valid, stores the pool and every member's new balance atomically
	CreatePool(ctx context.Context, year int, shipIDs []string) (*pooling.Pool, error)

	GetPool(ctx context.Context, id uuid.UUID) (*pooling.Pool, error)
	ListPools(ctx context.Context, year int) ([]*pooling.Pool, error)
}

// RouteService defines the interface for route reads
type RouteService interface {
	GetRoute(ctx context.Context, routeID string) (*route.Route, error)
	ListRoutes(ctx context.Context, filter route.Filter) ([]*route.Route, error)
}

// JournalService defines the interface for compliance history reads
type JournalService interface {
	// GetShipHistory returns a page of a ship's events newest first, with the total event count
	GetShipHistory(ctx context.Context, shipID string, page, perPage int) ([]*journal.Event, int64, error)
}
