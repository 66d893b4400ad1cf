package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/banking"
	"github.com/fueleu-compliance-ledger/internal/domain/compliance"
	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/fueleu-compliance-ledger/internal/domain/outbox"
	"github.com/fueleu-compliance-ledger/internal/domain/route"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
	"github.com/fueleu-compliance-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const computeTimeout = 15 * time.Second

// ComplianceServiceImpl implements the ComplianceService interface
type ComplianceServiceImpl struct {
	db             persistence.Transactor
	routeRepo      route.Repository
	complianceRepo compliance.Repository
	bankRepo       banking.Repository
	outboxRepo     outbox.Repository
	targets        compliance.TargetProvider
	metrics        *metrics.Metrics
	logger         *slog.Logger

	// first computations of the same (ship, year) share one round trip
	computing singleflight.Group
}

// NewComplianceService creates a new compliance service
func NewComplianceService(
	logger *slog.Logger,
	db persistence.Transactor,
	routeRepo route.Repository,
	complianceRepo compliance.Repository,
	bankRepo banking.Repository,
	outboxRepo outbox.Repository,
	targets compliance.TargetProvider,
	m *metrics.Metrics,
) ComplianceService {
	return &ComplianceServiceImpl{
		db:             db,
		routeRepo:      routeRepo,
		complianceRepo: complianceRepo,
		bankRepo:       bankRepo,
		outboxRepo:     outboxRepo,
		targets:        targets,
		metrics:        m,
		logger:         logger,
	}
}

// GetComplianceBalance returns the stored record, computing it from the route on first access.
// A stored record is never recomputed.
func (s *ComplianceServiceImpl) GetComplianceBalance(ctx context.Context, shipID string, year int) (*compliance.Record, error) {
	record, err := s.complianceRepo.Get(ctx, shipID, year)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, shared.NotFoundError{}) {
		return nil, err
	}

	// The shared computation outlives any single caller so one cancelled request
	// does not fail the others waiting on the same (ship, year).
	results := s.computing.DoChan(compliance.Key(shipID, year), func() (interface{}, error) {
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()
		return s.computeAndStore(computeCtx, shipID, year)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*compliance.Record), nil
	}
}

func (s *ComplianceServiceImpl) computeAndStore(ctx context.Context, shipID string, year int) (*compliance.Record, error) {
	start := time.Now()

	r, err := s.routeRepo.GetByRouteID(ctx, shipID)
	if err != nil {
		s.metrics.ObserveOperation("cb_compute", outcomeOf(err), time.Since(start))
		return nil, err
	}
	if r.Year != year {
		s.logger.Info("Route year does not match requested year",
			"ship_id", shipID,
			"route_year", r.Year,
			"year", year,
		)
		err := shared.NotFoundError{Resource: "compliance data", Key: compliance.Key(shipID, year)}
		s.metrics.ObserveOperation("cb_compute", outcomeOf(err), time.Since(start))
		return nil, err
	}

	candidate := compliance.NewRecord(shipID, year, r.FuelConsumption, r.GHGIntensity, s.targets.TargetFor(year))

	var stored *compliance.Record
	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		var created bool
		var err error
		stored, created, err = s.complianceRepo.WithTx(tx).CreateIfAbsent(ctx, candidate)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}

		event := journal.NewEvent(ctx, shared.EventTypeBalanceComputed, shipID, year, stored.CB, decimal.Zero, stored.CB)
		return recordEvents(ctx, s.outboxRepo, tx, event)
	})
	s.metrics.ObserveOperation("cb_compute", outcomeOf(err), time.Since(start))
	if err != nil {
		s.logger.Error("Failed to store compliance balance", "ship_id", shipID, "year", year, "error", err)
		return nil, err
	}

	s.logger.Info("Compliance balance computed",
		"ship_id", shipID,
		"year", year,
		"cb_gco2eq", stored.CB.String(),
	)
	return stored, nil
}

func (s *ComplianceServiceImpl) GetAdjustedCompliance(ctx context.Context, shipID string, year int) (*compliance.Adjusted, error) {
	record, err := s.GetComplianceBalance(ctx, shipID, year)
	if err != nil {
		return nil, err
	}

	applied, err := s.bankRepo.SumAppliedToYear(ctx, shipID, year)
	if err != nil {
		return nil, err
	}

	return compliance.NewAdjusted(record, applied), nil
}

// ListComplianceBalances resolves the balance of every ship routed in year, computing missing ones
func (s *ComplianceServiceImpl) ListComplianceBalances(ctx context.Context, year int) ([]*compliance.Record, error) {
	routes, err := s.routeRepo.List(ctx, route.Filter{Year: year})
	if err != nil {
		return nil, err
	}

	records := make([]*compliance.Record, 0, len(routes))
	for _, r := range routes {
		record, err := s.GetComplianceBalance(ctx, r.RouteID, year)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *ComplianceServiceImpl) ListAdjustedCompliance(ctx context.Context, year int) ([]*compliance.Adjusted, error) {
	records, err := s.ListComplianceBalances(ctx, year)
	if err != nil {
		return nil, err
	}

	adjusted := make([]*compliance.Adjusted, 0, len(records))
	for _, record := range records {
		applied, err := s.bankRepo.SumAppliedToYear(ctx, record.ShipID, year)
		if err != nil {
			return nil, err
		}
		adjusted = append(adjusted, compliance.NewAdjusted(record, applied))
	}
	return adjusted, nil
}
