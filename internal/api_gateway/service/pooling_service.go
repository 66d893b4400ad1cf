package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/compliance"
	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/fueleu-compliance-ledger/internal/domain/outbox"
	"github.com/fueleu-compliance-ledger/internal/domain/pooling"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
	"github.com/fueleu-compliance-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PoolingServiceImpl implements the PoolingService interface
type PoolingServiceImpl struct {
	db             persistence.Transactor
	locker         compliance.ShipLocker
	complianceRepo compliance.Repository
	poolRepo       pooling.Repository
	outboxRepo     outbox.Repository
	allocate       pooling.AllocationFunc
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewPoolingService creates a pooling service using the equal share allocation
func NewPoolingService(
	logger *slog.Logger,
	db persistence.Transactor,
	locker compliance.ShipLocker,
	complianceRepo compliance.Repository,
	poolRepo pooling.Repository,
	outboxRepo outbox.Repository,
	m *metrics.Metrics,
) PoolingService {
	return &PoolingServiceImpl{
		db:             db,
		locker:         locker,
		complianceRepo: complianceRepo,
		poolRepo:       poolRepo,
		outboxRepo:     outboxRepo,
		allocate:       pooling.EqualShare,
		metrics:        m,
		logger:         logger,
	}
}

// balances loads the current record of every ship; ships without one are left out
func balances(ctx context.Context, shipIDs []string, year int,
	load func(ctx context.Context, shipID string, year int) (*compliance.Record, error),
) (map[string]*compliance.Record, error) {
	records := make(map[string]*compliance.Record, len(shipIDs))
	for _, shipID := range shipIDs {
		record, err := load(ctx, shipID, year)
		if err != nil {
			if errors.Is(err, shared.NotFoundError{}) {
				continue
			}
			return nil, err
		}
		records[shipID] = record
	}
	return records, nil
}

func cbByShip(records map[string]*compliance.Record) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(records))
	for shipID, record := range records {
		out[shipID] = record.CB
	}
	return out
}

func (s *PoolingServiceImpl) ValidatePool(ctx context.Context, year int, shipIDs []string) (*pooling.ValidationResult, error) {
	start := time.Now()
	ids := pooling.DistinctShipIDs(shipIDs)

	records, err := balances(ctx, ids, year, s.complianceRepo.Get)
	if err != nil {
		s.metrics.ObserveOperation("pool_validate", outcomeOf(err), time.Since(start))
		return nil, err
	}

	result := pooling.Evaluate(year, ids, cbByShip(records), s.allocate)

	outcome := metrics.OutcomeSuccess
	if !result.IsValid {
		outcome = metrics.OutcomeRejected
	}
	s.metrics.ObserveOperation("pool_validate", outcome, time.Since(start))
	return result, nil
}

// CreatePool locks every member, re-validates against the locked balances and writes the
// pool together with the new balances in one transaction. An invalid proposal writes nothing.
func (s *PoolingServiceImpl) CreatePool(ctx context.Context, year int, shipIDs []string) (*pooling.Pool, error) {
	start := time.Now()
	ids := pooling.DistinctShipIDs(shipIDs)

	var pool *pooling.Pool
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.locker.LockShips(ctx, tx, ids...); err != nil {
			return err
		}

		complianceRepo := s.complianceRepo.WithTx(tx)
		records, err := balances(ctx, ids, year, complianceRepo.LockForUpdate)
		if err != nil {
			return err
		}

		result := pooling.Evaluate(year, ids, cbByShip(records), s.allocate)
		if !result.IsValid {
			return shared.NewValidationError("pool validation failed: %s", result.Reason())
		}

		pool, err = pooling.NewPool(result)
		if err != nil {
			return err
		}
		if err := s.poolRepo.WithTx(tx).Create(ctx, pool); err != nil {
			return err
		}

		events := make([]*journal.Event, 0, len(pool.Members))
		for _, member := range pool.Members {
			if err := complianceRepo.UpdateBalance(ctx, records[member.ShipID].ID, member.CBAfter); err != nil {
				return err
			}
			event := journal.NewEvent(ctx, shared.EventTypePoolCreated, member.ShipID, year,
				member.CBAfter.Sub(member.CBBefore), member.CBBefore, member.CBAfter)
			events = append(events, event.WithPool(pool.ID))
		}
		return recordEvents(ctx, s.outboxRepo, tx, events...)
	})

	s.metrics.ObserveOperation("pool_create", outcomeOf(err), time.Since(start))
	if err != nil {
		s.logger.Info("Pool creation rejected", "year", year, "ship_ids", ids, "error", err)
		return nil, err
	}

	s.logger.Info("Pool created",
		"pool_id", pool.ID.String(),
		"year", year,
		"members", len(pool.Members),
		"total_cb", pool.TotalCB.String(),
	)
	return pool, nil
}

func (s *PoolingServiceImpl) GetPool(ctx context.Context, id uuid.UUID) (*pooling.Pool, error) {
	return s.poolRepo.GetByID(ctx, id)
}

func (s *PoolingServiceImpl) ListPools(ctx context.Context, year int) ([]*pooling.Pool, error) {
	return s.poolRepo.ListByYear(ctx, year)
}
