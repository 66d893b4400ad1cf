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
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
	"github.com/fueleu-compliance-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BankingServiceImpl implements the BankingService interface
type BankingServiceImpl struct {
	db             persistence.Transactor
	locker         compliance.ShipLocker
	complianceRepo compliance.Repository
	bankRepo       banking.Repository
	outboxRepo     outbox.Repository
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewBankingService creates a new banking service
func NewBankingService(
	logger *slog.Logger,
	db persistence.Transactor,
	locker compliance.ShipLocker,
	complianceRepo compliance.Repository,
	bankRepo banking.Repository,
	outboxRepo outbox.Repository,
	m *metrics.Metrics,
) BankingService {
	return &BankingServiceImpl{
		db:             db,
		locker:         locker,
		complianceRepo: complianceRepo,
		bankRepo:       bankRepo,
		outboxRepo:     outboxRepo,
		metrics:        m,
		logger:         logger,
	}
}

// BankSurplus checks every precondition under the ship lock before writing anything
func (s *BankingServiceImpl) BankSurplus(ctx context.Context, shipID string, year int, amount decimal.Decimal) (*banking.Result, error) {
	start := time.Now()

	var result *banking.Result
	err := func() error {
		entry, err := banking.NewEntry(shipID, year, amount)
		if err != nil {
			return err
		}

		return s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			if err := s.locker.LockShips(ctx, tx, shipID); err != nil {
				return err
			}

			complianceRepo := s.complianceRepo.WithTx(tx)
			record, err := complianceRepo.LockForUpdate(ctx, shipID, year)
			if err != nil {
				return err
			}

			if !record.IsSurplus() {
				return shared.NewValidationError("cannot bank from negative or zero compliance balance")
			}
			if amount.GreaterThan(record.CB) {
				return shared.NewValidationError("amount %s exceeds available surplus %s", amount.String(), record.CB.String())
			}

			if err := s.bankRepo.WithTx(tx).Create(ctx, entry); err != nil {
				return err
			}

			cbAfter := record.CB.Sub(amount)
			if err := complianceRepo.UpdateBalance(ctx, record.ID, cbAfter); err != nil {
				return err
			}

			event := journal.NewEvent(ctx, shared.EventTypeSurplusBanked, shipID, year, amount, record.CB, cbAfter)
			if err := recordEvents(ctx, s.outboxRepo, tx, event); err != nil {
				return err
			}

			result = &banking.Result{CBBefore: record.CB, Applied: amount, CBAfter: cbAfter, Year: year}
			return nil
		})
	}()

	s.metrics.ObserveOperation("bank", outcomeOf(err), time.Since(start))
	if err != nil {
		s.logger.Info("Bank surplus rejected",
			"ship_id", shipID,
			"year", year,
			"amount", amount.String(),
			"error", err,
		)
		return nil, err
	}

	s.metrics.AddBanked(amount)
	s.logger.Info("Surplus banked",
		"ship_id", shipID,
		"year", year,
		"amount", amount.String(),
		"cb_after", result.CBAfter.String(),
	)
	return result, nil
}

// ApplyBanked consumes unapplied entries FIFO and credits the deficit year
func (s *BankingServiceImpl) ApplyBanked(ctx context.Context, shipID string, deficitYear int, amount decimal.Decimal) (*banking.Result, error) {
	start := time.Now()

	var result *banking.Result
	err := func() error {
		if !amount.IsPositive() {
			return shared.NewValidationError("cannot apply non-positive amount")
		}

		return s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			if err := s.locker.LockShips(ctx, tx, shipID); err != nil {
				return err
			}

			bankRepo := s.bankRepo.WithTx(tx)
			unapplied, err := bankRepo.ListUnapplied(ctx, shipID)
			if err != nil {
				return err
			}

			available := banking.AvailableBalance(unapplied)
			if amount.GreaterThan(available) {
				return shared.NewValidationError("amount %s exceeds available banked balance %s", amount.String(), available.String())
			}

			complianceRepo := s.complianceRepo.WithTx(tx)
			record, err := complianceRepo.LockForUpdate(ctx, shipID, deficitYear)
			if err != nil {
				return err
			}

			consumption, err := banking.Consume(shipID, unapplied, amount, deficitYear)
			if err != nil {
				return err
			}
			for _, entry := range consumption.Consumed {
				if err := bankRepo.Update(ctx, entry); err != nil {
					return err
				}
			}
			if consumption.Remainder != nil {
				if err := bankRepo.Create(ctx, consumption.Remainder); err != nil {
					return err
				}
			}

			cbAfter := record.CB.Add(amount)
			if err := complianceRepo.UpdateBalance(ctx, record.ID, cbAfter); err != nil {
				return err
			}

			event := journal.NewEvent(ctx, shared.EventTypeBankedApplied, shipID, deficitYear, amount, record.CB, cbAfter)
			if err := recordEvents(ctx, s.outboxRepo, tx, event); err != nil {
				return err
			}

			result = &banking.Result{CBBefore: record.CB, Applied: amount, CBAfter: cbAfter, Year: deficitYear}
			return nil
		})
	}()

	s.metrics.ObserveOperation("apply", outcomeOf(err), time.Since(start))
	if err != nil {
		if errors.Is(err, shared.ConsistencyError{}) {
			s.metrics.IncConsistencyError()
			s.logger.Error("Bank entry queue exhausted after availability check",
				"ship_id", shipID,
				"year", deficitYear,
				"amount", amount.String(),
				"investigate", true,
				"error", err,
			)
			return nil, err
		}
		s.logger.Info("Apply banked rejected",
			"ship_id", shipID,
			"year", deficitYear,
			"amount", amount.String(),
			"error", err,
		)
		return nil, err
	}

	s.metrics.AddApplied(amount)
	s.logger.Info("Banked surplus applied",
		"ship_id", shipID,
		"year", deficitYear,
		"amount", amount.String(),
		"cb_after", result.CBAfter.String(),
	)
	return result, nil
}

func (s *BankingServiceImpl) GetAvailableBalance(ctx context.Context, shipID string) (decimal.Decimal, error) {
	return s.bankRepo.SumUnapplied(ctx, shipID)
}

func (s *BankingServiceImpl) GetBankingRecords(ctx context.Context, shipID string, year *int) ([]*banking.Entry, error) {
	return s.bankRepo.ListByShip(ctx, shipID, year)
}
