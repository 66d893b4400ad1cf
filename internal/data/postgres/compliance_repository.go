// Package postgres provides PostgreSQL implementations of the domain repositories.
// Repositories run against the pool by default; WithTx binds them to a transaction
// so several writes can commit together.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/domain/compliance"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/fueleu-compliance-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const complianceColumns = `id, ship_id, year, cb_gco2eq, energy, actual_intensity, target_intensity, version, created_at, updated_at`

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// ComplianceRepository implements the compliance.Repository interface for PostgreSQL
type ComplianceRepository struct {
	querier persistence.Querier // *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

func NewComplianceRepository(logger *slog.Logger, db *persistence.PostgresDB) compliance.Repository {
	return &ComplianceRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *ComplianceRepository) WithTx(tx pgx.Tx) compliance.Repository {
	return &ComplianceRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func notFoundRecord(shipID string, year int) error {
	return shared.NotFoundError{Resource: "compliance record", Key: compliance.Key(shipID, year)}
}

func scanRecord(row rowScanner) (*compliance.Record, error) {
	var rec compliance.Record
	err := row.Scan(
		&rec.ID,
		&rec.ShipID,
		&rec.Year,
		&rec.CB,
		&rec.Energy,
		&rec.ActualIntensity,
		&rec.TargetIntensity,
		&rec.Version,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get returns the record for (shipID, year) or a NotFoundError
func (r *ComplianceRepository) Get(ctx context.Context, shipID string, year int) (*compliance.Record, error) {
	query := `
		SELECT ` + complianceColumns + `
		FROM ship_compliance
		WHERE ship_id = $1 AND year = $2
	`

	rec, err := scanRecord(r.querier.QueryRow(ctx, query, shipID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundRecord(shipID, year)
		}
		r.logger.Error("Failed to get compliance record", "ship_id", shipID, "year", year, "error", err)
		return nil, fmt.Errorf("failed to get compliance record: %w", err)
	}

	return rec, nil
}

// CreateIfAbsent inserts the record unless one already exists for its (ship, year).
// When another writer got there first the stored row is returned with created == false.
func (r *ComplianceRepository) CreateIfAbsent(ctx context.Context, rec *compliance.Record) (*compliance.Record, bool, error) {
	query := `
		INSERT INTO ship_compliance (` + complianceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (ship_id, year) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.ShipID,
		rec.Year,
		rec.CB,
		rec.Energy,
		rec.ActualIntensity,
		rec.TargetIntensity,
		rec.Version,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create compliance record", "ship_id", rec.ShipID, "year", rec.Year, "error", err)
		return nil, false, fmt.Errorf("failed to create compliance record: %w", err)
	}

	if result.RowsAffected() == 1 {
		return rec, true, nil
	}

	stored, err := r.Get(ctx, rec.ShipID, rec.Year)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// LockForUpdate reads the record and holds a row lock until the transaction ends.
// Only meaningful on a repository bound with WithTx.
func (r *ComplianceRepository) LockForUpdate(ctx context.Context, shipID string, year int) (*compliance.Record, error) {
	query := `
		SELECT ` + complianceColumns + `
		FROM ship_compliance
		WHERE ship_id = $1 AND year = $2
		FOR UPDATE
	`

	rec, err := scanRecord(r.querier.QueryRow(ctx, query, shipID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundRecord(shipID, year)
		}
		r.logger.Error("Failed to lock compliance record", "ship_id", shipID, "year", year, "error", err)
		return nil, fmt.Errorf("failed to lock compliance record: %w", err)
	}

	return rec, nil
}

// UpdateBalance overwrites the running balance and bumps the version
func (r *ComplianceRepository) UpdateBalance(ctx context.Context, id uuid.UUID, cb decimal.Decimal) error {
	query := `
		UPDATE ship_compliance
		SET cb_gco2eq = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, cb, id)
	if err != nil {
		r.logger.Error("Failed to update compliance balance", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update compliance balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.NotFoundError{Resource: "compliance record", Key: id.String()}
	}

	return nil
}

func (r *ComplianceRepository) ListByYear(ctx context.Context, year int) ([]*compliance.Record, error) {
	query := `
		SELECT ` + complianceColumns + `
		FROM ship_compliance
		WHERE year = $1
		ORDER BY ship_id ASC
	`

	rows, err := r.querier.Query(ctx, query, year)
	if err != nil {
		r.logger.Error("Failed to list compliance records", "year", year, "error", err)
		return nil, fmt.Errorf("failed to list compliance records: %w", err)
	}
	defer rows.Close()

	records := []*compliance.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			r.logger.Error("Failed to scan compliance record", "error", err)
			return nil, fmt.Errorf("failed to scan compliance record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over compliance records: %w", err)
	}

	return records, nil
}
