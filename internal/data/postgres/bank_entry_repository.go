package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/banking"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/fueleu-compliance-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const bankEntryColumns = `id, ship_id, year, amount_gco2eq, applied, applied_year, created_at, updated_at`

// BankEntryRepository implements the banking.Repository interface for PostgreSQL
type BankEntryRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewBankEntryRepository(logger *slog.Logger, db *persistence.PostgresDB) banking.Repository {
	return &BankEntryRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *BankEntryRepository) WithTx(tx pgx.Tx) banking.Repository {
	return &BankEntryRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanEntries(rows pgx.Rows) ([]*banking.Entry, error) {
	defer rows.Close()

	entries := []*banking.Entry{}
	for rows.Next() {
		var e banking.Entry
		if err := rows.Scan(
			&e.ID,
			&e.ShipID,
			&e.Year,
			&e.Amount,
			&e.Applied,
			&e.AppliedYear,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bank entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over bank entries: %w", err)
	}
	return entries, nil
}

// Create stores an entry and fills in its id and timestamps. A zero CreatedAt is taken from
// the database clock at insert time, after the caller's ship lock, so queue order follows
// commit order. Split remainders pass their original CreatedAt to keep their place.
func (r *BankEntryRepository) Create(ctx context.Context, e *banking.Entry) error {
	query := `
		INSERT INTO bank_entries (ship_id, year, amount_gco2eq, applied, applied_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, clock_timestamp()), clock_timestamp())
		RETURNING id, created_at, updated_at
	`

	var createdAt *time.Time
	if !e.CreatedAt.IsZero() {
		t := e.CreatedAt
		createdAt = &t
	}

	err := r.querier.QueryRow(ctx, query,
		e.ShipID,
		e.Year,
		e.Amount,
		e.Applied,
		e.AppliedYear,
		createdAt,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create bank entry", "ship_id", e.ShipID, "year", e.Year, "error", err)
		return fmt.Errorf("failed to create bank entry: %w", err)
	}

	return nil
}

func (r *BankEntryRepository) ListByShip(ctx context.Context, shipID string, year *int) ([]*banking.Entry, error) {
	query := `
		SELECT ` + bankEntryColumns + `
		FROM bank_entries
		WHERE ship_id = $1
		ORDER BY created_at DESC, id DESC
	`
	args := []any{shipID}
	if year != nil {
		query = `
		SELECT ` + bankEntryColumns + `
		FROM bank_entries
		WHERE ship_id = $1 AND (year = $2 OR applied_year = $2)
		ORDER BY created_at DESC, id DESC
	`
		args = append(args, *year)
	}

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list bank entries", "ship_id", shipID, "error", err)
		return nil, fmt.Errorf("failed to list bank entries: %w", err)
	}

	entries, err := scanEntries(rows)
	if err != nil {
		r.logger.Error("Failed to read bank entries", "ship_id", shipID, "error", err)
		return nil, err
	}
	return entries, nil
}

// ListUnapplied returns the ship's unapplied entries oldest first. Inside a transaction
// the rows stay locked until commit.
func (r *BankEntryRepository) ListUnapplied(ctx context.Context, shipID string) ([]*banking.Entry, error) {
	query := `
		SELECT ` + bankEntryColumns + `
		FROM bank_entries
		WHERE ship_id = $1 AND applied = FALSE
		ORDER BY created_at ASC, id ASC
		FOR UPDATE
	`

	rows, err := r.querier.Query(ctx, query, shipID)
	if err != nil {
		r.logger.Error("Failed to list unapplied bank entries", "ship_id", shipID, "error", err)
		return nil, fmt.Errorf("failed to list unapplied bank entries: %w", err)
	}

	entries, err := scanEntries(rows)
	if err != nil {
		r.logger.Error("Failed to read unapplied bank entries", "ship_id", shipID, "error", err)
		return nil, err
	}
	return entries, nil
}

// Update persists amount and application state of an existing entry
func (r *BankEntryRepository) Update(ctx context.Context, e *banking.Entry) error {
	query := `
		UPDATE bank_entries
		SET amount_gco2eq = $1, applied = $2, applied_year = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.querier.Exec(ctx, query, e.Amount, e.Applied, e.AppliedYear, e.UpdatedAt, e.ID)
	if err != nil {
		r.logger.Error("Failed to update bank entry", "id", e.ID, "error", err)
		return fmt.Errorf("failed to update bank entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.NotFoundError{Resource: "bank entry", Key: strconv.FormatInt(e.ID, 10)}
	}

	return nil
}

func (r *BankEntryRepository) SumUnapplied(ctx context.Context, shipID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount_gco2eq), 0)
		FROM bank_entries
		WHERE ship_id = $1 AND applied = FALSE
	`

	var total decimal.Decimal
	if err := r.querier.QueryRow(ctx, query, shipID).Scan(&total); err != nil {
		r.logger.Error("Failed to sum unapplied bank entries", "ship_id", shipID, "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum unapplied bank entries: %w", err)
	}
	return total, nil
}

func (r *BankEntryRepository) SumAppliedToYear(ctx context.Context, shipID string, year int) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount_gco2eq), 0)
		FROM bank_entries
		WHERE ship_id = $1 AND applied = TRUE AND applied_year = $2
	`

	var total decimal.Decimal
	if err := r.querier.QueryRow(ctx, query, shipID, year).Scan(&total); err != nil {
		r.logger.Error("Failed to sum applied bank entries", "ship_id", shipID, "year", year, "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum applied bank entries: %w", err)
	}
	return total, nil
}
