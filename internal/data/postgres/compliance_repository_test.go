package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/compliance"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var complianceColumnNames = []string{"id", "ship_id", "year", "cb_gco2eq", "energy", "actual_intensity", "target_intensity", "version", "created_at", "updated_at"}

func complianceRows(id uuid.UUID, now time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(complianceColumnNames).
		AddRow(id, "ROUTE-002", 2024, "44278360", "38950000", "88.2", "89.3368", 3, now, now)
}

func TestComplianceRepository_Get(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &ComplianceRepository{querier: mock, logger: newTestLogger()}
	query := sql("FROM ship_compliance WHERE ship_id = $1 AND year = $2")
	id := uuid.New()
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ROUTE-002", 2024).WillReturnRows(complianceRows(id, now))

		rec, err := repo.Get(ctx, "ROUTE-002", 2024)
		require.NoError(t, err)
		assert.Equal(t, id, rec.ID)
		assert.Equal(t, "ROUTE-002", rec.ShipID)
		assert.Equal(t, 2024, rec.Year)
		assert.True(t, decimal.RequireFromString("44278360").Equal(rec.CB))
		assert.True(t, decimal.RequireFromString("89.3368").Equal(rec.TargetIntensity))
		assert.Equal(t, 3, rec.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ROUTE-404", 2024).WillReturnError(pgx.ErrNoRows)

		rec, err := repo.Get(ctx, "ROUTE-404", 2024)
		assert.Nil(t, rec)
		var notFound shared.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "compliance record", notFound.Resource)
		assert.Equal(t, "ROUTE-404/2024", notFound.Key)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(query).WithArgs("ROUTE-002", 2024).WillReturnError(dbErr)

		_, err := repo.Get(ctx, "ROUTE-002", 2024)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to get compliance record")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestComplianceRepository_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &ComplianceRepository{querier: mock, logger: newTestLogger()}

	rec := compliance.NewRecord("ROUTE-002", 2024, decimal.NewFromInt(950), decimal.RequireFromString("88.2"), decimal.RequireFromString("89.3368"))
	insert := sql("INSERT INTO ship_compliance") + ".*" + sql("ON CONFLICT (ship_id, year) DO NOTHING")
	args := []any{rec.ID, rec.ShipID, rec.Year, rec.CB, rec.Energy, rec.ActualIntensity, rec.TargetIntensity, rec.Version, rec.CreatedAt, rec.UpdatedAt}

	t.Run("inserted", func(t *testing.T) {
		mock.ExpectExec(insert).WithArgs(args...).WillReturnResult(pgxmock.NewResult("INSERT", 1))

		stored, created, err := repo.CreateIfAbsent(ctx, rec)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Same(t, rec, stored)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already present returns stored row", func(t *testing.T) {
		existingID := uuid.New()
		mock.ExpectExec(insert).WithArgs(args...).WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectQuery(sql("FROM ship_compliance WHERE ship_id = $1 AND year = $2")).
			WithArgs("ROUTE-002", 2024).
			WillReturnRows(complianceRows(existingID, time.Now()))

		stored, created, err := repo.CreateIfAbsent(ctx, rec)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existingID, stored.ID)
		assert.Equal(t, 3, stored.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert error", func(t *testing.T) {
		mock.ExpectExec(insert).WithArgs(args...).WillReturnError(errors.New("disk full"))

		stored, created, err := repo.CreateIfAbsent(ctx, rec)
		assert.Nil(t, stored)
		assert.False(t, created)
		assert.ErrorContains(t, err, "failed to create compliance record")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestComplianceRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &ComplianceRepository{querier: mock, logger: newTestLogger()}
	query := sql("WHERE ship_id = $1 AND year = $2 FOR UPDATE")

	t.Run("success", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(query).WithArgs("ROUTE-002", 2024).WillReturnRows(complianceRows(id, time.Now()))

		rec, err := repo.LockForUpdate(ctx, "ROUTE-002", 2024)
		require.NoError(t, err)
		assert.Equal(t, id, rec.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("ROUTE-002", 2030).WillReturnError(pgx.ErrNoRows)

		_, err := repo.LockForUpdate(ctx, "ROUTE-002", 2030)
		assert.ErrorIs(t, err, shared.NotFoundError{Resource: "compliance record"})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestComplianceRepository_UpdateBalance(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &ComplianceRepository{querier: mock, logger: newTestLogger()}
	query := sql("UPDATE ship_compliance SET cb_gco2eq = $1, version = version + 1, updated_at = NOW() WHERE id = $2")
	id := uuid.New()
	cb := decimal.NewFromInt(-1200)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(cb, id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateBalance(ctx, id, cb))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(cb, id).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateBalance(ctx, id, cb)
		assert.ErrorIs(t, err, shared.NotFoundError{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestComplianceRepository_ListByYear(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &ComplianceRepository{querier: mock, logger: newTestLogger()}
	now := time.Now()

	rows := pgxmock.NewRows(complianceColumnNames).
		AddRow(uuid.New(), "ROUTE-001", 2024, "-303229440", "49200000", "95.5", "89.3368", 1, now, now).
		AddRow(uuid.New(), "ROUTE-002", 2024, "44278360", "38950000", "88.2", "89.3368", 1, now, now)
	mock.ExpectQuery(sql("FROM ship_compliance WHERE year = $1 ORDER BY ship_id ASC")).WithArgs(2024).WillReturnRows(rows)

	records, err := repo.ListByYear(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ROUTE-001", records[0].ShipID)
	assert.True(t, records[0].CB.IsNegative())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplianceRepository_WithTx(t *testing.T) {
	repo := &ComplianceRepository{logger: newTestLogger()}
	mockTx := pgx.Tx(nil)

	txRepo, ok := repo.WithTx(mockTx).(*ComplianceRepository)
	require.True(t, ok)
	assert.Equal(t, mockTx, txRepo.querier)
	assert.Equal(t, repo.logger, txRepo.logger)
}

func TestShipLocker_LockShips(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	locker := NewShipLocker(newTestLogger())
	lockSQL := sql("SELECT pg_advisory_xact_lock(hashtext($1))")

	t.Run("locks distinct ships in sorted order", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(lockSQL).WithArgs("ship:ROUTE-001").WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectExec(lockSQL).WithArgs("ship:ROUTE-003").WillReturnResult(pgxmock.NewResult("SELECT", 1))

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		err = locker.LockShips(ctx, tx, "ROUTE-003", "ROUTE-001", "ROUTE-003")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock failure", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(lockSQL).WithArgs("ship:ROUTE-001").WillReturnError(errors.New("lock timeout"))

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		err = locker.LockShips(ctx, tx, "ROUTE-001")
		assert.ErrorContains(t, err, "failed to lock ship ROUTE-001")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
