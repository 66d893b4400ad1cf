package persistence

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*PostgresDB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return &PostgresDB{
		beginner: mock,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}, mock
}

func TestPostgresDB_ExecuteTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit on success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE ship_compliance").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, "UPDATE ship_compliance SET cb_gco2eq = 0")
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		fnErr := errors.New("validation failed")
		err := db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			return fnErr
		})

		assert.ErrorIs(t, err, fnErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback on panic", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = db.ExecuteTx(ctx, func(tx pgx.Tx) error {
				panic("boom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		called := false
		err := db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			called = true
			return nil
		})

		assert.ErrorContains(t, err, "failed to begin transaction")
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Commit failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		err := db.ExecuteTx(ctx, func(tx pgx.Tx) error { return nil })

		assert.ErrorContains(t, err, "failed to commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresDB_Ping(t *testing.T) {
	ctx := context.Background()

	t.Run("Reachable", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectPing()

		assert.NoError(t, db.Ping(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unreachable", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		assert.EqualError(t, db.Ping(ctx), "connection refused")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
