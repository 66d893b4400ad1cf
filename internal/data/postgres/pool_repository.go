package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/domain/pooling"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/fueleu-compliance-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PoolRepository implements the pooling.Repository interface for PostgreSQL
type PoolRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewPoolRepository(logger *slog.Logger, db *persistence.PostgresDB) pooling.Repository {
	return &PoolRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *PoolRepository) WithTx(tx pgx.Tx) pooling.Repository {
	return &PoolRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts the pool row followed by one row per member. It is only atomic
// when the repository is bound to a transaction.
func (r *PoolRepository) Create(ctx context.Context, pool *pooling.Pool) error {
	poolQuery := `
		INSERT INTO pools (id, year, total_cb, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.querier.Exec(ctx, poolQuery, pool.ID, pool.Year, pool.TotalCB, pool.CreatedAt); err != nil {
		r.logger.Error("Failed to create pool", "pool_id", pool.ID.String(), "error", err)
		return fmt.Errorf("failed to create pool: %w", err)
	}

	memberQuery := `
		INSERT INTO pool_members (id, pool_id, ship_id, cb_before, cb_after)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, m := range pool.Members {
		if _, err := r.querier.Exec(ctx, memberQuery, m.ID, pool.ID, m.ShipID, m.CBBefore, m.CBAfter); err != nil {
			r.logger.Error("Failed to create pool member", "pool_id", pool.ID.String(), "ship_id", m.ShipID, "error", err)
			return fmt.Errorf("failed to create pool member: %w", err)
		}
	}

	return nil
}

func (r *PoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*pooling.Pool, error) {
	query := `
		SELECT id, year, total_cb, created_at
		FROM pools
		WHERE id = $1
	`

	var pool pooling.Pool
	err := r.querier.QueryRow(ctx, query, id).Scan(&pool.ID, &pool.Year, &pool.TotalCB, &pool.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFoundError{Resource: "pool", Key: id.String()}
		}
		r.logger.Error("Failed to get pool", "pool_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	if pool.Members, err = r.members(ctx, pool.ID); err != nil {
		return nil, err
	}
	return &pool, nil
}

func (r *PoolRepository) ListByYear(ctx context.Context, year int) ([]*pooling.Pool, error) {
	query := `
		SELECT id, year, total_cb, created_at
		FROM pools
		WHERE year = $1
		ORDER BY created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, year)
	if err != nil {
		r.logger.Error("Failed to list pools", "year", year, "error", err)
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	pools := []*pooling.Pool{}
	for rows.Next() {
		var pool pooling.Pool
		if err := rows.Scan(&pool.ID, &pool.Year, &pool.TotalCB, &pool.CreatedAt); err != nil {
			rows.Close()
			r.logger.Error("Failed to scan pool", "error", err)
			return nil, fmt.Errorf("failed to scan pool: %w", err)
		}
		pools = append(pools, &pool)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over pools: %w", err)
	}

	// Members are loaded after the pool cursor is closed; a transaction connection
	// cannot run a second query while rows are still being read.
	for _, pool := range pools {
		if pool.Members, err = r.members(ctx, pool.ID); err != nil {
			return nil, err
		}
	}
	return pools, nil
}

func (r *PoolRepository) members(ctx context.Context, poolID uuid.UUID) ([]*pooling.PoolMember, error) {
	query := `
		SELECT id, pool_id, ship_id, cb_before, cb_after
		FROM pool_members
		WHERE pool_id = $1
		ORDER BY cb_before DESC, ship_id ASC
	`

	rows, err := r.querier.Query(ctx, query, poolID)
	if err != nil {
		r.logger.Error("Failed to list pool members", "pool_id", poolID.String(), "error", err)
		return nil, fmt.Errorf("failed to list pool members: %w", err)
	}
	defer rows.Close()

	members := []*pooling.PoolMember{}
	for rows.Next() {
		var m pooling.PoolMember
		if err := rows.Scan(&m.ID, &m.PoolID, &m.ShipID, &m.CBBefore, &m.CBAfter); err != nil {
			return nil, fmt.Errorf("failed to scan pool member: %w", err)
		}
		members = append(members, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over pool members: %w", err)
	}
	return members, nil
}
