package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fueleu-compliance-ledger/internal/domain/route"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/fueleu-compliance-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const routeColumns = `id, route_id, vessel_type, fuel_type, year, ghg_intensity, fuel_consumption, distance, total_emissions, is_baseline, created_at`

// RouteRepository implements the read-only route.Repository interface for PostgreSQL
type RouteRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewRouteRepository(logger *slog.Logger, db *persistence.PostgresDB) route.Repository {
	return &RouteRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func scanRoute(row rowScanner) (*route.Route, error) {
	var rt route.Route
	err := row.Scan(
		&rt.ID,
		&rt.RouteID,
		&rt.VesselType,
		&rt.FuelType,
		&rt.Year,
		&rt.GHGIntensity,
		&rt.FuelConsumption,
		&rt.Distance,
		&rt.TotalEmissions,
		&rt.IsBaseline,
		&rt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *RouteRepository) GetByRouteID(ctx context.Context, routeID string) (*route.Route, error) {
	query := `
		SELECT ` + routeColumns + `
		FROM routes
		WHERE route_id = $1
	`

	rt, err := scanRoute(r.querier.QueryRow(ctx, query, routeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFoundError{Resource: "route", Key: routeID}
		}
		r.logger.Error("Failed to get route", "route_id", routeID, "error", err)
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return rt, nil
}

// List returns routes matching every non-zero field of filter, ordered by route id
func (r *RouteRepository) List(ctx context.Context, filter route.Filter) ([]*route.Route, error) {
	var conditions []string
	var args []any

	if filter.VesselType != "" {
		args = append(args, filter.VesselType)
		conditions = append(conditions, fmt.Sprintf("vessel_type = $%d", len(args)))
	}
	if filter.FuelType != "" {
		args = append(args, filter.FuelType)
		conditions = append(conditions, fmt.Sprintf("fuel_type = $%d", len(args)))
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}

	query := `SELECT ` + routeColumns + ` FROM routes`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY route_id ASC`

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list routes", "error", err)
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	defer rows.Close()

	routes := []*route.Route{}
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			r.logger.Error("Failed to scan route", "error", err)
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, rt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over routes: %w", err)
	}
	return routes, nil
}
