package service

import (
	"context"
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/domain/route"
)

// RouteServiceImpl implements the RouteService interface
type RouteServiceImpl struct {
	routeRepo route.Repository
	logger    *slog.Logger
}

func NewRouteService(logger *slog.Logger, routeRepo route.Repository) RouteService {
	return &RouteServiceImpl{
		routeRepo: routeRepo,
		logger:    logger,
	}
}

func (s *RouteServiceImpl) GetRoute(ctx context.Context, routeID string) (*route.Route, error) {
	return s.routeRepo.GetByRouteID(ctx, routeID)
}

func (s *RouteServiceImpl) ListRoutes(ctx context.Context, filter route.Filter) ([]*route.Route, error) {
	routes, err := s.routeRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list routes", "error", err)
		return nil, err
	}
	return routes, nil
}
