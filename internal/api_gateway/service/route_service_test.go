package service

import (
	"context"
	"testing"

	"github.com/fueleu-compliance-ledger/internal/domain/route"
	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteServiceImpl(t *testing.T) {
	ctx := context.Background()

	t.Run("GetRoute", func(t *testing.T) {
		repo := new(MockRouteRepository)
		svc := NewRouteService(newTestLogger(), repo)
		repo.On("GetByRouteID", ctx, "ROUTE-001").Return(containerRoute(), nil).Once()

		r, err := svc.GetRoute(ctx, "ROUTE-001")

		require.NoError(t, err)
		assert.Equal(t, "HFO", r.FuelType)
		repo.AssertExpectations(t)
	})

	t.Run("GetRoute not found", func(t *testing.T) {
		repo := new(MockRouteRepository)
		svc := NewRouteService(newTestLogger(), repo)
		repo.On("GetByRouteID", ctx, "ROUTE-404").Return(nil, shared.NotFoundError{Resource: "route", Key: "ROUTE-404"}).Once()

		r, err := svc.GetRoute(ctx, "ROUTE-404")

		assert.Nil(t, r)
		assert.ErrorIs(t, err, shared.NotFoundError{Resource: "route"})
	})

	t.Run("ListRoutes", func(t *testing.T) {
		repo := new(MockRouteRepository)
		svc := NewRouteService(newTestLogger(), repo)
		filter := route.Filter{FuelType: "LNG"}
		repo.On("List", ctx, filter).Return([]*route.Route{{RouteID: "ROUTE-004"}}, nil).Once()

		routes, err := svc.ListRoutes(ctx, filter)

		require.NoError(t, err)
		require.Len(t, routes, 1)
		assert.Equal(t, "ROUTE-004", routes[0].RouteID)
		repo.AssertExpectations(t)
	})
}
