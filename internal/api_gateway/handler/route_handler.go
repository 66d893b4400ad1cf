package handler

import (
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/api_gateway/service"
	"github.com/fueleu-compliance-ledger/internal/domain/route"
	"github.com/gin-gonic/gin"
)

// RouteHandler handles HTTP requests for route reads
type RouteHandler struct {
	routeService service.RouteService
	logger       *slog.Logger
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(logger *slog.Logger, routeService service.RouteService) *RouteHandler {
	return &RouteHandler{
		routeService: routeService,
		logger:       logger,
	}
}

// List returns routes, optionally filtered by vessel type, fuel type and year
func (h *RouteHandler) List(c *gin.Context) {
	var query RouteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Error("Invalid route query", "error", err)
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	routes, err := h.routeService.ListRoutes(c.Request.Context(), route.Filter{
		VesselType: query.VesselType,
		FuelType:   query.FuelType,
		Year:       query.Year,
	})
	if err != nil {
		h.logger.Error("Failed to list routes", "error", err)
		RespondServiceError(c, err)
		return
	}

	response := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		response = append(response, mapRouteToResponse(r))
	}
	RespondOK(c, response)
}

// GetByID returns one route by its route id
func (h *RouteHandler) GetByID(c *gin.Context) {
	routeID := c.Param("routeId")

	r, err := h.routeService.GetRoute(c.Request.Context(), routeID)
	if err != nil {
		h.logger.Error("Failed to get route", "route_id", routeID, "error", err)
		RespondServiceError(c, err)
		return
	}

	RespondOK(c, mapRouteToResponse(r))
}
