package handler

import (
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PoolHandler handles HTTP requests for pooling operations
type PoolHandler struct {
	poolingService service.PoolingService
	logger         *slog.Logger
}

// NewPoolHandler creates a new pool handler
func NewPoolHandler(logger *slog.Logger, poolingService service.PoolingService) *PoolHandler {
	return &PoolHandler{
		poolingService: poolingService,
		logger:         logger,
	}
}

// Validate checks a pool proposal without persisting it. An invalid pool is still a 200.
func (h *PoolHandler) Validate(c *gin.Context) {
	var req PoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.poolingService.ValidatePool(c.Request.Context(), req.Year, req.ShipIDs)
	if err != nil {
		h.logger.Error("Failed to validate pool", "year", req.Year, "error", err)
		RespondServiceError(c, err)
		return
	}

	RespondOK(c, mapValidationToResponse(result))
}

// Create persists a valid pool and the members' new balances
func (h *PoolHandler) Create(c *gin.Context) {
	var req PoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pool, err := h.poolingService.CreatePool(c.Request.Context(), req.Year, req.ShipIDs)
	if err != nil {
		h.logger.Error("Failed to create pool", "year", req.Year, "error", err)
		RespondServiceError(c, err)
		return
	}

	RespondCreated(c, mapPoolToResponse(pool))
}

// GetByID retrieves a pool with its members, returns 404 if not found
func (h *PoolHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid pool ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid pool ID")
		return
	}

	pool, err := h.poolingService.GetPool(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get pool", "id", idParam, "error", err)
		RespondServiceError(c, err)
		return
	}

	RespondOK(c, mapPoolToResponse(pool))
}

// List returns every pool formed in a year
func (h *PoolHandler) List(c *gin.Context) {
	var query YearQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Error("Invalid pool query", "error", err)
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	pools, err := h.poolingService.ListPools(c.Request.Context(), query.Year)
	if err != nil {
		h.logger.Error("Failed to list pools", "year", query.Year, "error", err)
		RespondServiceError(c, err)
		return
	}

	response := make([]PoolResponse, 0, len(pools))
	for _, p := range pools {
		response = append(response, mapPoolToResponse(p))
	}
	RespondOK(c, response)
}
