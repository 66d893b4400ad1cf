package handler

import (
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// ComplianceHandler handles HTTP requests for compliance balances
type ComplianceHandler struct {
	complianceService service.ComplianceService
	logger            *slog.Logger
}

// NewComplianceHandler creates a new compliance handler
func NewComplianceHandler(logger *slog.Logger, complianceService service.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{
		complianceService: complianceService,
		logger:            logger,
	}
}

// GetBalance returns the compliance balance of one ship, or of every ship routed in the year
// when shipId is omitted. Missing balances are computed on first access.
func (h *ComplianceHandler) GetBalance(c *gin.Context) {
	var query ShipYearQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Error("Invalid compliance query", "error", err)
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	ctx := c.Request.Context()

	if query.ShipID == "" {
		records, err := h.complianceService.ListComplianceBalances(ctx, query.Year)
		if err != nil {
			h.logger.Error("Failed to list compliance balances", "year", query.Year, "error", err)
			RespondServiceError(c, err)
			return
		}

		response := make([]ComplianceBalanceResponse, 0, len(records))
		for _, record := range records {
			response = append(response, mapRecordToResponse(record))
		}
		RespondOK(c, response)
		return
	}

	record, err := h.complianceService.GetComplianceBalance(ctx, query.ShipID, query.Year)
	if err != nil {
		h.logger.Error("Failed to get compliance balance", "ship_id", query.ShipID, "year", query.Year, "error", err)
		RespondServiceError(c, err)
		return
	}

	RespondOK(c, mapRecordToResponse(record))
}

// GetAdjusted returns balances including banked amounts applied to the year
func (h *ComplianceHandler) GetAdjusted(c *gin.Context) {
	var query ShipYearQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Error("Invalid compliance query", "error", err)
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	ctx := c.Request.Context()

	if query.ShipID == "" {
		adjusted, err := h.complianceService.ListAdjustedCompliance(ctx, query.Year)
		if err != nil {
			h.logger.Error("Failed to list adjusted compliance", "year", query.Year, "error", err)
			RespondServiceError(c, err)
			return
		}

		response := make([]AdjustedComplianceResponse, 0, len(adjusted))
		for _, a := range adjusted {
			response = append(response, mapAdjustedToResponse(a))
		}
		RespondOK(c, response)
		return
	}

	adjusted, err := h.complianceService.GetAdjustedCompliance(ctx, query.ShipID, query.Year)
	if err != nil {
		h.logger.Error("Failed to get adjusted compliance", "ship_id", query.ShipID, "year", query.Year, "error", err)
		RespondServiceError(c, err)
		return
	}

	RespondOK(c, mapAdjustedToResponse(adjusted))
}
