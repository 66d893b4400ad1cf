package handler

import (
	"log/slog"

	"github.com/fueleu-compliance-ledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// BankingHandler handles HTTP requests for banking operations
type BankingHandler struct {
	bankingService service.BankingService
	logger         *slog.Logger
}

// NewBankingHandler creates a new banking handler
func NewBankingHandler(logger *slog.Logger, bankingService service.BankingService) *BankingHandler {
	return &BankingHandler{
		bankingService: bankingService,
		logger:         logger,
	}
}

// GetRecords lists a ship's bank entries, optionally for one year
func (h *BankingHandler) GetRecords(c *gin.Context) {
	var query BankingRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Error("Invalid banking records query", "error", err)
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	entries, err := h.bankingService.GetBankingRecords(c.Request.Context(), query.ShipID, query.Year)
	if err != nil {
		h.logger.Error("Failed to get banking records", "ship_id", query.ShipID, "error", err)
		RespondServiceError(c, err)
		return
	}

	response := make([]BankEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, mapEntryToResponse(e))
	}
	RespondOK(c, response)
}

// GetBalance returns the sum of a ship's unapplied bank entries
func (h *BankingHandler) GetBalance(c *gin.Context) {
	var query ShipQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Error("Invalid balance query", "error", err)
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	balance, err := h.bankingService.GetAvailableBalance(c.Request.Context(), query.ShipID)
	if err != nil {
		h.logger.Error("Failed to get available balance", "ship_id", query.ShipID, "error", err)
		RespondServiceError(c, err)
		return
	}

	RespondOK(c, BalanceResponse{ShipID: query.ShipID, AvailableBalance: balance})
}

// Bank moves surplus from a compliance balance into a new bank entry
func (h *BankingHandler) Bank(c *gin.Context) {
	var req BankingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.bankingService.BankSurplus(c.Request.Context(), req.ShipID, req.Year, *req.Amount)
	if err != nil {
		h.logger.Error("Failed to bank surplus", "ship_id", req.ShipID, "year", req.Year, "error", err)
		RespondServiceError(c, err)
		return
	}

	RespondOK(c, mapResultToResponse(result))
}

// Apply applies banked surplus to a deficit year
func (h *BankingHandler) Apply(c *gin.Context) {
	var req BankingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.bankingService.ApplyBanked(c.Request.Context(), req.ShipID, req.Year, *req.Amount)
	if err != nil {
		h.logger.Error("Failed to apply banked surplus", "ship_id", req.ShipID, "year", req.Year, "error", err)
		RespondServiceError(c, err)
		return
	}

	RespondOK(c, mapResultToResponse(result))
}
