package handler

import (
	"log/slog"
	"net/http"

	"github.com/fueleu-compliance-ledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// JournalHandler serves a ship's compliance history
type JournalHandler struct {
	journalService service.JournalService
	logger         *slog.Logger
}

func NewJournalHandler(logger *slog.Logger, journalService service.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		logger:         logger,
	}
}

// GetHistory retrieves paginated compliance events for a ship, newest first
func (h *JournalHandler) GetHistory(c *gin.Context) {
	var query ShipQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Error("Invalid journal query", "error", err)
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	events, total, err := h.journalService.GetShipHistory(
		c.Request.Context(),
		query.ShipID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get compliance history", "ship_id", query.ShipID, "error", err)
		RespondInternalError(c)
		return
	}

	response := make([]JournalEventResponse, 0, len(events))
	for _, e := range events {
		response = append(response, mapEventToResponse(e))
	}

	RespondWithPaginatedData(c, http.StatusOK, response, pagination.Page, pagination.PerPage, int(total))
}
