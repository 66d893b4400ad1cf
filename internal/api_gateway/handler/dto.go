package handler

import (
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/banking"
	"github.com/fueleu-compliance-ledger/internal/domain/compliance"
	"github.com/fueleu-compliance-ledger/internal/domain/journal"
	"github.com/fueleu-compliance-ledger/internal/domain/pooling"
	"github.com/fueleu-compliance-ledger/internal/domain/route"
	"github.com/shopspring/decimal"
)

// BankingRequest is the body of both bank and apply requests.
// Amount sign is checked by the ledger so the caller gets the ledger's message.
type BankingRequest struct {
	ShipID string           `json:"ship_id" binding:"required"`
	Year   int              `json:"year" binding:"required"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// PoolRequest represents a request to validate or create a pool
type PoolRequest struct {
	Year    int      `json:"year" binding:"required"`
	ShipIDs []string `json:"ship_ids" binding:"required"`
}

// ShipYearQuery selects one ship's balance, or every ship's when ShipID is empty
type ShipYearQuery struct {
	ShipID string `form:"shipId"`
	Year   int    `form:"year" binding:"required"`
}

type BankingRecordsQuery struct {
	ShipID string `form:"shipId" binding:"required"`
	Year   *int   `form:"year"`
}

type ShipQuery struct {
	ShipID string `form:"shipId" binding:"required"`
}

type RouteQuery struct {
	VesselType string `form:"vesselType"`
	FuelType   string `form:"fuelType"`
	Year       int    `form:"year"`
}

type YearQuery struct {
	Year int `form:"year" binding:"required"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"limit,default=20" binding:"min=1,max=100"`
}

// RouteResponse represents a route in API responses
type RouteResponse struct {
	RouteID         string          `json:"route_id"`
	VesselType      string          `json:"vessel_type"`
	FuelType        string          `json:"fuel_type"`
	Year            int             `json:"year"`
	GHGIntensity    decimal.Decimal `json:"ghg_intensity"`
	FuelConsumption decimal.Decimal `json:"fuel_consumption"`
	Distance        decimal.Decimal `json:"distance"`
	TotalEmissions  decimal.Decimal `json:"total_emissions"`
	IsBaseline      bool            `json:"is_baseline"`
}

// ComplianceBalanceResponse represents a ship's stored balance
type ComplianceBalanceResponse struct {
	ShipID          string          `json:"ship_id"`
	Year            int             `json:"year"`
	CB              decimal.Decimal `json:"cb_gco2eq"`
	Energy          decimal.Decimal `json:"energy"`
	ActualIntensity decimal.Decimal `json:"actual_intensity"`
	TargetIntensity decimal.Decimal `json:"target_intensity"`
	IsSurplus       bool            `json:"is_surplus"`
	UpdatedAt       string          `json:"updated_at"`
}

// AdjustedComplianceResponse represents the balance including applied banked amounts
type AdjustedComplianceResponse struct {
	ShipID        string          `json:"ship_id"`
	Year          int             `json:"year"`
	CB            decimal.Decimal `json:"cb_gco2eq"`
	BankedApplied decimal.Decimal `json:"banked_applied"`
	AdjustedCB    decimal.Decimal `json:"adjusted_cb_gco2eq"`
}

// BankEntryResponse represents a bank entry in API responses
type BankEntryResponse struct {
	ID          int64           `json:"id"`
	ShipID      string          `json:"ship_id"`
	Year        int             `json:"year"`
	Amount      decimal.Decimal `json:"amount_gco2eq"`
	Applied     bool            `json:"applied"`
	AppliedYear *int            `json:"applied_year,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// BankingResultResponse reports the balance change of a bank or apply operation
type BankingResultResponse struct {
	CBBefore decimal.Decimal `json:"cb_before"`
	Applied  decimal.Decimal `json:"applied"`
	CBAfter  decimal.Decimal `json:"cb_after"`
	Year     int             `json:"year"`
}

type BalanceResponse struct {
	ShipID           string          `json:"ship_id"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

// PoolValidationResponse represents a pool proposal check
type PoolValidationResponse struct {
	Year    int              `json:"year"`
	IsValid bool             `json:"is_valid"`
	TotalCB decimal.Decimal  `json:"total_cb"`
	Members []pooling.Member `json:"members"`
	Errors  []string         `json:"errors"`
}

type PoolMemberResponse struct {
	ShipID   string          `json:"ship_id"`
	CBBefore decimal.Decimal `json:"cb_before"`
	CBAfter  decimal.Decimal `json:"cb_after"`
}

// PoolResponse represents a stored pool in API responses
type PoolResponse struct {
	ID        string               `json:"id"`
	Year      int                  `json:"year"`
	TotalCB   decimal.Decimal      `json:"total_cb"`
	Members   []PoolMemberResponse `json:"members"`
	CreatedAt string               `json:"created_at"`
}

// JournalEventResponse represents one compliance history event
type JournalEventResponse struct {
	EventID       string          `json:"event_id"`
	Type          string          `json:"type"`
	ShipID        string          `json:"ship_id"`
	Year          int             `json:"year"`
	Amount        decimal.Decimal `json:"amount"`
	CBBefore      decimal.Decimal `json:"cb_before"`
	CBAfter       decimal.Decimal `json:"cb_after"`
	PoolID        string          `json:"pool_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	OccurredAt    string          `json:"occurred_at"`
}

func mapRouteToResponse(r *route.Route) RouteResponse {
	return RouteResponse{
		RouteID:         r.RouteID,
		VesselType:      r.VesselType,
		FuelType:        r.FuelType,
		Year:            r.Year,
		GHGIntensity:    r.GHGIntensity,
		FuelConsumption: r.FuelConsumption,
		Distance:        r.Distance,
		TotalEmissions:  r.TotalEmissions,
		IsBaseline:      r.IsBaseline,
	}
}

func mapRecordToResponse(r *compliance.Record) ComplianceBalanceResponse {
	return ComplianceBalanceResponse{
		ShipID:          r.ShipID,
		Year:            r.Year,
		CB:              r.CB,
		Energy:          r.Energy,
		ActualIntensity: r.ActualIntensity,
		TargetIntensity: r.TargetIntensity,
		IsSurplus:       r.IsSurplus(),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
}

func mapAdjustedToResponse(a *compliance.Adjusted) AdjustedComplianceResponse {
	return AdjustedComplianceResponse{
		ShipID:        a.ShipID,
		Year:          a.Year,
		CB:            a.CB,
		BankedApplied: a.BankedApplied,
		AdjustedCB:    a.AdjustedCB,
	}
}

func mapEntryToResponse(e *banking.Entry) BankEntryResponse {
	return BankEntryResponse{
		ID:          e.ID,
		ShipID:      e.ShipID,
		Year:        e.Year,
		Amount:      e.Amount,
		Applied:     e.Applied,
		AppliedYear: e.AppliedYear,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func mapResultToResponse(r *banking.Result) BankingResultResponse {
	return BankingResultResponse{
		CBBefore: r.CBBefore,
		Applied:  r.Applied,
		CBAfter:  r.CBAfter,
		Year:     r.Year,
	}
}

func mapValidationToResponse(r *pooling.ValidationResult) PoolValidationResponse {
	return PoolValidationResponse{
		Year:    r.Year,
		IsValid: r.IsValid,
		TotalCB: r.TotalCB,
		Members: r.Members,
		Errors:  r.Errors,
	}
}

func mapPoolToResponse(p *pooling.Pool) PoolResponse {
	members := make([]PoolMemberResponse, 0, len(p.Members))
	for _, m := range p.Members {
		members = append(members, PoolMemberResponse{
			ShipID:   m.ShipID,
			CBBefore: m.CBBefore,
			CBAfter:  m.CBAfter,
		})
	}
	return PoolResponse{
		ID:        p.ID.String(),
		Year:      p.Year,
		TotalCB:   p.TotalCB,
		Members:   members,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func mapEventToResponse(e *journal.Event) JournalEventResponse {
	response := JournalEventResponse{
		EventID:       e.EventID.String(),
		Type:          string(e.Type),
		ShipID:        e.ShipID,
		Year:          e.Year,
		Amount:        e.Amount,
		CBBefore:      e.CBBefore,
		CBAfter:       e.CBAfter,
		CorrelationID: e.CorrelationID,
		OccurredAt:    e.OccurredAt.Format(time.RFC3339),
	}
	if e.PoolID != nil {
		response.PoolID = e.PoolID.String()
	}
	return response
}
