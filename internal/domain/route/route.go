package route

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Route is the physical voyage record a ship's compliance balance is derived from.
// RouteID doubles as the ship identifier throughout the ledger.
type Route struct {
	ID              uuid.UUID       `json:"id"`
	RouteID         string          `json:"route_id"`
	VesselType      string          `json:"vessel_type"`
	FuelType        string          `json:"fuel_type"`
	Year            int             `json:"year"`
	GHGIntensity    decimal.Decimal `json:"ghg_intensity"`    // gCO2e/MJ
	FuelConsumption decimal.Decimal `json:"fuel_consumption"` // tonnes
	Distance        decimal.Decimal `json:"distance"`         // km
	TotalEmissions  decimal.Decimal `json:"total_emissions"`  // tonnes CO2e
	IsBaseline      bool            `json:"is_baseline"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Filter narrows a route listing. Zero values mean "any".
type Filter struct {
	VesselType string
	FuelType   string
	Year       int
}
