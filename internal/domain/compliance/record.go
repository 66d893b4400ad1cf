package compliance

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is the running compliance balance of one ship in one year.
// CB starts as (target - actual) * energy and is then moved by banking and pooling.
type Record struct {
	ID              uuid.UUID       `json:"id"`
	ShipID          string          `json:"ship_id"`
	Year            int             `json:"year"`
	CB              decimal.Decimal `json:"cb_gco2eq"`
	Energy          decimal.Decimal `json:"energy"`
	ActualIntensity decimal.Decimal `json:"actual_intensity"`
	TargetIntensity decimal.Decimal `json:"target_intensity"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewRecord derives the initial balance from fuel use and intensities.
func NewRecord(shipID string, year int, fuelConsumption, actual, target decimal.Decimal) *Record {
	energy := Energy(fuelConsumption)
	now := time.Now()
	return &Record{
		ID:              uuid.New(),
		ShipID:          shipID,
		Year:            year,
		CB:              Balance(target, actual, energy),
		Energy:          energy,
		ActualIntensity: actual,
		TargetIntensity: target,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Key renders the (ship, year) identity used in errors and logs.
func Key(shipID string, year int) string {
	return shipID + "/" + strconv.Itoa(year)
}

// IsSurplus reports whether the ship currently sits above target
func (r *Record) IsSurplus() bool {
	return r.CB.IsPositive()
}

// SetBalance replaces the running balance
func (r *Record) SetBalance(cb decimal.Decimal) {
	r.CB = cb
	r.Version++
	r.UpdatedAt = time.Now()
}

// Adjusted is a read-only projection: the stored balance plus every banked amount applied to that year.
type Adjusted struct {
	ShipID        string          `json:"ship_id"`
	Year          int             `json:"year"`
	CB            decimal.Decimal `json:"cb_gco2eq"`
	BankedApplied decimal.Decimal `json:"banked_applied"`
	AdjustedCB    decimal.Decimal `json:"adjusted_cb_gco2eq"`
}

func NewAdjusted(record *Record, bankedApplied decimal.Decimal) *Adjusted {
	return &Adjusted{
		ShipID:        record.ShipID,
		Year:          record.Year,
		CB:            record.CB,
		BankedApplied: bankedApplied,
		AdjustedCB:    record.CB.Add(bankedApplied),
	}
}
