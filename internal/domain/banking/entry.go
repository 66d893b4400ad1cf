package banking

import (
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Entry is one slice of banked surplus. It starts unapplied and is consumed,
// whole or split, by applying it to a deficit year.
type Entry struct {
	ID          int64           `json:"id"`
	ShipID      string          `json:"ship_id"`
	Year        int             `json:"year"` // year the surplus was banked from
	Amount      decimal.Decimal `json:"amount_gco2eq"`
	Applied     bool            `json:"applied"`
	AppliedYear *int            `json:"applied_year,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewEntry leaves the timestamps zero; the store stamps them when the entry is inserted.
func NewEntry(shipID string, year int, amount decimal.Decimal) (*Entry, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("cannot bank non-positive amount")
	}

	return &Entry{
		ShipID: shipID,
		Year:   year,
		Amount: amount,
	}, nil
}

// markApplied consumes the entry against deficitYear
func (e *Entry) markApplied(deficitYear int) {
	year := deficitYear
	e.Applied = true
	e.AppliedYear = &year
	e.UpdatedAt = time.Now()
}

// Result reports the effect of a bank or apply operation on the affected compliance record.
type Result struct {
	CBBefore decimal.Decimal `json:"cb_before"`
	Applied  decimal.Decimal `json:"applied"`
	CBAfter  decimal.Decimal `json:"cb_after"`
	Year     int             `json:"year"`
}

// AvailableBalance sums the unapplied entries
func AvailableBalance(entries []*Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if !e.Applied {
			total = total.Add(e.Amount)
		}
	}
	return total
}
