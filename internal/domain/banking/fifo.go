package banking

import (
	"time"

	"github.com/fueleu-compliance-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Consumption is the outcome of applying banked surplus.
// Consumed holds the entries now marked applied (a split entry appears here with its
// reduced amount); Remainder is the new unapplied entry holding a split's leftover.
type Consumption struct {
	Consumed  []*Entry
	Remainder *Entry
}

// Consume walks unapplied entries oldest first and applies amount to deficitYear.
// Entries are modified in place and must already be ordered by creation time.
// Running out of entries before amount is covered is a ConsistencyError.
func Consume(shipID string, unapplied []*Entry, amount decimal.Decimal, deficitYear int) (*Consumption, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("cannot apply non-positive amount")
	}

	result := &Consumption{}
	remaining := amount

	for _, entry := range unapplied {
		if !remaining.IsPositive() {
			break
		}
		if entry.Applied {
			continue
		}

		if entry.Amount.LessThanOrEqual(remaining) {
			remaining = remaining.Sub(entry.Amount)
			entry.markApplied(deficitYear)
			result.Consumed = append(result.Consumed, entry)
			continue
		}

		leftover := entry.Amount.Sub(remaining)
		entry.Amount = remaining
		entry.markApplied(deficitYear)
		result.Consumed = append(result.Consumed, entry)

		// The leftover keeps the original banking time so it stays at the head of the queue.
		result.Remainder = &Entry{
			ShipID:    entry.ShipID,
			Year:      entry.Year,
			Amount:    leftover,
			CreatedAt: entry.CreatedAt,
			UpdatedAt: time.Now(),
		}
		remaining = decimal.Zero
	}

	if remaining.IsPositive() {
		return nil, shared.ConsistencyError{ShipID: shipID, Requested: amount, Remaining: remaining}
	}

	return result, nil
}
