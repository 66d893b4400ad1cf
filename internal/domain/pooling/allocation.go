package pooling

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const minMembers = 2

// Member is one ship's position in a proposed pool. CBAfter and Allocation stay nil
// when no allocation was attempted.
type Member struct {
	ShipID     string           `json:"ship_id"`
	CBBefore   decimal.Decimal  `json:"cb_before"`
	CBAfter    *decimal.Decimal `json:"cb_after,omitempty"`
	Allocation *decimal.Decimal `json:"allocation,omitempty"`
}

// ValidationResult is the outcome of checking a pool proposal. It never touches storage.
type ValidationResult struct {
	Year    int             `json:"year"`
	IsValid bool            `json:"is_valid"`
	TotalCB decimal.Decimal `json:"total_cb"`
	Members []Member        `json:"members"`
	Errors  []string        `json:"errors"`
}

// Reason joins every collected error into one message
func (r *ValidationResult) Reason() string {
	return strings.Join(r.Errors, "; ")
}

// AllocationFunc proposes each member's balance after pooling. It returns one value per member
// in the same order. Rules A and B are checked against whatever it returns.
type AllocationFunc func(total decimal.Decimal, members []Member) []decimal.Decimal

// EqualShare gives every member total / len(members).
func EqualShare(total decimal.Decimal, members []Member) []decimal.Decimal {
	share := total.Div(decimal.NewFromInt(int64(len(members))))
	out := make([]decimal.Decimal, len(members))
	for i := range out {
		out[i] = share
	}
	return out
}

// DistinctShipIDs trims ship ids and drops blanks and duplicates, keeping first-seen order.
func DistinctShipIDs(shipIDs []string) []string {
	seen := make(map[string]struct{}, len(shipIDs))
	result := make([]string, 0, len(shipIDs))
	for _, id := range shipIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// Evaluate validates a pool for year over shipIDs, whose current balances are given in balances.
// Ships without a balance are reported and left out. Members come back ordered by CBBefore, highest first.
func Evaluate(year int, shipIDs []string, balances map[string]decimal.Decimal, allocate AllocationFunc) *ValidationResult {
	result := &ValidationResult{Year: year, TotalCB: decimal.Zero, Members: []Member{}, Errors: []string{}}

	shipIDs = DistinctShipIDs(shipIDs)
	if len(shipIDs) < minMembers {
		result.Errors = append(result.Errors, fmt.Sprintf("pool must have at least %d distinct vessels", minMembers))
		return result
	}

	for _, shipID := range shipIDs {
		cb, ok := balances[shipID]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("compliance data not found for ship %s in year %d", shipID, year))
			continue
		}
		result.Members = append(result.Members, Member{ShipID: shipID, CBBefore: cb})
		result.TotalCB = result.TotalCB.Add(cb)
	}

	sort.SliceStable(result.Members, func(i, j int) bool {
		return result.Members[i].CBBefore.GreaterThan(result.Members[j].CBBefore)
	})

	if result.TotalCB.IsNegative() {
		result.Errors = append(result.Errors, fmt.Sprintf("pool total CB is negative (%s)", result.TotalCB.StringFixed(2)))
		return result
	}
	if len(result.Members) == 0 {
		return result
	}

	if allocate == nil {
		allocate = EqualShare
	}
	after := allocate(result.TotalCB, result.Members)

	for i := range result.Members {
		m := &result.Members[i]
		cbAfter := after[i]
		allocation := cbAfter.Sub(m.CBBefore)
		m.CBAfter = &cbAfter
		m.Allocation = &allocation

		if m.CBBefore.IsNegative() && cbAfter.LessThan(m.CBBefore) {
			result.Errors = append(result.Errors, fmt.Sprintf("ship %s would exit worse than entry", m.ShipID))
		}
		if m.CBBefore.IsPositive() && cbAfter.IsNegative() {
			result.Errors = append(result.Errors, fmt.Sprintf("ship %s would exit with negative CB", m.ShipID))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
