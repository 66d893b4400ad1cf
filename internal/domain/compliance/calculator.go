package compliance

import (
	"github.com/shopspring/decimal"
)

// EnergyConversionFactor is the energy content of marine fuel in MJ per tonne.
var EnergyConversionFactor = decimal.NewFromInt(41000)

var hundred = decimal.NewFromInt(100)

// Energy converts fuel consumption in tonnes to energy in scope (MJ).
func Energy(fuelConsumptionTonnes decimal.Decimal) decimal.Decimal {
	return fuelConsumptionTonnes.Mul(EnergyConversionFactor)
}

// Balance is (target - actual) * energy. Positive is a surplus, negative a deficit.
func Balance(target, actual, energy decimal.Decimal) decimal.Decimal {
	return target.Sub(actual).Mul(energy)
}

// PercentDiff returns ((comparison / baseline) - 1) * 100, or 0 when baseline is 0.
func PercentDiff(baseline, comparison decimal.Decimal) decimal.Decimal {
	if baseline.IsZero() {
		return decimal.Zero
	}
	return comparison.Div(baseline).Sub(decimal.NewFromInt(1)).Mul(hundred)
}

// TargetProvider resolves the GHG intensity target for a reporting year.
type TargetProvider interface {
	TargetFor(year int) decimal.Decimal
}

// YearlyTargets serves a default target with optional per-year overrides.
type YearlyTargets struct {
	Default   decimal.Decimal
	Overrides map[int]decimal.Decimal
}

var _ TargetProvider = YearlyTargets{}

func (t YearlyTargets) TargetFor(year int) decimal.Decimal {
	if v, ok := t.Overrides[year]; ok {
		return v
	}
	return t.Default
}
