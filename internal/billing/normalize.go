package billing

import (
	"math"

	"github.com/subzcrib/billing-platform/internal/domain"
)

// Conversion factors for non-calendar cycles. Both are industry-standard
// approximations (52 weeks / 12 months, 30-day month), not exact calendar
// conversions.
const (
	weeksPerMonth = 4.33
	daysPerMonth  = 30
)

// NormalizeToMonthly converts an amount charged at the given cycle into
// its monthly-equivalent figure. No rounding is applied here; rounding
// to currency precision happens only at output boundaries.
func NormalizeToMonthly(amount float64, cycle domain.BillingCycle) (float64, error) {
	switch cycle {
	case domain.BillingCycleMonthly:
		return amount, nil
	case domain.BillingCycleYearly:
		return amount / 12, nil
	case domain.BillingCycleWeekly:
		return amount * weeksPerMonth, nil
	case domain.BillingCycleDaily:
		return amount * daysPerMonth, nil
	default:
		return 0, domain.ErrInvalidCycle
	}
}

// Round2 rounds to currency-minor-unit precision (two decimals)
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal place, used for percentage outputs
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
