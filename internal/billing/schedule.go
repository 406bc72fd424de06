package billing

import (
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"
)

// Advance returns the next billing instant after t for the given cycle.
// Month and year steps clamp the day to the last valid day of the target
// month instead of letting the date wrap (Jan 31 + 1 month is Feb 28/29,
// never Mar 2).
func Advance(t time.Time, cycle domain.BillingCycle) (time.Time, error) {
	switch cycle {
	case domain.BillingCycleDaily:
		return t.AddDate(0, 0, 1), nil
	case domain.BillingCycleWeekly:
		return t.AddDate(0, 0, 7), nil
	case domain.BillingCycleMonthly:
		return addMonthsClamped(t, 1), nil
	case domain.BillingCycleYearly:
		return addYearsClamped(t, 1), nil
	default:
		return time.Time{}, domain.ErrInvalidCycle
	}
}

// addMonthsClamped adds n calendar months, clamping the day-of-month.
// time.AddDate normalizes overflow instead of clamping, so the target
// month is resolved first and the day capped at its length.
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	// First of the target month, then clamp the day
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

// addYearsClamped adds n years, clamping Feb 29 to Feb 28 off leap years
func addYearsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	if last := daysIn(year+n, month); day > last {
		day = last
	}

	return time.Date(year+n, month, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
