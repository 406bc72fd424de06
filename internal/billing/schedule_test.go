package billing

import (
	"testing"
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvanceMonthlyClampsDayOfMonth(t *testing.T) {
	// Jan 31 lands on the last day of February, not in March
	next, err := Advance(date(2024, time.January, 31), domain.BillingCycleMonthly)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 29), next)

	// The clamped date advances normally afterwards
	next, err = Advance(next, domain.BillingCycleMonthly)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 29), next)
}

func TestAdvanceMonthlyNonLeapYear(t *testing.T) {
	next, err := Advance(date(2025, time.January, 31), domain.BillingCycleMonthly)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.February, 28), next)
}

func TestAdvanceMonthlyPlainDates(t *testing.T) {
	next, err := Advance(date(2024, time.April, 15), domain.BillingCycleMonthly)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.May, 15), next)

	// December rolls into January of the next year
	next, err = Advance(date(2024, time.December, 10), domain.BillingCycleMonthly)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.January, 10), next)
}

func TestAdvanceYearlyClampsLeapDay(t *testing.T) {
	next, err := Advance(date(2024, time.February, 29), domain.BillingCycleYearly)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.February, 28), next)
}

func TestAdvanceDailyAndWeekly(t *testing.T) {
	next, err := Advance(date(2024, time.June, 30), domain.BillingCycleDaily)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.July, 1), next)

	next, err = Advance(date(2024, time.June, 28), domain.BillingCycleWeekly)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.July, 5), next)
}

func TestAdvancePreservesTimeOfDay(t *testing.T) {
	start := time.Date(2024, time.January, 31, 14, 30, 45, 0, time.UTC)
	next, err := Advance(start, domain.BillingCycleMonthly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 14, 30, 45, 0, time.UTC), next)
}

func TestAdvanceInvalidCycle(t *testing.T) {
	_, err := Advance(date(2024, time.January, 1), domain.BillingCycle("fortnightly"))
	assert.ErrorIs(t, err, domain.ErrInvalidCycle)
}
