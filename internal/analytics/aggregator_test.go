package analytics

import (
	"testing"
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func sub(status domain.SubscriptionStatus, amount float64, cycle domain.BillingCycle) domain.Subscription {
	now := time.Now()
	return domain.Subscription{
		ID:           uuid.New(),
		CustomerID:   uuid.New(),
		MerchantID:   uuid.New(),
		Status:       status,
		Amount:       amount,
		Currency:     "USD",
		BillingCycle: cycle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMRRCountsOnlyActive(t *testing.T) {
	subs := []domain.Subscription{
		sub(domain.SubscriptionStatusActive, 199, domain.BillingCycleMonthly),
		sub(domain.SubscriptionStatusActive, 1200, domain.BillingCycleYearly),
		sub(domain.SubscriptionStatusTrial, 500, domain.BillingCycleMonthly),
		sub(domain.SubscriptionStatusPaused, 300, domain.BillingCycleMonthly),
		sub(domain.SubscriptionStatusCancelled, 100, domain.BillingCycleMonthly),
		sub(domain.SubscriptionStatusExpired, 50, domain.BillingCycleMonthly),
	}

	assert.InDelta(t, 299, MRR(subs), 0.0001)
}

func TestMRRSingleSubscription(t *testing.T) {
	subs := []domain.Subscription{
		sub(domain.SubscriptionStatusActive, 199, domain.BillingCycleMonthly),
	}
	assert.InDelta(t, 199, MRR(subs), 0.0001)
}

func TestMRRSkipsUnknownCycles(t *testing.T) {
	subs := []domain.Subscription{
		sub(domain.SubscriptionStatusActive, 100, domain.BillingCycleMonthly),
		sub(domain.SubscriptionStatusActive, 999, domain.BillingCycle("quarterly")),
	}
	assert.InDelta(t, 100, MRR(subs), 0.0001)
}

func TestMRREmpty(t *testing.T) {
	assert.Zero(t, MRR(nil))
}

func TestChurnRateZeroWithoutSubscriptions(t *testing.T) {
	assert.Zero(t, ChurnRate(nil, time.Now()))
}

func TestChurnRateCountsRecentCancellations(t *testing.T) {
	now := date(2024, time.June, 15)

	recent := sub(domain.SubscriptionStatusCancelled, 100, domain.BillingCycleMonthly)
	recent.UpdatedAt = date(2024, time.June, 10)

	old := sub(domain.SubscriptionStatusCancelled, 100, domain.BillingCycleMonthly)
	old.UpdatedAt = date(2024, time.March, 17)

	subs := []domain.Subscription{
		recent,
		old,
		sub(domain.SubscriptionStatusActive, 100, domain.BillingCycleMonthly),
		sub(domain.SubscriptionStatusActive, 100, domain.BillingCycleMonthly),
	}

	// 1 recent cancellation out of 4 subscriptions
	assert.Equal(t, 25.0, ChurnRate(subs, now))
}

func TestChurnRateStartsAtPreviousCalendarMonth(t *testing.T) {
	now := date(2024, time.June, 15)

	boundary := sub(domain.SubscriptionStatusCancelled, 100, domain.BillingCycleMonthly)
	boundary.UpdatedAt = date(2024, time.May, 1)

	justBefore := sub(domain.SubscriptionStatusCancelled, 100, domain.BillingCycleMonthly)
	justBefore.UpdatedAt = date(2024, time.April, 30)

	subs := []domain.Subscription{
		boundary,
		justBefore,
		sub(domain.SubscriptionStatusActive, 100, domain.BillingCycleMonthly),
		sub(domain.SubscriptionStatusActive, 100, domain.BillingCycleMonthly),
	}

	// May 1 counts, April 30 does not
	assert.Equal(t, 25.0, ChurnRate(subs, now))
}

func TestChurnRateZeroWhenNoneCancelled(t *testing.T) {
	subs := []domain.Subscription{
		sub(domain.SubscriptionStatusActive, 100, domain.BillingCycleMonthly),
		sub(domain.SubscriptionStatusPaused, 100, domain.BillingCycleMonthly),
	}
	assert.Zero(t, ChurnRate(subs, time.Now()))
}

func TestRevenueSeriesCoversSixMonths(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	active := sub(domain.SubscriptionStatusActive, 120, domain.BillingCycleMonthly)
	active.CreatedAt = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	points := RevenueSeries([]domain.Subscription{active}, now)

	assert.Len(t, points, 6)
	assert.Equal(t, "Jan 2024", points[0].Month)
	assert.Equal(t, "Jun 2024", points[5].Month)

	// Nothing existed before March
	assert.Zero(t, points[0].Revenue)
	assert.Zero(t, points[1].Revenue)
	// From its creation month onward the subscription contributes
	assert.Equal(t, 120.0, points[2].Revenue)
	assert.Equal(t, 120.0, points[5].Revenue)
}

func TestRevenueSeriesIgnoresInactive(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	cancelled := sub(domain.SubscriptionStatusCancelled, 500, domain.BillingCycleMonthly)
	cancelled.CreatedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	points := RevenueSeries([]domain.Subscription{cancelled}, now)
	for _, p := range points {
		assert.Zero(t, p.Revenue)
	}
}

func TestStatusDistribution(t *testing.T) {
	subs := []domain.Subscription{
		sub(domain.SubscriptionStatusActive, 100, domain.BillingCycleMonthly),
		sub(domain.SubscriptionStatusActive, 100, domain.BillingCycleMonthly),
		sub(domain.SubscriptionStatusTrial, 100, domain.BillingCycleMonthly),
		sub(domain.SubscriptionStatusCancelled, 100, domain.BillingCycleMonthly),
	}

	dist := StatusDistribution(subs)
	assert.Equal(t, 2, dist[domain.SubscriptionStatusActive])
	assert.Equal(t, 1, dist[domain.SubscriptionStatusTrial])
	assert.Equal(t, 1, dist[domain.SubscriptionStatusCancelled])
	assert.Zero(t, dist[domain.SubscriptionStatusPaused])
}

func TestBuildInvoiceStats(t *testing.T) {
	invoices := []domain.Invoice{
		{Status: domain.InvoiceStatusPaid},
		{Status: domain.InvoiceStatusPaid},
		{Status: domain.InvoiceStatusPaid},
		{Status: domain.InvoiceStatusPending},
		{Status: domain.InvoiceStatusOverdue},
		{Status: domain.InvoiceStatusCancelled},
	}

	stats := BuildInvoiceStats(invoices)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 3, stats.Paid)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 50.0, stats.PaymentRate)
}

func TestBuildInvoiceStatsEmpty(t *testing.T) {
	stats := BuildInvoiceStats(nil)
	assert.Zero(t, stats.Total)
	// No division by zero; the rate is simply zero
	assert.Zero(t, stats.PaymentRate)
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	active := sub(domain.SubscriptionStatusActive, 199, domain.BillingCycleMonthly)
	active.CreatedAt = now.AddDate(0, -2, 0)

	snap := Snapshot{
		Subscriptions: []domain.Subscription{active},
		Invoices:      []domain.Invoice{{Status: domain.InvoiceStatusPaid}},
		Customers:     []domain.Customer{{ID: uuid.New()}},
	}

	report := BuildReport(snap, now)
	assert.Equal(t, 199.0, report.Stats.TotalMRR)
	assert.Equal(t, 1, report.Stats.ActiveSubscriptions)
	assert.Equal(t, 1, report.Stats.TotalCustomers)
	assert.Zero(t, report.Stats.ChurnRate)
	assert.Len(t, report.RevenueData, 6)
	assert.Equal(t, 100.0, report.InvoiceStats.PaymentRate)
}
