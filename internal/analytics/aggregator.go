package analytics

import (
	"time"

	"github.com/subzcrib/billing-platform/internal/billing"
	"github.com/subzcrib/billing-platform/internal/domain"
)

// revenueMonths is the trailing window of the revenue time series
const revenueMonths = 6

// churnStart is the first day of the month before now; cancellations
// from that day on count as churn
func churnStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
}

// Stats is the dashboard headline block
type Stats struct {
	TotalMRR            float64 `json:"total_mrr"`
	ActiveSubscriptions int     `json:"active_subscriptions"`
	TotalCustomers      int     `json:"total_customers"`
	ChurnRate           float64 `json:"churn_rate"`
}

// RevenuePoint is one month of the revenue time series.
//
// The series is a point-in-time retrospective: it sums subscriptions
// created by the end of each month that are active now. Without a
// historical status ledger the platform cannot reconstruct what was
// active back then, so this is an estimate, not a ledger.
type RevenuePoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// InvoiceStats summarizes invoices by payment status
type InvoiceStats struct {
	Total       int     `json:"total"`
	Paid        int     `json:"paid"`
	Pending     int     `json:"pending"`
	Overdue     int     `json:"overdue"`
	Cancelled   int     `json:"cancelled"`
	PaymentRate float64 `json:"payment_rate"`
}

// Report is the full analytics payload
type Report struct {
	Stats              Stats                             `json:"stats"`
	RevenueData        []RevenuePoint                    `json:"revenue_data"`
	StatusDistribution map[domain.SubscriptionStatus]int `json:"status_distribution"`
	InvoiceStats       InvoiceStats                      `json:"invoice_stats"`
}

// Snapshot is the consistent read the aggregator works on. All
// functions below are read-only and deterministic: identical snapshots
// produce identical reports.
type Snapshot struct {
	Subscriptions []domain.Subscription
	Invoices      []domain.Invoice
	Customers     []domain.Customer
}

// BuildReport computes the full analytics report from a snapshot
func BuildReport(snap Snapshot, now time.Time) Report {
	return Report{
		Stats: Stats{
			TotalMRR:            billing.Round2(MRR(snap.Subscriptions)),
			ActiveSubscriptions: countByStatus(snap.Subscriptions, domain.SubscriptionStatusActive),
			TotalCustomers:      len(snap.Customers),
			ChurnRate:           ChurnRate(snap.Subscriptions, now),
		},
		RevenueData:        RevenueSeries(snap.Subscriptions, now),
		StatusDistribution: StatusDistribution(snap.Subscriptions),
		InvoiceStats:       BuildInvoiceStats(snap.Invoices),
	}
}

// MRR sums the monthly-normalized amounts of all active subscriptions.
// Rounding is left to the caller so intermediate sums stay exact.
func MRR(subs []domain.Subscription) float64 {
	var total float64
	for _, sub := range subs {
		if sub.Status != domain.SubscriptionStatusActive {
			continue
		}
		monthly, err := billing.NormalizeToMonthly(sub.Amount, sub.BillingCycle)
		if err != nil {
			// Unknown cycles contribute nothing rather than failing
			// the whole report
			continue
		}
		total += monthly
	}
	return total
}

// ChurnRate is the percentage of subscriptions cancelled since the
// start of the previous calendar month relative to the total count,
// one decimal place. Zero subscriptions means zero churn, never a
// division error.
func ChurnRate(subs []domain.Subscription, now time.Time) float64 {
	total := len(subs)
	if total == 0 {
		return 0
	}

	cutoff := churnStart(now)
	cancelled := 0
	for _, sub := range subs {
		if sub.Status != domain.SubscriptionStatusCancelled {
			continue
		}
		if !sub.UpdatedAt.Before(cutoff) {
			cancelled++
		}
	}

	return billing.Round1(float64(cancelled) / float64(total) * 100)
}

// RevenueSeries computes MRR for each of the trailing months from
// subscriptions created by that month's end that are currently active
func RevenueSeries(subs []domain.Subscription, now time.Time) []RevenuePoint {
	points := make([]RevenuePoint, 0, revenueMonths)

	for i := revenueMonths - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		monthEnd := time.Date(monthStart.Year(), monthStart.Month()+1, 0, 23, 59, 59, 0, now.Location())

		var revenue float64
		for _, sub := range subs {
			if sub.Status != domain.SubscriptionStatusActive {
				continue
			}
			if sub.CreatedAt.After(monthEnd) {
				continue
			}
			monthly, err := billing.NormalizeToMonthly(sub.Amount, sub.BillingCycle)
			if err != nil {
				continue
			}
			revenue += monthly
		}

		points = append(points, RevenuePoint{
			Month:   monthStart.Format("Jan 2006"),
			Revenue: billing.Round2(revenue),
		})
	}

	return points
}

// StatusDistribution counts subscriptions grouped by current status
func StatusDistribution(subs []domain.Subscription) map[domain.SubscriptionStatus]int {
	dist := make(map[domain.SubscriptionStatus]int)
	for _, sub := range subs {
		dist[sub.Status]++
	}
	return dist
}

// BuildInvoiceStats counts invoices by status. Payment rate is paid
// over total as a percentage; an empty set yields 0, a NaN never
// reaches callers.
func BuildInvoiceStats(invoices []domain.Invoice) InvoiceStats {
	stats := InvoiceStats{Total: len(invoices)}

	for _, inv := range invoices {
		switch inv.Status {
		case domain.InvoiceStatusPaid:
			stats.Paid++
		case domain.InvoiceStatusPending:
			stats.Pending++
		case domain.InvoiceStatusOverdue:
			stats.Overdue++
		case domain.InvoiceStatusCancelled:
			stats.Cancelled++
		}
	}

	if stats.Total > 0 {
		stats.PaymentRate = billing.Round1(float64(stats.Paid) / float64(stats.Total) * 100)
	}

	return stats
}

func countByStatus(subs []domain.Subscription, status domain.SubscriptionStatus) int {
	n := 0
	for _, sub := range subs {
		if sub.Status == status {
			n++
		}
	}
	return n
}
