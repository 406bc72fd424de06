package metrics

import (
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BillingMetrics tracks subscription lifecycle and revenue figures
type BillingMetrics interface {
	IncSubscriptionCreated(cycle string)
	IncTransition(to string)
	IncTransitionConflict()
	SetMRR(merchantID string, mrr float64)
	ObserveSubscriptionAmount(amount float64, cycle string)
}

type billingMetrics struct {
	log                  *logger.Logger
	subscriptionsCreated *prometheus.CounterVec
	transitions          *prometheus.CounterVec
	transitionConflicts  prometheus.Counter
	mrr                  *prometheus.GaugeVec
	subscriptionAmounts  *prometheus.HistogramVec
}

// NewBillingMetrics registers and returns the billing metric set
func NewBillingMetrics(registry *prometheus.Registry, log *logger.Logger) BillingMetrics {
	subscriptionsCreated := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_created_total",
			Help: "The total number of created subscriptions",
		},
		[]string{"billing_cycle"},
	)

	transitions := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_transitions_total",
			Help: "The total number of subscription lifecycle transitions by target state",
		},
		[]string{"to_status"},
	)

	transitionConflicts := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "subscription_transition_conflicts_total",
			Help: "The total number of transitions that lost a concurrent version race",
		},
	)

	mrr := promauto.With(registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "merchant_mrr",
			Help: "Monthly recurring revenue per merchant, currency minor units rounded",
		},
		[]string{"merchant_id"},
	)

	subscriptionAmounts := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subscription_amount",
			Help:    "Subscription amounts distribution",
			Buckets: prometheus.ExponentialBuckets(10, 10, 5), // 10, 100, 1000, 10000, 100000
		},
		[]string{"billing_cycle"},
	)

	return &billingMetrics{
		log:                  log,
		subscriptionsCreated: subscriptionsCreated,
		transitions:          transitions,
		transitionConflicts:  transitionConflicts,
		mrr:                  mrr,
		subscriptionAmounts:  subscriptionAmounts,
	}
}

// IncSubscriptionCreated bumps the creation counter
func (m *billingMetrics) IncSubscriptionCreated(cycle string) {
	m.subscriptionsCreated.WithLabelValues(cycle).Inc()
}

// IncTransition bumps the transition counter for the target state
func (m *billingMetrics) IncTransition(to string) {
	m.transitions.WithLabelValues(to).Inc()
}

// IncTransitionConflict bumps the lost-race counter
func (m *billingMetrics) IncTransitionConflict() {
	m.transitionConflicts.Inc()
}

// SetMRR records the latest MRR figure for a merchant
func (m *billingMetrics) SetMRR(merchantID string, mrr float64) {
	m.mrr.WithLabelValues(merchantID).Set(mrr)
}

// ObserveSubscriptionAmount records an amount observation
func (m *billingMetrics) ObserveSubscriptionAmount(amount float64, cycle string) {
	m.subscriptionAmounts.WithLabelValues(cycle).Observe(amount)
}
