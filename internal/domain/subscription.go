package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// IsTerminal reports whether no further transitions are permitted
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCancelled || s == SubscriptionStatusExpired
}

// BillingCycle is the cadence at which a subscription charges
type BillingCycle string

const (
	BillingCycleDaily   BillingCycle = "daily"
	BillingCycleWeekly  BillingCycle = "weekly"
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// ParseBillingCycle validates a raw cycle string
func ParseBillingCycle(raw string) (BillingCycle, error) {
	switch BillingCycle(raw) {
	case BillingCycleDaily, BillingCycleWeekly, BillingCycleMonthly, BillingCycleYearly:
		return BillingCycle(raw), nil
	default:
		return "", ErrInvalidCycle
	}
}

// Subscription is the central billing entity. MerchantID is denormalized
// from the product so tenant filtering never needs a join.
//
// NextBillingDate is always derived from the last transition and the
// billing cycle; it is never written independently. Version backs the
// optimistic-concurrency check on every update.
type Subscription struct {
	ID              uuid.UUID          `json:"id"`
	CustomerID      uuid.UUID          `json:"customer_id"`
	ProductID       uuid.UUID          `json:"product_id"`
	MerchantID      uuid.UUID          `json:"merchant_id"`
	Status          SubscriptionStatus `json:"status"`
	Amount          float64            `json:"amount"`
	Currency        string             `json:"currency"`
	BillingCycle    BillingCycle       `json:"billing_cycle"`
	StartDate       time.Time          `json:"start_date"`
	EndDate         *time.Time         `json:"end_date,omitempty"`
	NextBillingDate time.Time          `json:"next_billing_date"`
	TrialEndDate    *time.Time         `json:"trial_end_date,omitempty"`
	AutoRenew       bool               `json:"auto_renew"`
	Notes           string             `json:"notes,omitempty"`
	Version         int64              `json:"version"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// SubscriptionRequest is the payload for creating a subscription
type SubscriptionRequest struct {
	CustomerID string  `json:"customer_id" binding:"required"`
	ProductID  string  `json:"product_id" binding:"required"`
	StartDate  string  `json:"start_date,omitempty"`
	AutoRenew  *bool   `json:"auto_renew,omitempty"`
	Notes      string  `json:"notes,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
}

// SubscriptionUpdateRequest carries the fields an update may touch.
// Status is deliberately absent: lifecycle moves go through the
// transition endpoints, never through a raw field write.
type SubscriptionUpdateRequest struct {
	AutoRenew *bool   `json:"auto_renew,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}
