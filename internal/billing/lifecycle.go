package billing

import (
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"

	"github.com/google/uuid"
)

// Lifecycle implements the subscription state machine. Every function
// takes a subscription by value and returns the transitioned copy, so
// callers decide when to persist; persistence applies the version check
// that serializes concurrent transitions.

// RenewOutcome describes what a renewal attempt did
type RenewOutcome string

const (
	// RenewOutcomeRenewed the billing date advanced and a billing event is due
	RenewOutcomeRenewed RenewOutcome = "renewed"
	// RenewOutcomeExpired autoRenew was off, the subscription ended
	RenewOutcomeExpired RenewOutcome = "expired"
)

// NewSubscription builds a subscription for a customer and product.
// Initial state is active, or trial when the product configures a trial
// period; the trial converts to active via EndTrial, driven by an
// external scheduled sweep.
func NewSubscription(customer domain.Customer, product domain.Product, startDate time.Time, amount float64, autoRenew bool) (domain.Subscription, error) {
	next, err := Advance(startDate, product.BillingCycle)
	if err != nil {
		return domain.Subscription{}, err
	}

	now := time.Now()
	sub := domain.Subscription{
		ID:              uuid.New(),
		CustomerID:      customer.ID,
		ProductID:       product.ID,
		MerchantID:      product.MerchantID,
		Status:          domain.SubscriptionStatusActive,
		Amount:          amount,
		Currency:        product.Currency,
		BillingCycle:    product.BillingCycle,
		StartDate:       startDate,
		NextBillingDate: next,
		AutoRenew:       autoRenew,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if product.TrialDays > 0 {
		trialEnd := startDate.AddDate(0, 0, product.TrialDays)
		sub.Status = domain.SubscriptionStatusTrial
		sub.TrialEndDate = &trialEnd
		// No billing during trial; the first charge lands at trial end
		sub.NextBillingDate = trialEnd
	}

	return sub, nil
}

// Pause freezes billing. Only an active subscription can pause;
// NextBillingDate keeps its value and nothing bills while paused.
func Pause(sub domain.Subscription, now time.Time) (domain.Subscription, error) {
	if sub.Status != domain.SubscriptionStatusActive {
		return sub, domain.NewTransitionError(sub.Status, domain.SubscriptionStatusPaused)
	}

	sub.Status = domain.SubscriptionStatusPaused
	sub.UpdatedAt = now
	return sub, nil
}

// Resume reactivates a paused subscription. The next billing date is
// recomputed from the resume instant plus one full cycle rather than
// resurrecting a stale past date.
func Resume(sub domain.Subscription, now time.Time) (domain.Subscription, error) {
	if sub.Status != domain.SubscriptionStatusPaused {
		return sub, domain.NewTransitionError(sub.Status, domain.SubscriptionStatusActive)
	}

	next, err := Advance(now, sub.BillingCycle)
	if err != nil {
		return sub, err
	}

	sub.Status = domain.SubscriptionStatusActive
	sub.NextBillingDate = next
	sub.UpdatedAt = now
	return sub, nil
}

// Cancel ends a subscription from any non-terminal state. Cancelling an
// already cancelled subscription is an idempotent no-op; past invoices
// are never unbilled. The changed flag tells the caller whether an
// update (and an event) is warranted.
func Cancel(sub domain.Subscription, now time.Time) (domain.Subscription, bool, error) {
	if sub.Status == domain.SubscriptionStatusCancelled {
		return sub, false, nil
	}
	if sub.Status.IsTerminal() {
		return sub, false, domain.NewTransitionError(sub.Status, domain.SubscriptionStatusCancelled)
	}

	sub.Status = domain.SubscriptionStatusCancelled
	sub.EndDate = &now
	sub.UpdatedAt = now
	return sub, true, nil
}

// Renew is invoked by the external billing run when NextBillingDate is
// reached. With autoRenew on, the billing date advances one cycle and
// the caller owes a billing event; with autoRenew off, the subscription
// expires instead.
func Renew(sub domain.Subscription, now time.Time) (domain.Subscription, RenewOutcome, error) {
	if sub.Status != domain.SubscriptionStatusActive {
		return sub, "", domain.NewTransitionError(sub.Status, domain.SubscriptionStatusActive)
	}

	if !sub.AutoRenew {
		sub.Status = domain.SubscriptionStatusExpired
		sub.EndDate = &now
		sub.UpdatedAt = now
		return sub, RenewOutcomeExpired, nil
	}

	next, err := Advance(sub.NextBillingDate, sub.BillingCycle)
	if err != nil {
		return sub, "", err
	}

	sub.NextBillingDate = next
	sub.UpdatedAt = now
	return sub, RenewOutcomeRenewed, nil
}

// EndTrial converts a trial subscription to active once its trial end
// has passed, scheduling the first real billing one cycle after the
// trial end. Driven by an external scheduled sweep.
func EndTrial(sub domain.Subscription, now time.Time) (domain.Subscription, error) {
	if sub.Status != domain.SubscriptionStatusTrial {
		return sub, domain.NewTransitionError(sub.Status, domain.SubscriptionStatusActive)
	}

	anchor := now
	if sub.TrialEndDate != nil {
		anchor = *sub.TrialEndDate
	}
	next, err := Advance(anchor, sub.BillingCycle)
	if err != nil {
		return sub, err
	}

	sub.Status = domain.SubscriptionStatusActive
	sub.NextBillingDate = next
	sub.UpdatedAt = now
	return sub, nil
}
