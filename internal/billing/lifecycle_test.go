package billing

import (
	"testing"
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCustomer() domain.Customer {
	return domain.Customer{
		ID:         uuid.New(),
		MerchantID: uuid.New(),
		Name:       "Test Customer",
		Email:      "customer@example.com",
		Status:     domain.CustomerStatusActive,
	}
}

func testProduct(merchantID uuid.UUID, trialDays int) domain.Product {
	return domain.Product{
		ID:           uuid.New(),
		MerchantID:   merchantID,
		Name:         "Pro Plan",
		Price:        199,
		Currency:     "USD",
		BillingCycle: domain.BillingCycleMonthly,
		TrialDays:    trialDays,
		Status:       domain.ProductStatusActive,
	}
}

func TestNewSubscriptionActive(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 0)
	start := date(2024, time.March, 10)

	sub, err := NewSubscription(customer, product, start, product.Price, true)
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, customer.ID, sub.CustomerID)
	assert.Equal(t, product.MerchantID, sub.MerchantID)
	assert.Equal(t, date(2024, time.April, 10), sub.NextBillingDate)
	assert.Nil(t, sub.TrialEndDate)
	assert.Equal(t, int64(1), sub.Version)
}

func TestNewSubscriptionTrial(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 14)
	start := date(2024, time.March, 10)

	sub, err := NewSubscription(customer, product, start, product.Price, true)
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionStatusTrial, sub.Status)
	require.NotNil(t, sub.TrialEndDate)
	assert.Equal(t, date(2024, time.March, 24), *sub.TrialEndDate)
	// Nothing bills before the trial ends
	assert.Equal(t, date(2024, time.March, 24), sub.NextBillingDate)
}

func TestPauseOnlyFromActive(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 0)
	sub, err := NewSubscription(customer, product, date(2024, time.March, 1), 199, true)
	require.NoError(t, err)

	now := time.Now()
	paused, err := Pause(sub, now)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusPaused, paused.Status)
	// Billing anchor survives the pause untouched
	assert.Equal(t, sub.NextBillingDate, paused.NextBillingDate)

	_, err = Pause(paused, now)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestResumeRecomputesBillingDate(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 0)
	sub, err := NewSubscription(customer, product, date(2024, time.January, 15), 199, true)
	require.NoError(t, err)

	paused, err := Pause(sub, date(2024, time.January, 20))
	require.NoError(t, err)

	resumeAt := date(2024, time.May, 3)
	resumed, err := Resume(paused, resumeAt)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusActive, resumed.Status)
	// One full cycle from the resume instant, not the stale anchor
	assert.Equal(t, date(2024, time.June, 3), resumed.NextBillingDate)
}

func TestResumeOnlyFromPaused(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 0)
	sub, err := NewSubscription(customer, product, date(2024, time.March, 1), 199, true)
	require.NoError(t, err)

	_, err = Resume(sub, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelIsIdempotent(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 0)
	sub, err := NewSubscription(customer, product, date(2024, time.March, 1), 199, true)
	require.NoError(t, err)

	now := date(2024, time.April, 2)
	cancelled, changed, err := Cancel(sub, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.SubscriptionStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.EndDate)
	assert.Equal(t, now, *cancelled.EndDate)

	again, changed, err := Cancel(cancelled, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, domain.SubscriptionStatusCancelled, again.Status)
	// The original end date is not overwritten
	assert.Equal(t, now, *again.EndDate)
}

func TestCancelFromPausedAndTrial(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 0)
	sub, err := NewSubscription(customer, product, date(2024, time.March, 1), 199, true)
	require.NoError(t, err)

	paused, err := Pause(sub, time.Now())
	require.NoError(t, err)
	cancelled, changed, err := Cancel(paused, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.SubscriptionStatusCancelled, cancelled.Status)

	trialProduct := testProduct(customer.MerchantID, 7)
	trial, err := NewSubscription(customer, trialProduct, date(2024, time.March, 1), 199, true)
	require.NoError(t, err)
	cancelled, changed, err = Cancel(trial, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.SubscriptionStatusCancelled, cancelled.Status)
}

func TestCancelFromExpiredRejected(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 0)
	sub, err := NewSubscription(customer, product, date(2024, time.March, 1), 199, false)
	require.NoError(t, err)

	expired, outcome, err := Renew(sub, time.Now())
	require.NoError(t, err)
	require.Equal(t, RenewOutcomeExpired, outcome)

	_, _, err = Cancel(expired, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRenewAdvancesOneCycle(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 0)
	sub, err := NewSubscription(customer, product, date(2024, time.January, 31), 199, true)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.February, 29), sub.NextBillingDate)

	renewed, outcome, err := Renew(sub, date(2024, time.February, 29))
	require.NoError(t, err)
	assert.Equal(t, RenewOutcomeRenewed, outcome)
	assert.Equal(t, domain.SubscriptionStatusActive, renewed.Status)
	assert.Equal(t, date(2024, time.March, 29), renewed.NextBillingDate)
}

func TestRenewWithoutAutoRenewExpires(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 0)
	sub, err := NewSubscription(customer, product, date(2024, time.March, 1), 199, false)
	require.NoError(t, err)

	now := date(2024, time.April, 1)
	expired, outcome, err := Renew(sub, now)
	require.NoError(t, err)
	assert.Equal(t, RenewOutcomeExpired, outcome)
	assert.Equal(t, domain.SubscriptionStatusExpired, expired.Status)
	require.NotNil(t, expired.EndDate)
	assert.Equal(t, now, *expired.EndDate)
}

func TestRenewRequiresActive(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 0)
	sub, err := NewSubscription(customer, product, date(2024, time.March, 1), 199, true)
	require.NoError(t, err)

	paused, err := Pause(sub, time.Now())
	require.NoError(t, err)

	_, _, err = Renew(paused, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestEndTrialSchedulesFirstCharge(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 14)
	sub, err := NewSubscription(customer, product, date(2024, time.March, 10), 199, true)
	require.NoError(t, err)

	activated, err := EndTrial(sub, date(2024, time.March, 25))
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusActive, activated.Status)
	// One cycle after the trial end, not after the activation instant
	assert.Equal(t, date(2024, time.April, 24), activated.NextBillingDate)
}

func TestEndTrialRequiresTrial(t *testing.T) {
	customer := testCustomer()
	product := testProduct(customer.MerchantID, 0)
	sub, err := NewSubscription(customer, product, date(2024, time.March, 1), 199, true)
	require.NoError(t, err)

	_, err = EndTrial(sub, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
