package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/subzcrib/billing-platform/internal/auth"
	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/metrics"
	"github.com/subzcrib/billing-platform/internal/repository"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportCacheRecorder struct {
	mutex sync.Mutex
	drops int
}

func (r *reportCacheRecorder) InvalidateReports(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.drops++
	return nil
}

func (r *reportCacheRecorder) count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.drops
}

type serviceFixture struct {
	svc          SubscriptionService
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	reports      *reportCacheRecorder
	merchantID   uuid.UUID
	customer     domain.Customer
	product      domain.Product
	admin        *auth.Identity
	merchant     *auth.Identity
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)

	subscriptionRepo := repository.NewInMemorySubscriptionRepository(log)
	customerRepo := repository.NewInMemoryCustomerRepository(log)
	productRepo := repository.NewInMemoryProductRepository(log)

	merchantID := uuid.New()
	customer := domain.Customer{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Name:       "Test Customer",
		Email:      "customer@example.com",
		Status:     domain.CustomerStatusActive,
		CreatedAt:  time.Now(),
	}
	product := domain.Product{
		ID:           uuid.New(),
		MerchantID:   merchantID,
		Name:         "Pro Plan",
		Price:        199,
		Currency:     "USD",
		BillingCycle: domain.BillingCycleMonthly,
		Status:       domain.ProductStatusActive,
		CreatedAt:    time.Now(),
	}

	_, err := customerRepo.Create(context.Background(), customer)
	require.NoError(t, err)
	_, err = productRepo.Create(context.Background(), product)
	require.NoError(t, err)

	billingMetrics := metrics.NewBillingMetrics(prometheus.NewRegistry(), log)

	reports := &reportCacheRecorder{}
	svc := NewSubscriptionService(subscriptionRepo, customerRepo, productRepo, auth.NewGate(), nil, billingMetrics, reports, log)

	return &serviceFixture{
		svc:          svc,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		reports:      reports,
		merchantID:   merchantID,
		customer:     customer,
		product:      product,
		admin:        &auth.Identity{UserID: uuid.New(), Role: domain.RolePortalAdmin},
		merchant:     &auth.Identity{UserID: uuid.New(), Role: domain.RoleMerchant, MerchantID: &merchantID},
	}
}

func (f *serviceFixture) createSubscription(t *testing.T) domain.Subscription {
	t.Helper()

	sub, err := f.svc.Create(context.Background(), f.merchant, domain.SubscriptionRequest{
		CustomerID: f.customer.ID.String(),
		ProductID:  f.product.ID.String(),
	})
	require.NoError(t, err)
	return sub
}

func TestServiceCreateSubscription(t *testing.T) {
	f := newServiceFixture(t)

	sub := f.createSubscription(t)
	assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, 199.0, sub.Amount)
	assert.Equal(t, f.merchantID, sub.MerchantID)
	assert.True(t, sub.AutoRenew)
}

func TestServiceCreateRejectsUnknownCustomer(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Create(context.Background(), f.merchant, domain.SubscriptionRequest{
		CustomerID: uuid.NewString(),
		ProductID:  f.product.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceCreateRejectsMalformedIDs(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Create(context.Background(), f.merchant, domain.SubscriptionRequest{
		CustomerID: "not-a-uuid",
		ProductID:  f.product.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestServiceCreateDeniedForForeignMerchant(t *testing.T) {
	f := newServiceFixture(t)

	foreignID := uuid.New()
	foreign := &auth.Identity{UserID: uuid.New(), Role: domain.RoleMerchant, MerchantID: &foreignID}

	_, err := f.svc.Create(context.Background(), foreign, domain.SubscriptionRequest{
		CustomerID: f.customer.ID.String(),
		ProductID:  f.product.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestServicePauseResumeFlow(t *testing.T) {
	f := newServiceFixture(t)
	sub := f.createSubscription(t)

	paused, err := f.svc.Pause(context.Background(), f.merchant, sub.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusPaused, paused.Status)

	resumed, err := f.svc.Resume(context.Background(), f.merchant, paused.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusActive, resumed.Status)
}

func TestServiceCancelIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	sub := f.createSubscription(t)

	cancelled, err := f.svc.Cancel(context.Background(), f.merchant, sub.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCancelled, cancelled.Status)

	again, err := f.svc.Cancel(context.Background(), f.merchant, sub.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCancelled, again.Status)
}

func TestServiceConcurrentCancels(t *testing.T) {
	f := newServiceFixture(t)
	sub := f.createSubscription(t)

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Cancel(context.Background(), f.merchant, sub.ID.String())
		}(i)
	}
	wg.Wait()

	// Exactly one transition wins; the loser sees either a retryable
	// conflict or the idempotent no-op, never a corrupted state
	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.ErrorIs(t, err, domain.ErrConflict)
		}
	}
	assert.LessOrEqual(t, failures, 1)

	final, err := f.svc.GetByID(context.Background(), f.admin, sub.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCancelled, final.Status)
}

func TestServiceRenewAdvancesBillingDate(t *testing.T) {
	f := newServiceFixture(t)
	sub := f.createSubscription(t)

	renewed, err := f.svc.Renew(context.Background(), f.merchant, sub.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusActive, renewed.Status)
	assert.True(t, renewed.NextBillingDate.After(sub.NextBillingDate))
}

func TestServiceRenewWithoutAutoRenewExpires(t *testing.T) {
	f := newServiceFixture(t)

	autoRenew := false
	sub, err := f.svc.Create(context.Background(), f.merchant, domain.SubscriptionRequest{
		CustomerID: f.customer.ID.String(),
		ProductID:  f.product.ID.String(),
		AutoRenew:  &autoRenew,
	})
	require.NoError(t, err)

	expired, err := f.svc.Renew(context.Background(), f.merchant, sub.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusExpired, expired.Status)

	// An expired subscription cannot be cancelled afterwards
	_, err = f.svc.Cancel(context.Background(), f.merchant, sub.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestServiceListScopedByRole(t *testing.T) {
	f := newServiceFixture(t)
	f.createSubscription(t)

	// The merchant sees their tenant
	subs, total, err := f.svc.List(context.Background(), f.merchant, "", repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, subs, 1)

	// A foreign merchant sees nothing
	foreignID := uuid.New()
	foreign := &auth.Identity{UserID: uuid.New(), Role: domain.RoleMerchant, MerchantID: &foreignID}
	_, total, err = f.svc.List(context.Background(), foreign, "", repository.ListOptions{})
	require.NoError(t, err)
	assert.Zero(t, total)

	// The customer sees only their own
	customerCaller := &auth.Identity{
		UserID:     uuid.New(),
		Role:       domain.RoleCustomer,
		MerchantID: &f.merchantID,
		CustomerID: &f.customer.ID,
	}
	_, total, err = f.svc.List(context.Background(), customerCaller, "", repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestServiceListStatusFilter(t *testing.T) {
	f := newServiceFixture(t)
	sub := f.createSubscription(t)

	_, err := f.svc.Cancel(context.Background(), f.merchant, sub.ID.String())
	require.NoError(t, err)

	_, total, err := f.svc.List(context.Background(), f.merchant, "active", repository.ListOptions{})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = f.svc.List(context.Background(), f.merchant, "cancelled", repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestServiceDeleteRequiresAdmin(t *testing.T) {
	f := newServiceFixture(t)
	sub := f.createSubscription(t)

	err := f.svc.Delete(context.Background(), f.merchant, sub.ID.String())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.svc.Delete(context.Background(), f.admin, sub.ID.String())
	require.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), f.admin, sub.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceGetDeniedForForeignCustomer(t *testing.T) {
	f := newServiceFixture(t)
	sub := f.createSubscription(t)

	otherCustomerID := uuid.New()
	other := &auth.Identity{
		UserID:     uuid.New(),
		Role:       domain.RoleCustomer,
		MerchantID: &f.merchantID,
		CustomerID: &otherCustomerID,
	}

	_, err := f.svc.GetByID(context.Background(), other, sub.ID.String())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestServiceSweepTrials(t *testing.T) {
	f := newServiceFixture(t)

	trialProduct := domain.Product{
		ID:           uuid.New(),
		MerchantID:   f.merchantID,
		Name:         "Trial Plan",
		Price:        49,
		Currency:     "USD",
		BillingCycle: domain.BillingCycleMonthly,
		TrialDays:    7,
		Status:       domain.ProductStatusActive,
		CreatedAt:    time.Now(),
	}
	_, err := f.productRepo.Create(context.Background(), trialProduct)
	require.NoError(t, err)

	start := time.Now().AddDate(0, 0, -10)
	sub, err := f.svc.Create(context.Background(), f.merchant, domain.SubscriptionRequest{
		CustomerID: f.customer.ID.String(),
		ProductID:  trialProduct.ID.String(),
		StartDate:  start.Format(time.RFC3339),
	})
	require.NoError(t, err)
	require.Equal(t, domain.SubscriptionStatusTrial, sub.Status)

	converted, err := f.svc.SweepTrials(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, converted)

	activated, err := f.svc.GetByID(context.Background(), f.admin, sub.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusActive, activated.Status)
}

func TestServiceUpdateNonLifecycleFields(t *testing.T) {
	f := newServiceFixture(t)
	sub := f.createSubscription(t)

	autoRenew := false
	notes := "downgrade at period end"
	updated, err := f.svc.Update(context.Background(), f.merchant, sub.ID.String(), domain.SubscriptionUpdateRequest{
		AutoRenew: &autoRenew,
		Notes:     &notes,
	})
	require.NoError(t, err)
	assert.False(t, updated.AutoRenew)
	assert.Equal(t, notes, updated.Notes)
	// Status is untouched by field updates
	assert.Equal(t, sub.Status, updated.Status)
	assert.Greater(t, updated.Version, sub.Version)
}


func TestServiceWritesDropCachedReports(t *testing.T) {
	f := newServiceFixture(t)

	sub := f.createSubscription(t)
	afterCreate := f.reports.count()
	assert.Positive(t, afterCreate)

	_, err := f.svc.Cancel(context.Background(), f.merchant, sub.ID.String())
	require.NoError(t, err)
	assert.Greater(t, f.reports.count(), afterCreate)

	// A read leaves the cache alone
	before := f.reports.count()
	_, err = f.svc.GetByID(context.Background(), f.merchant, sub.ID.String())
	require.NoError(t, err)
	assert.Equal(t, before, f.reports.count())
}
