package service

import (
	"context"
	"errors"
	"time"

	"github.com/subzcrib/billing-platform/internal/auth"
	"github.com/subzcrib/billing-platform/internal/billing"
	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/kafka/producer"
	"github.com/subzcrib/billing-platform/internal/metrics"
	"github.com/subzcrib/billing-platform/internal/repository"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/google/uuid"
)

// opTimeout bounds every persistence call so no request blocks
// indefinitely on a collaborator
const opTimeout = 5 * time.Second

// SubscriptionService drives the subscription lifecycle. Every method
// authorizes the caller's scope before touching data, and every
// transition persists through the version check so concurrent
// transitions cannot both win.
type SubscriptionService interface {
	Create(ctx context.Context, caller *auth.Identity, req domain.SubscriptionRequest) (domain.Subscription, error)
	GetByID(ctx context.Context, caller *auth.Identity, id string) (domain.Subscription, error)
	List(ctx context.Context, caller *auth.Identity, status string, opts repository.ListOptions) ([]domain.Subscription, int, error)
	Update(ctx context.Context, caller *auth.Identity, id string, req domain.SubscriptionUpdateRequest) (domain.Subscription, error)
	Pause(ctx context.Context, caller *auth.Identity, id string) (domain.Subscription, error)
	Resume(ctx context.Context, caller *auth.Identity, id string) (domain.Subscription, error)
	Cancel(ctx context.Context, caller *auth.Identity, id string) (domain.Subscription, error)
	Renew(ctx context.Context, caller *auth.Identity, id string) (domain.Subscription, error)
	Delete(ctx context.Context, caller *auth.Identity, id string) error
	SweepTrials(ctx context.Context, now time.Time) (int, error)
}

// ReportInvalidator drops cached analytics reports once a write moved
// revenue or status counts
type ReportInvalidator interface {
	InvalidateReports(ctx context.Context) error
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	customerRepo     repository.CustomerRepository
	productRepo      repository.ProductRepository
	gate             *auth.Gate
	events           producer.BillingProducer
	metrics          metrics.BillingMetrics
	reports          ReportInvalidator
	log              *logger.Logger
}

// NewSubscriptionService creates the subscription service. A nil
// reports invalidator means reports are served from cache until the
// TTL expires.
func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	gate *auth.Gate,
	events producer.BillingProducer,
	billingMetrics metrics.BillingMetrics,
	reports ReportInvalidator,
	log *logger.Logger,
) SubscriptionService {
	if events == nil {
		events = producer.NewNoopBillingProducer(log)
	}
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		customerRepo:     customerRepo,
		productRepo:      productRepo,
		gate:             gate,
		events:           events,
		metrics:          billingMetrics,
		reports:          reports,
		log:              log,
	}
}

// Create builds and stores a new subscription for a customer and product
func (s *subscriptionService) Create(ctx context.Context, caller *auth.Identity, req domain.SubscriptionRequest) (domain.Subscription, error) {
	s.log.Debug("Creating subscription for customer: %s, product: %s", req.CustomerID, req.ProductID)

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		s.log.Warn("Invalid UUID format for customer ID: %s", req.CustomerID)
		return domain.Subscription{}, domain.ErrInvalidInput
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		s.log.Warn("Invalid UUID format for product ID: %s", req.ProductID)
		return domain.Subscription{}, domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("Customer not found: %s", req.CustomerID)
			return domain.Subscription{}, domain.NewNotFoundError("customer", req.CustomerID)
		}
		s.log.Error("Error fetching customer: %v", err)
		return domain.Subscription{}, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("Product not found: %s", req.ProductID)
			return domain.Subscription{}, domain.NewNotFoundError("product", req.ProductID)
		}
		s.log.Error("Error fetching product: %v", err)
		return domain.Subscription{}, err
	}

	if product.MerchantID != customer.MerchantID {
		s.log.Warn("Product %s and customer %s belong to different merchants", productID, customerID)
		return domain.Subscription{}, domain.ErrInvalidInput
	}
	if product.Status != domain.ProductStatusActive {
		s.log.Warn("Product is not active: %s", req.ProductID)
		return domain.Subscription{}, domain.ErrInvalidInput
	}

	if decision := s.gate.Authorize(caller, auth.ActionWriteSubscription, auth.CustomerScope(customer.MerchantID, customer.ID)); !decision.Allowed {
		return domain.Subscription{}, decision.Reason
	}

	startDate := time.Now()
	if req.StartDate != "" {
		startDate, err = time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			s.log.Warn("Invalid start date: %s", req.StartDate)
			return domain.Subscription{}, domain.ErrInvalidInput
		}
	}

	amount := product.Price
	if req.Amount > 0 {
		amount = req.Amount
	}
	autoRenew := true
	if req.AutoRenew != nil {
		autoRenew = *req.AutoRenew
	}

	subscription, err := billing.NewSubscription(customer, product, startDate, amount, autoRenew)
	if err != nil {
		return domain.Subscription{}, err
	}
	subscription.Notes = req.Notes

	created, err := s.subscriptionRepo.Create(ctx, subscription)
	if err != nil {
		s.log.Error("Failed to create subscription: %v", err)
		return domain.Subscription{}, err
	}

	s.metrics.IncSubscriptionCreated(string(created.BillingCycle))
	s.metrics.ObserveSubscriptionAmount(created.Amount, string(created.BillingCycle))
	s.publish(ctx, s.events.PublishSubscriptionCreated, created)
	s.invalidateReports(ctx)

	s.log.Info("Created subscription with ID: %s", created.ID)
	return created, nil
}

// GetByID returns a subscription the caller may see
func (s *subscriptionService) GetByID(ctx context.Context, caller *auth.Identity, id string) (domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	sub, err := s.fetch(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}

	if decision := s.gate.Authorize(caller, auth.ActionReadSubscription, auth.CustomerScope(sub.MerchantID, sub.CustomerID)); !decision.Allowed {
		return domain.Subscription{}, decision.Reason
	}

	return sub, nil
}

// List returns the page of subscriptions visible to the caller. The
// filter is derived from the caller's tenant scope, never from request
// input, so cross-tenant reads cannot be crafted.
func (s *subscriptionService) List(ctx context.Context, caller *auth.Identity, status string, opts repository.ListOptions) ([]domain.Subscription, int, error) {
	if caller == nil {
		return nil, 0, domain.ErrUnauthenticated
	}

	filter := repository.SubscriptionFilter{}
	if status != "" && status != "all" {
		filter.Status = domain.SubscriptionStatus(status)
	}

	switch caller.Role {
	case domain.RolePortalAdmin:
		// Unscoped
	case domain.RoleMerchant:
		filter.MerchantID = caller.MerchantID
	case domain.RoleCustomer:
		filter.CustomerID = caller.CustomerID
	default:
		return nil, 0, domain.ErrForbidden
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.subscriptionRepo.List(ctx, filter, opts)
}

// Update changes the non-lifecycle fields. Status never passes through
// here; lifecycle moves use the transition methods.
func (s *subscriptionService) Update(ctx context.Context, caller *auth.Identity, id string, req domain.SubscriptionUpdateRequest) (domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	sub, err := s.fetch(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}

	if decision := s.gate.Authorize(caller, auth.ActionWriteSubscription, auth.CustomerScope(sub.MerchantID, sub.CustomerID)); !decision.Allowed {
		return domain.Subscription{}, decision.Reason
	}

	if req.AutoRenew != nil {
		sub.AutoRenew = *req.AutoRenew
	}
	if req.Notes != nil {
		sub.Notes = *req.Notes
	}
	sub.UpdatedAt = time.Now()

	updated, err := s.subscriptionRepo.Update(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.metrics.IncTransitionConflict()
		}
		return domain.Subscription{}, err
	}

	s.invalidateReports(ctx)
	return updated, nil
}

// Pause freezes an active subscription
func (s *subscriptionService) Pause(ctx context.Context, caller *auth.Identity, id string) (domain.Subscription, error) {
	return s.transition(ctx, caller, id, "pause", func(sub domain.Subscription, now time.Time) (domain.Subscription, bool, error) {
		next, err := billing.Pause(sub, now)
		return next, err == nil, err
	}, s.events.PublishSubscriptionPaused)
}

// Resume reactivates a paused subscription
func (s *subscriptionService) Resume(ctx context.Context, caller *auth.Identity, id string) (domain.Subscription, error) {
	return s.transition(ctx, caller, id, "resume", func(sub domain.Subscription, now time.Time) (domain.Subscription, bool, error) {
		next, err := billing.Resume(sub, now)
		return next, err == nil, err
	}, s.events.PublishSubscriptionResumed)
}

// Cancel ends a subscription; repeated cancels are no-ops
func (s *subscriptionService) Cancel(ctx context.Context, caller *auth.Identity, id string) (domain.Subscription, error) {
	return s.transition(ctx, caller, id, "cancel", billing.Cancel, s.events.PublishSubscriptionCancelled)
}

// Renew advances the billing date on behalf of the external billing
// run, or expires the subscription when autoRenew is off
func (s *subscriptionService) Renew(ctx context.Context, caller *auth.Identity, id string) (domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	sub, err := s.fetch(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}

	if decision := s.gate.Authorize(caller, auth.ActionWriteSubscription, auth.MerchantScope(sub.MerchantID)); !decision.Allowed {
		return domain.Subscription{}, decision.Reason
	}

	now := time.Now()
	renewed, outcome, err := billing.Renew(sub, now)
	if err != nil {
		return domain.Subscription{}, err
	}

	updated, err := s.subscriptionRepo.Update(ctx, renewed)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.metrics.IncTransitionConflict()
			s.log.Warn("Renew lost a concurrent transition race: %s", id)
		}
		return domain.Subscription{}, err
	}

	switch outcome {
	case billing.RenewOutcomeRenewed:
		s.metrics.IncTransition(string(domain.SubscriptionStatusActive))
		// The billing collaborator owns invoice creation; this event
		// is its trigger
		s.publish(ctx, s.events.PublishBillingDue, updated)
		s.publish(ctx, s.events.PublishSubscriptionRenewed, updated)
	case billing.RenewOutcomeExpired:
		s.metrics.IncTransition(string(domain.SubscriptionStatusExpired))
		s.publish(ctx, s.events.PublishSubscriptionExpired, updated)
	}
	s.invalidateReports(ctx)

	s.log.Info("Renew outcome for subscription %s: %s", id, outcome)
	return updated, nil
}

// Delete is the administrative hard delete, distinct from Cancel
func (s *subscriptionService) Delete(ctx context.Context, caller *auth.Identity, id string) error {
	if decision := s.gate.RequireRole(caller, domain.RolePortalAdmin); !decision.Allowed {
		return decision.Reason
	}

	subID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.subscriptionRepo.Delete(ctx, subID); err != nil {
		return err
	}

	s.invalidateReports(ctx)
	s.log.Warn("Subscription hard-deleted by %s: %s", caller.Email, id)
	return nil
}

// SweepTrials converts trial subscriptions whose trial end has passed.
// Invoked by the external scheduler, not by an in-process timer.
func (s *subscriptionService) SweepTrials(ctx context.Context, now time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	trials, err := s.subscriptionRepo.ListAll(ctx, repository.SubscriptionFilter{Status: domain.SubscriptionStatusTrial})
	if err != nil {
		return 0, err
	}

	converted := 0
	for _, sub := range trials {
		if sub.TrialEndDate == nil || sub.TrialEndDate.After(now) {
			continue
		}

		activated, err := billing.EndTrial(sub, now)
		if err != nil {
			continue
		}

		if _, err := s.subscriptionRepo.Update(ctx, activated); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// Someone else transitioned it; the sweep picks it up
				// next round if still relevant
				s.metrics.IncTransitionConflict()
				continue
			}
			return converted, err
		}

		s.metrics.IncTransition(string(domain.SubscriptionStatusActive))
		converted++
	}

	if converted > 0 {
		s.invalidateReports(ctx)
	}
	s.log.Info("Trial sweep converted %d subscription(s)", converted)
	return converted, nil
}

// transition runs fetch, authorize, transition, version-checked update
// and event publication for the simple lifecycle moves
func (s *subscriptionService) transition(
	ctx context.Context,
	caller *auth.Identity,
	id string,
	name string,
	fn func(domain.Subscription, time.Time) (domain.Subscription, bool, error),
	event func(context.Context, domain.Subscription) error,
) (domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	sub, err := s.fetch(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}

	if decision := s.gate.Authorize(caller, auth.ActionWriteSubscription, auth.CustomerScope(sub.MerchantID, sub.CustomerID)); !decision.Allowed {
		return domain.Subscription{}, decision.Reason
	}

	now := time.Now()
	next, changed, err := fn(sub, now)
	if err != nil {
		s.log.Warn("Rejected %s for subscription %s: %v", name, id, err)
		return domain.Subscription{}, err
	}
	if !changed {
		// Idempotent no-op, e.g. cancelling an already cancelled
		// subscription
		return next, nil
	}

	updated, err := s.subscriptionRepo.Update(ctx, next)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.metrics.IncTransitionConflict()
			s.log.Warn("%s lost a concurrent transition race: %s", name, id)
		}
		return domain.Subscription{}, err
	}

	s.metrics.IncTransition(string(updated.Status))
	s.publish(ctx, event, updated)
	s.invalidateReports(ctx)

	s.log.Info("Subscription %s: %s -> %s", id, sub.Status, updated.Status)
	return updated, nil
}

func (s *subscriptionService) fetch(ctx context.Context, id string) (domain.Subscription, error) {
	subID, err := uuid.Parse(id)
	if err != nil {
		s.log.Warn("Invalid UUID format: %s", id)
		return domain.Subscription{}, domain.ErrInvalidInput
	}

	sub, err := s.subscriptionRepo.GetByID(ctx, subID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Subscription{}, domain.NewNotFoundError("subscription", id)
		}
		s.log.Error("Error fetching subscription: %v", err)
		return domain.Subscription{}, err
	}

	return sub, nil
}

// invalidateReports drops cached analytics reports after a committed
// write; failures are logged, not returned
func (s *subscriptionService) invalidateReports(ctx context.Context) {
	if s.reports == nil {
		return
	}
	if err := s.reports.InvalidateReports(ctx); err != nil {
		s.log.Warnw("Failed to invalidate cached reports", "error", err)
	}
}

// publish sends an event and absorbs failures; the transition already
// committed and must not roll back over a telemetry problem
func (s *subscriptionService) publish(ctx context.Context, fn func(context.Context, domain.Subscription) error, sub domain.Subscription) {
	if err := fn(ctx, sub); err != nil {
		s.log.Warnw("Failed to publish subscription event", "error", err, "subscriptionID", sub.ID)
	}
}
