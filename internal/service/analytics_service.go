package service

import (
	"context"
	"time"

	"github.com/subzcrib/billing-platform/internal/analytics"
	"github.com/subzcrib/billing-platform/internal/auth"
	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/repository"
	"github.com/subzcrib/billing-platform/pkg/logger"
)

// AnalyticsService builds revenue reports scoped to the caller's tenant
type AnalyticsService interface {
	Report(ctx context.Context, caller *auth.Identity) (analytics.Report, error)
}

type analyticsService struct {
	subscriptionRepo repository.SubscriptionRepository
	invoiceRepo      repository.InvoiceRepository
	customerRepo     repository.CustomerRepository
	gate             *auth.Gate
	cache            *repository.RedisCacheRepository
	metrics          metricsMRRSetter
	log              *logger.Logger
}

// metricsMRRSetter is the slice of BillingMetrics the analytics
// service needs
type metricsMRRSetter interface {
	SetMRR(merchantID string, mrr float64)
}

// NewAnalyticsService creates the analytics service. cache may be nil;
// reports are then computed on every call.
func NewAnalyticsService(
	subscriptionRepo repository.SubscriptionRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	gate *auth.Gate,
	cache *repository.RedisCacheRepository,
	metrics metricsMRRSetter,
	log *logger.Logger,
) AnalyticsService {
	return &analyticsService{
		subscriptionRepo: subscriptionRepo,
		invoiceRepo:      invoiceRepo,
		customerRepo:     customerRepo,
		gate:             gate,
		cache:            cache,
		metrics:          metrics,
		log:              log,
	}
}

// Report computes the dashboard report for the caller's scope. Admins
// see the whole platform, merchants their own tenant. Customers have
// no analytics surface at all.
func (s *analyticsService) Report(ctx context.Context, caller *auth.Identity) (analytics.Report, error) {
	if caller == nil {
		return analytics.Report{}, domain.ErrUnauthenticated
	}
	if decision := s.gate.RequireRole(caller, domain.RoleMerchant); !decision.Allowed {
		return analytics.Report{}, decision.Reason
	}

	scope := "platform"
	if caller.Role == domain.RoleMerchant {
		if caller.MerchantID == nil {
			return analytics.Report{}, domain.ErrForbidden
		}
		scope = caller.MerchantID.String()
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if s.cache != nil {
		var cached analytics.Report
		hit, err := s.cache.GetCachedReport(ctx, scope, &cached)
		if err != nil {
			s.log.Warnw("Report cache read failed", "error", err, "scope", scope)
		} else if hit {
			s.log.Debug("Report cache hit for scope: %s", scope)
			return cached, nil
		}
	}

	snap, err := s.snapshot(ctx, caller)
	if err != nil {
		return analytics.Report{}, err
	}

	report := analytics.BuildReport(snap, time.Now())
	s.metrics.SetMRR(scope, report.Stats.TotalMRR)

	if s.cache != nil {
		if err := s.cache.CacheReport(ctx, scope, report); err != nil {
			s.log.Warnw("Report cache write failed", "error", err, "scope", scope)
		}
	}

	return report, nil
}

func (s *analyticsService) snapshot(ctx context.Context, caller *auth.Identity) (analytics.Snapshot, error) {
	filter := repository.SubscriptionFilter{}
	if caller.Role == domain.RoleMerchant {
		filter.MerchantID = caller.MerchantID
	}

	subs, err := s.subscriptionRepo.ListAll(ctx, filter)
	if err != nil {
		s.log.Error("Error listing subscriptions for report: %v", err)
		return analytics.Snapshot{}, err
	}

	var invoices []domain.Invoice
	if caller.Role == domain.RoleMerchant {
		invoices, err = s.invoiceRepo.ListByMerchant(ctx, *caller.MerchantID)
	} else {
		invoices, err = s.invoiceRepo.ListAll(ctx)
	}
	if err != nil {
		s.log.Error("Error listing invoices for report: %v", err)
		return analytics.Snapshot{}, err
	}

	var customers []domain.Customer
	if caller.Role == domain.RoleMerchant {
		customers, err = s.customerRepo.ListAllByMerchant(ctx, *caller.MerchantID)
	} else {
		customers, err = s.customerRepo.ListAll(ctx)
	}
	if err != nil {
		s.log.Error("Error listing customers for report: %v", err)
		return analytics.Snapshot{}, err
	}

	return analytics.Snapshot{
		Subscriptions: subs,
		Invoices:      invoices,
		Customers:     customers,
	}, nil
}
