package service

import (
	"context"
	"errors"
	"time"

	"github.com/subzcrib/billing-platform/internal/auth"
	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/repository"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/google/uuid"
)

// ProductService manages a merchant's product catalog
type ProductService interface {
	Create(ctx context.Context, caller *auth.Identity, req domain.ProductRequest) (domain.Product, error)
	GetByID(ctx context.Context, caller *auth.Identity, id string) (domain.Product, error)
	List(ctx context.Context, caller *auth.Identity, opts repository.ListOptions) ([]domain.Product, int, error)
	Update(ctx context.Context, caller *auth.Identity, id string, req domain.ProductRequest) (domain.Product, error)
}

type productService struct {
	productRepo      repository.ProductRepository
	subscriptionRepo repository.SubscriptionRepository
	gate             *auth.Gate
	log              *logger.Logger
}

// NewProductService creates the product service
func NewProductService(
	productRepo repository.ProductRepository,
	subscriptionRepo repository.SubscriptionRepository,
	gate *auth.Gate,
	log *logger.Logger,
) ProductService {
	return &productService{
		productRepo:      productRepo,
		subscriptionRepo: subscriptionRepo,
		gate:             gate,
		log:              log,
	}
}

// Create adds a product to the caller's merchant catalog
func (s *productService) Create(ctx context.Context, caller *auth.Identity, req domain.ProductRequest) (domain.Product, error) {
	if caller == nil {
		return domain.Product{}, domain.ErrUnauthenticated
	}
	if caller.MerchantID == nil {
		return domain.Product{}, domain.ErrForbidden
	}
	if decision := s.gate.Authorize(caller, auth.ActionManageProducts, auth.MerchantScope(*caller.MerchantID)); !decision.Allowed {
		return domain.Product{}, decision.Reason
	}

	cycle, err := domain.ParseBillingCycle(req.BillingCycle)
	if err != nil {
		s.log.Warn("Invalid billing cycle: %s", req.BillingCycle)
		return domain.Product{}, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now()
	created, err := s.productRepo.Create(ctx, domain.Product{
		ID:           uuid.New(),
		MerchantID:   *caller.MerchantID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     currency,
		BillingCycle: cycle,
		TrialDays:    req.TrialDays,
		Status:       domain.ProductStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.log.Error("Failed to create product: %v", err)
		return domain.Product{}, err
	}

	s.log.Info("Created product with ID: %s", created.ID)
	return created, nil
}

// GetByID returns one product; customers of the same merchant may read
// the catalog
func (s *productService) GetByID(ctx context.Context, caller *auth.Identity, id string) (domain.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		s.log.Warn("Invalid UUID format: %s", id)
		return domain.Product{}, domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Product{}, domain.NewNotFoundError("product", id)
		}
		s.log.Error("Error fetching product: %v", err)
		return domain.Product{}, err
	}

	if decision := s.gate.Authorize(caller, auth.ActionReadProducts, auth.MerchantScope(product.MerchantID)); !decision.Allowed {
		return domain.Product{}, decision.Reason
	}

	return product, nil
}

// List returns the page of the catalog visible to the caller: admins
// see every merchant, merchants and customers their own merchant's
func (s *productService) List(ctx context.Context, caller *auth.Identity, opts repository.ListOptions) ([]domain.Product, int, error) {
	if caller == nil {
		return nil, 0, domain.ErrUnauthenticated
	}

	var merchantID *uuid.UUID
	switch caller.Role {
	case domain.RolePortalAdmin:
		// Unscoped
	case domain.RoleMerchant, domain.RoleCustomer:
		if caller.MerchantID == nil {
			return nil, 0, domain.ErrForbidden
		}
		if decision := s.gate.Authorize(caller, auth.ActionReadProducts, auth.MerchantScope(*caller.MerchantID)); !decision.Allowed {
			return nil, 0, decision.Reason
		}
		merchantID = caller.MerchantID
	default:
		return nil, 0, domain.ErrForbidden
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.productRepo.List(ctx, merchantID, opts)
}

// Update changes a product. The billing cycle is frozen once any
// subscription references the product; existing schedules must not
// shift under their subscribers.
func (s *productService) Update(ctx context.Context, caller *auth.Identity, id string, req domain.ProductRequest) (domain.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		s.log.Warn("Invalid UUID format: %s", id)
		return domain.Product{}, domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Product{}, domain.NewNotFoundError("product", id)
		}
		return domain.Product{}, err
	}

	if decision := s.gate.Authorize(caller, auth.ActionManageProducts, auth.MerchantScope(product.MerchantID)); !decision.Allowed {
		return domain.Product{}, decision.Reason
	}

	cycle, err := domain.ParseBillingCycle(req.BillingCycle)
	if err != nil {
		return domain.Product{}, err
	}

	if cycle != product.BillingCycle {
		count, err := s.subscriptionRepo.CountByProductID(ctx, product.ID)
		if err != nil {
			return domain.Product{}, err
		}
		if count > 0 {
			s.log.Warn("Rejected billing cycle change for product %s with %d subscription(s)", id, count)
			var errs domain.ValidationErrors
			errs.Add("billing_cycle", "cannot change the cycle of a product with subscriptions")
			return domain.Product{}, errs
		}
		product.BillingCycle = cycle
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	if req.Currency != "" {
		product.Currency = req.Currency
	}
	product.TrialDays = req.TrialDays
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.log.Error("Failed to update product: %v", err)
		return domain.Product{}, err
	}

	s.log.Info("Updated product with ID: %s", id)
	return product, nil
}
