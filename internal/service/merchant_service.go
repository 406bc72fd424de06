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

// MerchantService handles the portal side of tenant management
type MerchantService interface {
	GetByID(ctx context.Context, caller *auth.Identity, id string) (domain.Merchant, error)
	List(ctx context.Context, caller *auth.Identity, opts repository.ListOptions) ([]domain.Merchant, int, error)
	Update(ctx context.Context, caller *auth.Identity, id string, req domain.MerchantRequest) (domain.Merchant, error)
	Approve(ctx context.Context, caller *auth.Identity, id string) (domain.Merchant, error)
}

type merchantService struct {
	merchantRepo repository.MerchantRepository
	gate         *auth.Gate
	log          *logger.Logger
}

// NewMerchantService creates the merchant service
func NewMerchantService(merchantRepo repository.MerchantRepository, gate *auth.Gate, log *logger.Logger) MerchantService {
	return &merchantService{
		merchantRepo: merchantRepo,
		gate:         gate,
		log:          log,
	}
}

// GetByID returns one merchant. Merchants see themselves, their
// customers get the shared read, admins see all.
func (s *merchantService) GetByID(ctx context.Context, caller *auth.Identity, id string) (domain.Merchant, error) {
	merchantID, err := uuid.Parse(id)
	if err != nil {
		s.log.Warn("Invalid UUID format: %s", id)
		return domain.Merchant{}, domain.ErrInvalidInput
	}

	if decision := s.gate.Authorize(caller, auth.ActionReadMerchant, auth.MerchantScope(merchantID)); !decision.Allowed {
		return domain.Merchant{}, decision.Reason
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Merchant{}, domain.NewNotFoundError("merchant", id)
		}
		s.log.Error("Error fetching merchant: %v", err)
		return domain.Merchant{}, err
	}

	return merchant, nil
}

// List is the portal admin view of all tenants
func (s *merchantService) List(ctx context.Context, caller *auth.Identity, opts repository.ListOptions) ([]domain.Merchant, int, error) {
	if decision := s.gate.RequireRole(caller, domain.RolePortalAdmin); !decision.Allowed {
		return nil, 0, decision.Reason
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.merchantRepo.List(ctx, opts)
}

// Update changes a merchant's business profile. Approval status is not
// writable here; only Approve moves it.
func (s *merchantService) Update(ctx context.Context, caller *auth.Identity, id string, req domain.MerchantRequest) (domain.Merchant, error) {
	merchantID, err := uuid.Parse(id)
	if err != nil {
		s.log.Warn("Invalid UUID format: %s", id)
		return domain.Merchant{}, domain.ErrInvalidInput
	}

	if decision := s.gate.Authorize(caller, auth.ActionManageMerchant, auth.MerchantScope(merchantID)); !decision.Allowed {
		return domain.Merchant{}, decision.Reason
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Merchant{}, domain.NewNotFoundError("merchant", id)
		}
		return domain.Merchant{}, err
	}

	merchant.BusinessName = req.BusinessName
	merchant.BusinessEmail = req.BusinessEmail
	merchant.BusinessPhone = req.BusinessPhone
	if req.Currency != "" {
		merchant.Billing.Currency = req.Currency
	}
	merchant.UpdatedAt = time.Now()

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		s.log.Error("Failed to update merchant: %v", err)
		return domain.Merchant{}, err
	}

	s.log.Info("Updated merchant with ID: %s", id)
	return merchant, nil
}

// Approve marks a merchant as reviewed and able to take customers
func (s *merchantService) Approve(ctx context.Context, caller *auth.Identity, id string) (domain.Merchant, error) {
	if decision := s.gate.RequireRole(caller, domain.RolePortalAdmin); !decision.Allowed {
		return domain.Merchant{}, decision.Reason
	}

	merchantID, err := uuid.Parse(id)
	if err != nil {
		s.log.Warn("Invalid UUID format: %s", id)
		return domain.Merchant{}, domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Merchant{}, domain.NewNotFoundError("merchant", id)
		}
		return domain.Merchant{}, err
	}

	if merchant.IsApproved {
		return merchant, nil
	}

	merchant.IsApproved = true
	merchant.UpdatedAt = time.Now()
	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		s.log.Error("Failed to approve merchant: %v", err)
		return domain.Merchant{}, err
	}

	s.log.Info("Approved merchant %s (%s)", merchant.BusinessName, merchant.ID)
	return merchant, nil
}
