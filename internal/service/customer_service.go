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

// CustomerService manages a merchant's customer roster
type CustomerService interface {
	Create(ctx context.Context, caller *auth.Identity, req domain.CustomerRequest) (domain.Customer, error)
	GetByID(ctx context.Context, caller *auth.Identity, id string) (domain.Customer, error)
	List(ctx context.Context, caller *auth.Identity, opts repository.ListOptions) ([]domain.Customer, int, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	gate         *auth.Gate
	log          *logger.Logger
}

// NewCustomerService creates the customer service
func NewCustomerService(customerRepo repository.CustomerRepository, gate *auth.Gate, log *logger.Logger) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		gate:         gate,
		log:          log,
	}
}

// Create adds a customer to the caller's merchant
func (s *customerService) Create(ctx context.Context, caller *auth.Identity, req domain.CustomerRequest) (domain.Customer, error) {
	if caller == nil {
		return domain.Customer{}, domain.ErrUnauthenticated
	}
	if caller.MerchantID == nil {
		// Admins manage customers through a specific merchant context,
		// not this endpoint
		return domain.Customer{}, domain.ErrForbidden
	}
	if decision := s.gate.Authorize(caller, auth.ActionManageCustomer, auth.MerchantScope(*caller.MerchantID)); !decision.Allowed {
		return domain.Customer{}, decision.Reason
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now()
	created, err := s.customerRepo.Create(ctx, domain.Customer{
		ID:         uuid.New(),
		MerchantID: *caller.MerchantID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Status:     domain.CustomerStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		s.log.Warn("Customer creation rejected for %s: %v", req.Email, err)
		return domain.Customer{}, err
	}

	s.log.Info("Created customer with ID: %s", created.ID)
	return created, nil
}

// GetByID returns one customer in the caller's scope
func (s *customerService) GetByID(ctx context.Context, caller *auth.Identity, id string) (domain.Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		s.log.Warn("Invalid UUID format: %s", id)
		return domain.Customer{}, domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Customer{}, domain.NewNotFoundError("customer", id)
		}
		s.log.Error("Error fetching customer: %v", err)
		return domain.Customer{}, err
	}

	if decision := s.gate.Authorize(caller, auth.ActionReadCustomer, auth.CustomerScope(customer.MerchantID, customer.ID)); !decision.Allowed {
		return domain.Customer{}, decision.Reason
	}

	return customer, nil
}

// List returns the page of customers visible to the caller: admins see
// every merchant, merchants their own
func (s *customerService) List(ctx context.Context, caller *auth.Identity, opts repository.ListOptions) ([]domain.Customer, int, error) {
	if caller == nil {
		return nil, 0, domain.ErrUnauthenticated
	}

	var merchantID *uuid.UUID
	switch caller.Role {
	case domain.RolePortalAdmin:
		// Unscoped
	case domain.RoleMerchant:
		if caller.MerchantID == nil {
			return nil, 0, domain.ErrForbidden
		}
		if decision := s.gate.Authorize(caller, auth.ActionReadCustomer, auth.MerchantScope(*caller.MerchantID)); !decision.Allowed {
			return nil, 0, decision.Reason
		}
		merchantID = caller.MerchantID
	default:
		return nil, 0, domain.ErrForbidden
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.customerRepo.List(ctx, merchantID, opts)
}
