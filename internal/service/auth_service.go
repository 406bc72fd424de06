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

// AuthResult carries the issued token and the public view of the user
type AuthResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// AuthService handles login and the two signup flows
type AuthService interface {
	Login(ctx context.Context, req domain.LoginRequest) (AuthResult, error)
	RegisterMerchant(ctx context.Context, req domain.RegisterRequest) (AuthResult, error)
	RegisterCustomer(ctx context.Context, req domain.RegisterCustomerRequest) (AuthResult, error)
}

type authService struct {
	userRepo     repository.UserRepository
	merchantRepo repository.MerchantRepository
	customerRepo repository.CustomerRepository
	issuer       auth.TokenIssuer
	log          *logger.Logger
}

// NewAuthService creates the auth service
func NewAuthService(
	userRepo repository.UserRepository,
	merchantRepo repository.MerchantRepository,
	customerRepo repository.CustomerRepository,
	issuer auth.TokenIssuer,
	log *logger.Logger,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		merchantRepo: merchantRepo,
		customerRepo: customerRepo,
		issuer:       issuer,
		log:          log,
	}
}

// Login verifies credentials and issues a token. Unknown email,
// wrong password and disabled account all return the same error so
// the response gives nothing away.
func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("Login attempt for unknown email: %s", req.Email)
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		s.log.Error("Error fetching user by email: %v", err)
		return AuthResult{}, err
	}

	if !user.IsActive {
		s.log.Warn("Login attempt for disabled account: %s", req.Email)
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.log.Warn("Failed login for %s", req.Email)
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(&user)
	if err != nil {
		s.log.Error("Failed to issue token: %v", err)
		return AuthResult{}, domain.ErrInternal
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		// Login already succeeded; a missed lastLogin stamp is not
		// worth failing the request over
		s.log.Warnw("Failed to record last login", "error", err, "email", req.Email)
	}

	s.log.Info("User logged in: %s (%s)", user.Email, user.Role)
	user.PasswordHash = ""
	return AuthResult{Token: token, User: user}, nil
}

// RegisterMerchant creates a merchant tenant plus its owning user.
// New merchants start unapproved and wait for portal review.
func (s *authService) RegisterMerchant(ctx context.Context, req domain.RegisterRequest) (AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.emailAvailable(ctx, req.Email); err != nil {
		s.log.Warn("Merchant registration rejected for %s: %v", req.Email, err)
		return AuthResult{}, err
	}

	now := time.Now()
	merchant, err := s.merchantRepo.Create(ctx, domain.Merchant{
		ID:            uuid.New(),
		BusinessName:  req.BusinessName,
		BusinessEmail: req.Email,
		IsApproved:    false,
		IsActive:      true,
		Billing:       domain.BillingSettings{Currency: "USD", AutoBilling: true},
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		s.log.Warn("Merchant registration rejected for %s: %v", req.Email, err)
		return AuthResult{}, err
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.Name, domain.RoleMerchant, &merchant.ID, nil)
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.issuer.Issue(&user)
	if err != nil {
		s.log.Error("Failed to issue token: %v", err)
		return AuthResult{}, domain.ErrInternal
	}

	s.log.Info("Registered merchant %s (%s)", merchant.BusinessName, merchant.ID)
	return AuthResult{Token: token, User: user}, nil
}

// RegisterCustomer creates a customer under an existing merchant plus
// its user
func (s *authService) RegisterCustomer(ctx context.Context, req domain.RegisterCustomerRequest) (AuthResult, error) {
	merchantID, err := uuid.Parse(req.MerchantID)
	if err != nil {
		s.log.Warn("Invalid UUID format for merchant ID: %s", req.MerchantID)
		return AuthResult{}, domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	merchant, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return AuthResult{}, domain.NewNotFoundError("merchant", req.MerchantID)
		}
		return AuthResult{}, err
	}
	if !merchant.IsApproved || !merchant.IsActive {
		s.log.Warn("Customer signup rejected, merchant %s not accepting customers", merchant.ID)
		return AuthResult{}, domain.ErrInvalidInput
	}

	if err := s.emailAvailable(ctx, req.Email); err != nil {
		s.log.Warn("Customer registration rejected for %s: %v", req.Email, err)
		return AuthResult{}, err
	}

	customer, err := s.customerRepo.Create(ctx, domain.Customer{
		ID:         uuid.New(),
		MerchantID: merchant.ID,
		Name:       req.Name,
		Email:      req.Email,
		Status:     domain.CustomerStatusActive,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		s.log.Warn("Customer registration rejected for %s: %v", req.Email, err)
		return AuthResult{}, err
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.Name, domain.RoleCustomer, &merchant.ID, &customer.ID)
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.issuer.Issue(&user)
	if err != nil {
		s.log.Error("Failed to issue token: %v", err)
		return AuthResult{}, domain.ErrInternal
	}

	s.log.Info("Registered customer %s under merchant %s", customer.ID, merchant.ID)
	return AuthResult{Token: token, User: user}, nil
}

// emailAvailable runs before any tenant record is written, so a
// duplicate email leaves no partial state behind
func (s *authService) emailAvailable(ctx context.Context, email string) error {
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return domain.NewDuplicateError("user", "email", email)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func (s *authService) createUser(ctx context.Context, email, password, name string, role domain.Role, merchantID, customerID *uuid.UUID) (domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.log.Error("Failed to hash password: %v", err)
		return domain.User{}, domain.ErrInternal
	}

	now := time.Now()
	user := domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		MerchantID:   merchantID,
		CustomerID:   customerID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return domain.User{}, err
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		s.log.Warn("User creation rejected for %s: %v", email, err)
		return domain.User{}, err
	}

	// The hash stays in storage only
	created.PasswordHash = ""
	return created, nil
}
