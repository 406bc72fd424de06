package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/subzcrib/billing-platform/internal/auth"
	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/repository"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc          AuthService
	issuer       auth.TokenIssuer
	merchantRepo repository.MerchantRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)

	userRepo := repository.NewInMemoryUserRepository(log)
	merchantRepo := repository.NewInMemoryMerchantRepository(log)
	customerRepo := repository.NewInMemoryCustomerRepository(log)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	return &authFixture{
		svc:          NewAuthService(userRepo, merchantRepo, customerRepo, issuer, log),
		issuer:       issuer,
		merchantRepo: merchantRepo,
	}
}

func (f *authFixture) registerMerchant(t *testing.T, email string) AuthResult {
	t.Helper()

	result, err := f.svc.RegisterMerchant(context.Background(), domain.RegisterRequest{
		Email:        email,
		Password:     "hunter2hunter2",
		Name:         "Owner",
		BusinessName: "Acme Subscriptions",
	})
	require.NoError(t, err)
	return result
}

func TestRegisterMerchantIssuesVerifiableToken(t *testing.T) {
	f := newAuthFixture(t)

	result := f.registerMerchant(t, "owner@acme.test")
	require.NotEmpty(t, result.Token)
	assert.Equal(t, domain.RoleMerchant, result.User.Role)
	require.NotNil(t, result.User.MerchantID)
	assert.Empty(t, result.User.PasswordHash, "hash must never serialize, but it must also not leak through the API struct")

	identity, err := f.issuer.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, identity.UserID)
	assert.Equal(t, domain.RoleMerchant, identity.Role)
}

func TestRegisterMerchantStartsUnapproved(t *testing.T) {
	f := newAuthFixture(t)

	result := f.registerMerchant(t, "owner@acme.test")
	merchant, err := f.merchantRepo.GetByID(context.Background(), *result.User.MerchantID)
	require.NoError(t, err)
	assert.False(t, merchant.IsApproved)
	assert.True(t, merchant.IsActive)
}

func TestRegisterMerchantDuplicateEmailLeavesNoTenantBehind(t *testing.T) {
	f := newAuthFixture(t)

	f.registerMerchant(t, "owner@acme.test")

	_, err := f.svc.RegisterMerchant(context.Background(), domain.RegisterRequest{
		Email:        "owner@acme.test",
		Password:     "hunter2hunter2",
		Name:         "Impostor",
		BusinessName: "Acme Clone",
	})
	require.ErrorIs(t, err, domain.ErrDuplicate)

	_, total, err := f.merchantRepo.List(context.Background(), repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.registerMerchant(t, "owner@acme.test")

	result, err := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@acme.test",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	require.NotNil(t, result.User.LastLogin)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.registerMerchant(t, "owner@acme.test")

	// Wrong password and unknown account produce the identical error
	_, wrongPass := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@acme.test",
		Password: "wrong",
	})
	_, unknown := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@acme.test",
		Password: "hunter2hunter2",
	})

	assert.ErrorIs(t, wrongPass, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestRegisterCustomerRequiresApprovedMerchant(t *testing.T) {
	f := newAuthFixture(t)
	result := f.registerMerchant(t, "owner@acme.test")

	req := domain.RegisterCustomerRequest{
		Email:      "buyer@example.com",
		Password:   "buyerpass1",
		Name:       "Buyer",
		MerchantID: result.User.MerchantID.String(),
	}

	_, err := f.svc.RegisterCustomer(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Approve and retry
	merchant, err := f.merchantRepo.GetByID(context.Background(), *result.User.MerchantID)
	require.NoError(t, err)
	merchant.IsApproved = true
	require.NoError(t, f.merchantRepo.Update(context.Background(), merchant))

	customerResult, err := f.svc.RegisterCustomer(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, customerResult.User.Role)
	require.NotNil(t, customerResult.User.CustomerID)
	assert.Equal(t, *result.User.MerchantID, *customerResult.User.MerchantID)
}

func TestRegisterCustomerUnknownMerchant(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.RegisterCustomer(context.Background(), domain.RegisterCustomerRequest{
		Email:      "buyer@example.com",
		Password:   "buyerpass1",
		Name:       "Buyer",
		MerchantID: "not-a-uuid",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
