package service

import (
	"context"
	"io"
	"testing"

	"github.com/subzcrib/billing-platform/internal/auth"
	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/repository"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomerFixture(t *testing.T) (CustomerService, repository.CustomerRepository) {
	t.Helper()

	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)

	customerRepo := repository.NewInMemoryCustomerRepository(log)
	svc := NewCustomerService(customerRepo, auth.NewGate(), log)
	return svc, customerRepo
}

func TestCustomerListScopedToCallerMerchant(t *testing.T) {
	svc, customerRepo := newCustomerFixture(t)

	merchantA := uuid.New()
	merchantB := uuid.New()
	seedCustomer(t, customerRepo, merchantA, "a1@example.com")
	seedCustomer(t, customerRepo, merchantA, "a2@example.com")
	seedCustomer(t, customerRepo, merchantB, "b1@example.com")

	merchant := &auth.Identity{UserID: uuid.New(), Role: domain.RoleMerchant, MerchantID: &merchantA}
	customers, total, err := svc.List(context.Background(), merchant, repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, c := range customers {
		assert.Equal(t, merchantA, c.MerchantID)
	}
}

func TestCustomerListUnscopedForAdmin(t *testing.T) {
	svc, customerRepo := newCustomerFixture(t)

	seedCustomer(t, customerRepo, uuid.New(), "a1@example.com")
	seedCustomer(t, customerRepo, uuid.New(), "b1@example.com")

	admin := &auth.Identity{UserID: uuid.New(), Role: domain.RolePortalAdmin}
	_, total, err := svc.List(context.Background(), admin, repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestCustomerListDeniedForCustomers(t *testing.T) {
	svc, _ := newCustomerFixture(t)

	merchantID := uuid.New()
	customerID := uuid.New()
	caller := &auth.Identity{UserID: uuid.New(), Role: domain.RoleCustomer, MerchantID: &merchantID, CustomerID: &customerID}

	_, _, err := svc.List(context.Background(), caller, repository.ListOptions{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
