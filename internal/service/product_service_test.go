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

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductFixture(t *testing.T) (ProductService, repository.ProductRepository) {
	t.Helper()

	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)

	productRepo := repository.NewInMemoryProductRepository(log)
	subscriptionRepo := repository.NewInMemorySubscriptionRepository(log)
	svc := NewProductService(productRepo, subscriptionRepo, auth.NewGate(), log)
	return svc, productRepo
}

func seedProduct(t *testing.T, repo repository.ProductRepository, merchantID uuid.UUID, name string) {
	t.Helper()

	_, err := repo.Create(context.Background(), domain.Product{
		ID:           uuid.New(),
		MerchantID:   merchantID,
		Name:         name,
		Price:        49,
		Currency:     "USD",
		BillingCycle: domain.BillingCycleMonthly,
		Status:       domain.ProductStatusActive,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
}

func TestProductListScopedToCallerMerchant(t *testing.T) {
	svc, productRepo := newProductFixture(t)

	merchantA := uuid.New()
	merchantB := uuid.New()
	seedProduct(t, productRepo, merchantA, "Basic")
	seedProduct(t, productRepo, merchantA, "Pro")
	seedProduct(t, productRepo, merchantB, "Other")

	merchant := &auth.Identity{UserID: uuid.New(), Role: domain.RoleMerchant, MerchantID: &merchantA}
	products, total, err := svc.List(context.Background(), merchant, repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, p := range products {
		assert.Equal(t, merchantA, p.MerchantID)
	}
}

func TestProductListUnscopedForAdmin(t *testing.T) {
	svc, productRepo := newProductFixture(t)

	seedProduct(t, productRepo, uuid.New(), "Basic")
	seedProduct(t, productRepo, uuid.New(), "Pro")

	admin := &auth.Identity{UserID: uuid.New(), Role: domain.RolePortalAdmin}
	_, total, err := svc.List(context.Background(), admin, repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestProductListReadableByCustomerOfSameMerchant(t *testing.T) {
	svc, productRepo := newProductFixture(t)

	merchantID := uuid.New()
	customerID := uuid.New()
	seedProduct(t, productRepo, merchantID, "Basic")
	seedProduct(t, productRepo, uuid.New(), "Other")

	caller := &auth.Identity{UserID: uuid.New(), Role: domain.RoleCustomer, MerchantID: &merchantID, CustomerID: &customerID}
	products, total, err := svc.List(context.Background(), caller, repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, merchantID, products[0].MerchantID)
}
