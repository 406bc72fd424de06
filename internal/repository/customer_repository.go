package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/google/uuid"
)

// InMemoryCustomerRepository is a map-backed customer store
type InMemoryCustomerRepository struct {
	customers map[uuid.UUID]domain.Customer
	mutex     sync.RWMutex
	log       *logger.Logger
}

// NewInMemoryCustomerRepository creates an in-memory customer repository
func NewInMemoryCustomerRepository(log *logger.Logger) *InMemoryCustomerRepository {
	return &InMemoryCustomerRepository{
		customers: make(map[uuid.UUID]domain.Customer),
		log:       log,
	}
}

// Create stores a new customer; email is unique within a merchant
func (r *InMemoryCustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, existing := range r.customers {
		if existing.MerchantID == customer.MerchantID && strings.EqualFold(existing.Email, customer.Email) {
			return domain.Customer{}, domain.NewDuplicateError("customer", "email", customer.Email)
		}
	}

	r.customers[customer.ID] = customer
	return customer, nil
}

// GetByID returns a customer by ID
func (r *InMemoryCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	customer, exists := r.customers[id]
	if !exists {
		return domain.Customer{}, domain.ErrNotFound
	}

	return customer, nil
}

// List returns a page of customers, newest first. A nil merchantID
// lists across every merchant.
func (r *InMemoryCustomerRepository) List(ctx context.Context, merchantID *uuid.UUID, opts ListOptions) ([]domain.Customer, int, error) {
	var matches []domain.Customer
	var err error
	if merchantID != nil {
		matches, err = r.ListAllByMerchant(ctx, *merchantID)
	} else {
		matches, err = r.ListAll(ctx)
	}
	if err != nil {
		return nil, 0, err
	}

	opts = opts.Normalize()
	total := len(matches)

	start := opts.Offset()
	if start >= total {
		return []domain.Customer{}, total, nil
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return matches[start:end], total, nil
}

// ListAll returns every customer on the platform, newest first
func (r *InMemoryCustomerRepository) ListAll(ctx context.Context) ([]domain.Customer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	matches := make([]domain.Customer, 0, len(r.customers))
	for _, customer := range r.customers {
		matches = append(matches, customer)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	return matches, nil
}

// ListAllByMerchant returns every customer of the merchant, newest first
func (r *InMemoryCustomerRepository) ListAllByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Customer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	matches := make([]domain.Customer, 0)
	for _, customer := range r.customers {
		if customer.MerchantID == merchantID {
			matches = append(matches, customer)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	return matches, nil
}

// Update overwrites an existing customer
func (r *InMemoryCustomerRepository) Update(ctx context.Context, customer domain.Customer) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.customers[customer.ID]; !exists {
		return domain.ErrNotFound
	}

	customer.UpdatedAt = time.Now()
	r.customers[customer.ID] = customer
	return nil
}
