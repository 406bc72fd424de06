package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/google/uuid"
)

// InMemoryProductRepository is a map-backed product store
type InMemoryProductRepository struct {
	products map[uuid.UUID]domain.Product
	mutex    sync.RWMutex
	log      *logger.Logger
}

// NewInMemoryProductRepository creates an in-memory product repository
func NewInMemoryProductRepository(log *logger.Logger) *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: make(map[uuid.UUID]domain.Product),
		log:      log,
	}
}

// Create stores a new product
func (r *InMemoryProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.products[product.ID] = product
	return product, nil
}

// GetByID returns a product by ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return domain.Product{}, domain.ErrNotFound
	}

	return product, nil
}

// List returns a page of products, newest first. A nil merchantID
// lists across every merchant.
func (r *InMemoryProductRepository) List(ctx context.Context, merchantID *uuid.UUID, opts ListOptions) ([]domain.Product, int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	matches := make([]domain.Product, 0)
	for _, product := range r.products {
		if merchantID != nil && product.MerchantID != *merchantID {
			continue
		}
		matches = append(matches, product)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	opts = opts.Normalize()
	total := len(matches)

	start := opts.Offset()
	if start >= total {
		return []domain.Product{}, total, nil
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return matches[start:end], total, nil
}

// Update overwrites an existing product
func (r *InMemoryProductRepository) Update(ctx context.Context, product domain.Product) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		return domain.ErrNotFound
	}

	product.UpdatedAt = time.Now()
	r.products[product.ID] = product
	return nil
}
