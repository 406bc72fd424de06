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

// InMemoryMerchantRepository is a map-backed merchant store
type InMemoryMerchantRepository struct {
	merchants map[uuid.UUID]domain.Merchant
	mutex     sync.RWMutex
	log       *logger.Logger
}

// NewInMemoryMerchantRepository creates an in-memory merchant repository
func NewInMemoryMerchantRepository(log *logger.Logger) *InMemoryMerchantRepository {
	return &InMemoryMerchantRepository{
		merchants: make(map[uuid.UUID]domain.Merchant),
		log:       log,
	}
}

// Create stores a new merchant; business email is unique
func (r *InMemoryMerchantRepository) Create(ctx context.Context, merchant domain.Merchant) (domain.Merchant, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, existing := range r.merchants {
		if strings.EqualFold(existing.BusinessEmail, merchant.BusinessEmail) {
			return domain.Merchant{}, domain.NewDuplicateError("merchant", "business_email", merchant.BusinessEmail)
		}
	}

	r.merchants[merchant.ID] = merchant
	return merchant, nil
}

// GetByID returns a merchant by ID
func (r *InMemoryMerchantRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Merchant, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	merchant, exists := r.merchants[id]
	if !exists {
		return domain.Merchant{}, domain.ErrNotFound
	}

	return merchant, nil
}

// List returns a page of merchants, newest first
func (r *InMemoryMerchantRepository) List(ctx context.Context, opts ListOptions) ([]domain.Merchant, int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	matches := make([]domain.Merchant, 0, len(r.merchants))
	for _, merchant := range r.merchants {
		matches = append(matches, merchant)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	opts = opts.Normalize()
	total := len(matches)

	start := opts.Offset()
	if start >= total {
		return []domain.Merchant{}, total, nil
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return matches[start:end], total, nil
}

// Update overwrites an existing merchant
func (r *InMemoryMerchantRepository) Update(ctx context.Context, merchant domain.Merchant) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.merchants[merchant.ID]; !exists {
		return domain.ErrNotFound
	}

	merchant.UpdatedAt = time.Now()
	r.merchants[merchant.ID] = merchant
	return nil
}
