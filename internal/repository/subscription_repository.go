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

// InMemorySubscriptionRepository is a map-backed subscription store.
// The RWMutex gives the same last-consistent-transition-wins behavior
// as the Postgres version: Update only applies when the caller holds
// the current version.
type InMemorySubscriptionRepository struct {
	subscriptions map[uuid.UUID]domain.Subscription
	mutex         sync.RWMutex
	log           *logger.Logger
}

// NewInMemorySubscriptionRepository creates an in-memory subscription repository
func NewInMemorySubscriptionRepository(log *logger.Logger) *InMemorySubscriptionRepository {
	return &InMemorySubscriptionRepository{
		subscriptions: make(map[uuid.UUID]domain.Subscription),
		log:           log,
	}
}

// Create stores a new subscription
func (r *InMemorySubscriptionRepository) Create(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.subscriptions[sub.ID]; exists {
		return domain.Subscription{}, domain.NewDuplicateError("subscription", "id", sub.ID.String())
	}

	if sub.Version == 0 {
		sub.Version = 1
	}
	r.subscriptions[sub.ID] = sub

	return sub, nil
}

// GetByID returns a subscription by ID
func (r *InMemorySubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Subscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sub, exists := r.subscriptions[id]
	if !exists {
		return domain.Subscription{}, domain.ErrNotFound
	}

	return sub, nil
}

// List returns a filtered page of subscriptions sorted by createdAt
// descending, plus the total match count
func (r *InMemorySubscriptionRepository) List(ctx context.Context, filter SubscriptionFilter, opts ListOptions) ([]domain.Subscription, int, error) {
	matches, err := r.ListAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts = opts.Normalize()
	total := len(matches)

	start := opts.Offset()
	if start >= total {
		return []domain.Subscription{}, total, nil
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return matches[start:end], total, nil
}

// ListAll returns every subscription matching the filter, newest first
func (r *InMemorySubscriptionRepository) ListAll(ctx context.Context, filter SubscriptionFilter) ([]domain.Subscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	matches := make([]domain.Subscription, 0, len(r.subscriptions))
	for _, sub := range r.subscriptions {
		if filter.Matches(sub) {
			matches = append(matches, sub)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	return matches, nil
}

// Update applies a subscription write if and only if the stored version
// matches the caller's. A mismatch means another transition won the
// race and the caller gets domain.ErrConflict.
func (r *InMemorySubscriptionRepository) Update(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	current, exists := r.subscriptions[sub.ID]
	if !exists {
		return domain.Subscription{}, domain.ErrNotFound
	}

	if current.Version != sub.Version {
		r.log.Warnw("Subscription update lost a version race",
			"subscriptionID", sub.ID, "expected", sub.Version, "actual", current.Version)
		return domain.Subscription{}, domain.ErrConflict
	}

	sub.Version++
	sub.UpdatedAt = time.Now()
	r.subscriptions[sub.ID] = sub

	return sub, nil
}

// Delete removes a subscription. This is the administrative hard
// delete, distinct from the cancel transition.
func (r *InMemorySubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.subscriptions[id]; !exists {
		return domain.ErrNotFound
	}

	delete(r.subscriptions, id)
	return nil
}

// CountByProductID counts subscriptions referencing a product
func (r *InMemorySubscriptionRepository) CountByProductID(ctx context.Context, productID uuid.UUID) (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	count := 0
	for _, sub := range r.subscriptions {
		if sub.ProductID == productID {
			count++
		}
	}

	return count, nil
}
