package repository

import (
	"context"

	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/google/uuid"
)

// CachedSubscriptionRepository decorates a SubscriptionRepository with
// Redis read-through caching on single-record reads. Writes pass
// through and invalidate, so the version check always runs against the
// store of record.
type CachedSubscriptionRepository struct {
	repo  SubscriptionRepository
	cache *RedisCacheRepository
	log   *logger.Logger
}

// NewCachedSubscriptionRepository wraps repo with caching
func NewCachedSubscriptionRepository(repo SubscriptionRepository, cache *RedisCacheRepository, log *logger.Logger) SubscriptionRepository {
	return &CachedSubscriptionRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create writes through and primes the cache
func (r *CachedSubscriptionRepository) Create(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	created, err := r.repo.Create(ctx, sub)
	if err != nil {
		return domain.Subscription{}, err
	}

	if err := r.cache.CacheSubscription(ctx, created); err != nil {
		r.log.Warnw("Failed to cache subscription after create", "error", err, "subscriptionID", created.ID)
	}

	return created, nil
}

// GetByID checks the cache before the store of record
func (r *CachedSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Subscription, error) {
	cached, err := r.cache.GetCachedSubscription(ctx, id.String())
	if err != nil {
		r.log.Warnw("Error reading subscription cache", "error", err, "subscriptionID", id)
	}
	if cached != nil {
		return *cached, nil
	}

	sub, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}

	if err := r.cache.CacheSubscription(ctx, sub); err != nil {
		r.log.Warnw("Failed to cache subscription after fetch", "error", err, "subscriptionID", id)
	}

	return sub, nil
}

// List is not cached; pages are cheap and filters vary widely
func (r *CachedSubscriptionRepository) List(ctx context.Context, filter SubscriptionFilter, opts ListOptions) ([]domain.Subscription, int, error) {
	return r.repo.List(ctx, filter, opts)
}

// ListAll is not cached for the same reason as List
func (r *CachedSubscriptionRepository) ListAll(ctx context.Context, filter SubscriptionFilter) ([]domain.Subscription, error) {
	return r.repo.ListAll(ctx, filter)
}

// Update passes the version check through and refreshes the cache
func (r *CachedSubscriptionRepository) Update(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	updated, err := r.repo.Update(ctx, sub)
	if err != nil {
		return domain.Subscription{}, err
	}

	if err := r.cache.CacheSubscription(ctx, updated); err != nil {
		r.log.Warnw("Failed to refresh subscription cache after update", "error", err, "subscriptionID", updated.ID)
	}

	return updated, nil
}

// Delete passes through and drops the cached record
func (r *CachedSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := r.cache.DeleteCachedSubscription(ctx, id.String()); err != nil {
		r.log.Warnw("Failed to drop cached subscription after delete", "error", err, "subscriptionID", id)
	}

	return nil
}

// CountByProductID passes through
func (r *CachedSubscriptionRepository) CountByProductID(ctx context.Context, productID uuid.UUID) (int, error) {
	return r.repo.CountByProductID(ctx, productID)
}
