package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes per cached data kind
	subscriptionKeyPrefix = "subscription:"
	reportKeyPrefix       = "analytics:report:"

	// TTLs: reports age out fast, single records live longer
	subscriptionCacheTTL = 15 * time.Minute
	reportCacheTTL       = 2 * time.Minute
)

// RedisCacheRepository backs read-through caching with Redis. Cache
// failures are logged and absorbed; the store of record always wins.
type RedisCacheRepository struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCacheRepository connects to Redis and verifies the connection
func NewRedisCacheRepository(addr, password string, db int, log *logger.Logger) (*RedisCacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err, "addr", addr)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis", "addr", addr)
	return &RedisCacheRepository{client: client, log: log}, nil
}

// Close closes the Redis connection
func (r *RedisCacheRepository) Close() error {
	return r.client.Close()
}

// CacheSubscription stores a subscription snapshot
func (r *RedisCacheRepository) CacheSubscription(ctx context.Context, sub domain.Subscription) error {
	key := subscriptionKeyPrefix + sub.ID.String()

	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}

	if err := r.client.Set(ctx, key, data, subscriptionCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache subscription: %w", err)
	}

	return nil
}

// GetCachedSubscription returns a cached subscription or nil on a miss
func (r *RedisCacheRepository) GetCachedSubscription(ctx context.Context, id string) (*domain.Subscription, error) {
	data, err := r.client.Get(ctx, subscriptionKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription from cache: %w", err)
	}

	var sub domain.Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached subscription: %w", err)
	}

	return &sub, nil
}

// DeleteCachedSubscription drops a cached subscription
func (r *RedisCacheRepository) DeleteCachedSubscription(ctx context.Context, id string) error {
	return r.client.Del(ctx, subscriptionKeyPrefix+id).Err()
}

// CacheReport stores a serialized analytics report for a scope key
// ("global" or a merchant ID)
func (r *RedisCacheRepository) CacheReport(ctx context.Context, scope string, report any) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := r.client.Set(ctx, reportKeyPrefix+scope, data, reportCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}

	return nil
}

// GetCachedReport loads a cached analytics report into out; the bool
// reports a hit
func (r *RedisCacheRepository) GetCachedReport(ctx context.Context, scope string, out any) (bool, error) {
	data, err := r.client.Get(ctx, reportKeyPrefix+scope).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get report from cache: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}

	return true, nil
}

// InvalidateReports drops every cached report; called after any write
// that moves revenue or status counts
func (r *RedisCacheRepository) InvalidateReports(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, reportKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.log.Warnw("Failed to invalidate cached report", "key", iter.Val(), "error", err)
		}
	}
	return iter.Err()
}
