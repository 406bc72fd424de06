package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/internal/repository"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const subscriptionColumns = `
	id, customer_id, product_id, merchant_id, status, amount, currency,
	billing_cycle, start_date, end_date, next_billing_date, trial_end_date,
	auto_renew, notes, version, created_at, updated_at`

// SubscriptionRepository is the PostgreSQL subscription store
type SubscriptionRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewSubscriptionRepository creates a PostgreSQL subscription repository
func NewSubscriptionRepository(pool *pgxpool.Pool, log *logger.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool, log: log}
}

// Create inserts a new subscription
func (r *SubscriptionRepository) Create(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.pool.Exec(ctx, query,
		sub.ID, sub.CustomerID, sub.ProductID, sub.MerchantID, sub.Status,
		sub.Amount, sub.Currency, sub.BillingCycle, sub.StartDate, sub.EndDate,
		sub.NextBillingDate, sub.TrialEndDate, sub.AutoRenew, sub.Notes,
		sub.Version, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		r.log.Errorw("Failed to insert subscription", "error", err, "subscriptionID", sub.ID)
		return domain.Subscription{}, fmt.Errorf("repository: failed to create subscription: %w", err)
	}

	return sub, nil
}

// GetByID returns a subscription by ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	sub, err := scanSubscription(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Subscription{}, domain.ErrNotFound
		}
		r.log.Errorw("Failed to get subscription", "error", err, "subscriptionID", id)
		return domain.Subscription{}, fmt.Errorf("repository: failed to get subscription: %w", err)
	}

	return sub, nil
}

// List returns a filtered page sorted by created_at descending plus the
// total match count
func (r *SubscriptionRepository) List(ctx context.Context, filter repository.SubscriptionFilter, opts repository.ListOptions) ([]domain.Subscription, int, error) {
	opts = opts.Normalize()
	where, args := buildSubscriptionWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM subscriptions` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count subscriptions: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM subscriptions%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		subscriptionColumns, where, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	subs, err := r.querySubscriptions(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

// ListAll returns every subscription matching the filter, newest first
func (r *SubscriptionRepository) ListAll(ctx context.Context, filter repository.SubscriptionFilter) ([]domain.Subscription, error) {
	where, args := buildSubscriptionWhere(filter)
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions` + where + ` ORDER BY created_at DESC`
	return r.querySubscriptions(ctx, query, args...)
}

// Update applies a version-guarded write. Zero affected rows with an
// existing record means another transition won the race.
func (r *SubscriptionRepository) Update(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	query := `
		UPDATE subscriptions
		SET status = $1, amount = $2, end_date = $3, next_billing_date = $4,
		    trial_end_date = $5, auto_renew = $6, notes = $7,
		    version = version + 1, updated_at = NOW()
		WHERE id = $8 AND version = $9
		RETURNING ` + subscriptionColumns

	updated, err := scanSubscription(r.pool.QueryRow(ctx, query,
		sub.Status, sub.Amount, sub.EndDate, sub.NextBillingDate,
		sub.TrialEndDate, sub.AutoRenew, sub.Notes,
		sub.ID, sub.Version,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.log.Errorw("Failed to update subscription", "error", err, "subscriptionID", sub.ID)
		return domain.Subscription{}, fmt.Errorf("repository: failed to update subscription: %w", err)
	}

	// Distinguish a lost race from a missing record
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE id = $1)`, sub.ID).Scan(&exists); err != nil {
		return domain.Subscription{}, fmt.Errorf("repository: failed to check subscription existence: %w", err)
	}
	if exists {
		r.log.Warnw("Subscription update lost a version race", "subscriptionID", sub.ID, "version", sub.Version)
		return domain.Subscription{}, domain.ErrConflict
	}
	return domain.Subscription{}, domain.ErrNotFound
}

// Delete removes a subscription (administrative hard delete)
func (r *SubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		r.log.Errorw("Failed to delete subscription", "error", err, "subscriptionID", id)
		return fmt.Errorf("repository: failed to delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByProductID counts subscriptions referencing a product
func (r *SubscriptionRepository) CountByProductID(ctx context.Context, productID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE product_id = $1`, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count subscriptions by product: %w", err)
	}
	return count, nil
}

func (r *SubscriptionRepository) querySubscriptions(ctx context.Context, query string, args ...any) ([]domain.Subscription, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

func buildSubscriptionWhere(filter repository.SubscriptionFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if filter.MerchantID != nil {
		args = append(args, *filter.MerchantID)
		clauses = append(clauses, fmt.Sprintf("merchant_id = $%d", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}

	where := " WHERE " + clauses[0]
	for _, clause := range clauses[1:] {
		where += " AND " + clause
	}
	return where, args
}

func scanSubscription(row pgx.Row) (domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(
		&sub.ID, &sub.CustomerID, &sub.ProductID, &sub.MerchantID, &sub.Status,
		&sub.Amount, &sub.Currency, &sub.BillingCycle, &sub.StartDate, &sub.EndDate,
		&sub.NextBillingDate, &sub.TrialEndDate, &sub.AutoRenew, &sub.Notes,
		&sub.Version, &sub.CreatedAt, &sub.UpdatedAt,
	)
	return sub, err
}
