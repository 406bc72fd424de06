package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables this service owns when they do not
// exist yet. Production deployments run real migrations; this keeps
// local and test environments bootstrappable.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			merchant_id UUID,
			customer_id UUID,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			last_login TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			id UUID PRIMARY KEY,
			customer_id UUID NOT NULL,
			product_id UUID NOT NULL,
			merchant_id UUID NOT NULL,
			status TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			currency TEXT NOT NULL,
			billing_cycle TEXT NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ,
			next_billing_date TIMESTAMPTZ NOT NULL,
			trial_end_date TIMESTAMPTZ,
			auto_renew BOOLEAN NOT NULL DEFAULT TRUE,
			notes TEXT NOT NULL DEFAULT '',
			version BIGINT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_merchant ON subscriptions (merchant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_customer ON subscriptions (customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_status ON subscriptions (status)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_next_billing ON subscriptions (next_billing_date)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	return nil
}
