package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `
	id, email, password_hash, name, role, merchant_id, customer_id,
	is_active, last_login, created_at, updated_at`

// uniqueViolation is the PostgreSQL error code for duplicate keys
const uniqueViolation = "23505"

// UserRepository is the PostgreSQL identity store
type UserRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewUserRepository creates a PostgreSQL user repository
func NewUserRepository(pool *pgxpool.Pool, log *logger.Logger) *UserRepository {
	return &UserRepository{pool: pool, log: log}
}

// Create inserts a new user; a duplicate email maps to ErrDuplicate
func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, strings.ToLower(user.Email), user.PasswordHash, user.Name, user.Role,
		user.MerchantID, user.CustomerID, user.IsActive, user.LastLogin,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.User{}, domain.NewDuplicateError("user", "email", user.Email)
		}
		r.log.Errorw("Failed to insert user", "error", err, "userID", user.ID)
		return domain.User{}, fmt.Errorf("repository: failed to create user: %w", err)
	}

	return user, nil
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUserRow(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail returns a user by email, case-insensitive
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUserRow(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

// Update overwrites an existing user
func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, role = $4,
		    merchant_id = $5, customer_id = $6, is_active = $7,
		    last_login = $8, updated_at = NOW()
		WHERE id = $9`

	tag, err := r.pool.Exec(ctx, query,
		strings.ToLower(user.Email), user.PasswordHash, user.Name, user.Role,
		user.MerchantID, user.CustomerID, user.IsActive, user.LastLogin, user.ID,
	)
	if err != nil {
		r.log.Errorw("Failed to update user", "error", err, "userID", user.ID)
		return fmt.Errorf("repository: failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *UserRepository) scanUserRow(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role,
		&user.MerchantID, &user.CustomerID, &user.IsActive, &user.LastLogin,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("repository: failed to scan user: %w", err)
	}
	return user, nil
}
