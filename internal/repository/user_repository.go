package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/subzcrib/billing-platform/internal/domain"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/google/uuid"
)

// InMemoryUserRepository is a map-backed identity store
type InMemoryUserRepository struct {
	users   map[uuid.UUID]domain.User
	byEmail map[string]uuid.UUID
	mutex   sync.RWMutex
	log     *logger.Logger
}

// NewInMemoryUserRepository creates an in-memory user repository
func NewInMemoryUserRepository(log *logger.Logger) *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:   make(map[uuid.UUID]domain.User),
		byEmail: make(map[string]uuid.UUID),
		log:     log,
	}
}

// Create stores a new user; email is globally unique
func (r *InMemoryUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return domain.User{}, domain.NewDuplicateError("user", "email", user.Email)
	}

	r.users[user.ID] = user
	r.byEmail[key] = user.ID
	return user, nil
}

// GetByID returns a user by ID
func (r *InMemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return domain.User{}, domain.ErrNotFound
	}

	return user, nil
}

// GetByEmail returns a user by email, case-insensitive
func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	id, exists := r.byEmail[strings.ToLower(email)]
	if !exists {
		return domain.User{}, domain.ErrNotFound
	}

	return r.users[id], nil
}

// Update overwrites an existing user
func (r *InMemoryUserRepository) Update(ctx context.Context, user domain.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	current, exists := r.users[user.ID]
	if !exists {
		return domain.ErrNotFound
	}

	if !strings.EqualFold(current.Email, user.Email) {
		delete(r.byEmail, strings.ToLower(current.Email))
		r.byEmail[strings.ToLower(user.Email)] = user.ID
	}

	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}
