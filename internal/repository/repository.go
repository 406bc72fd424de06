package repository

import (
	"context"

	"github.com/subzcrib/billing-platform/internal/domain"

	"github.com/google/uuid"
)

// ListOptions is the shared pagination contract: page/limit with
// createdAt-descending ordering.
type ListOptions struct {
	Page  int
	Limit int
}

// Normalize applies the defaults used across all list endpoints
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 10
	}
	return o
}

// Offset returns the number of records to skip
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// SubscriptionFilter narrows subscription queries. Nil/empty fields
// match everything; MerchantID is how tenant isolation reaches storage.
type SubscriptionFilter struct {
	MerchantID *uuid.UUID
	CustomerID *uuid.UUID
	Status     domain.SubscriptionStatus
}

// Matches reports whether a subscription passes the filter
func (f SubscriptionFilter) Matches(sub domain.Subscription) bool {
	if f.MerchantID != nil && sub.MerchantID != *f.MerchantID {
		return false
	}
	if f.CustomerID != nil && sub.CustomerID != *f.CustomerID {
		return false
	}
	if f.Status != "" && sub.Status != f.Status {
		return false
	}
	return true
}

// SubscriptionRepository is the persistence contract for subscriptions.
// Update is a compare-and-swap on Version: a stale version returns
// domain.ErrConflict and the caller retries or surfaces the conflict.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Subscription, error)
	List(ctx context.Context, filter SubscriptionFilter, opts ListOptions) ([]domain.Subscription, int, error)
	ListAll(ctx context.Context, filter SubscriptionFilter) ([]domain.Subscription, error)
	Update(ctx context.Context, sub domain.Subscription) (domain.Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByProductID(ctx context.Context, productID uuid.UUID) (int, error)
}

// CustomerRepository is the persistence contract for customers
type CustomerRepository interface {
	Create(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	List(ctx context.Context, merchantID *uuid.UUID, opts ListOptions) ([]domain.Customer, int, error)
	ListAll(ctx context.Context) ([]domain.Customer, error)
	ListAllByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Customer, error)
	Update(ctx context.Context, customer domain.Customer) error
}

// ProductRepository is the persistence contract for products
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	List(ctx context.Context, merchantID *uuid.UUID, opts ListOptions) ([]domain.Product, int, error)
	Update(ctx context.Context, product domain.Product) error
}

// MerchantRepository is the persistence contract for merchants
type MerchantRepository interface {
	Create(ctx context.Context, merchant domain.Merchant) (domain.Merchant, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Merchant, error)
	List(ctx context.Context, opts ListOptions) ([]domain.Merchant, int, error)
	Update(ctx context.Context, merchant domain.Merchant) error
}

// InvoiceRepository is the persistence contract for invoices
type InvoiceRepository interface {
	Create(ctx context.Context, invoice domain.Invoice) (domain.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Invoice, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]domain.Invoice, error)
	ListAll(ctx context.Context) ([]domain.Invoice, error)
	Update(ctx context.Context, invoice domain.Invoice) error
}

// UserRepository is the persistence contract for identities
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, user domain.User) error
}
