package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus is the catalog status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusArchived ProductStatus = "archived"
)

// Product is a sellable item with a recurring price. The billing cycle
// becomes immutable once any subscription references the product.
type Product struct {
	ID           uuid.UUID     `json:"id"`
	MerchantID   uuid.UUID     `json:"merchant_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Price        float64       `json:"price"`
	Currency     string        `json:"currency"`
	BillingCycle BillingCycle  `json:"billing_cycle"`
	TrialDays    int           `json:"trial_days,omitempty"`
	Status       ProductStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ProductRequest is the payload for creating or updating a product
type ProductRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price" binding:"required,gte=0"`
	Currency     string  `json:"currency,omitempty"`
	BillingCycle string  `json:"billing_cycle" binding:"required"`
	TrialDays    int     `json:"trial_days,omitempty"`
}
