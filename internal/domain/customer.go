package domain

import (
	"time"

	"github.com/google/uuid"
)

// CustomerStatus is the lifecycle status of a customer
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusInactive  CustomerStatus = "inactive"
	CustomerStatusCancelled CustomerStatus = "cancelled"
)

// Customer belongs to exactly one merchant. TotalSpent is an aggregate
// counter maintained by invoice side effects.
type Customer struct {
	ID         uuid.UUID      `json:"id"`
	MerchantID uuid.UUID      `json:"merchant_id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone,omitempty"`
	Status     CustomerStatus `json:"status"`
	TotalSpent float64        `json:"total_spent"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CustomerRequest is the payload for creating a customer
type CustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone,omitempty"`
}
