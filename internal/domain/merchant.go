package domain

import (
	"time"

	"github.com/google/uuid"
)

// BillingSettings holds per-merchant billing defaults
type BillingSettings struct {
	Currency    string `json:"currency"`
	AutoBilling bool   `json:"auto_billing"`
}

// Merchant is the tenant root: every customer, product, subscription
// and non-admin user belongs to exactly one merchant.
type Merchant struct {
	ID            uuid.UUID       `json:"id"`
	BusinessName  string          `json:"business_name"`
	BusinessEmail string          `json:"business_email"`
	BusinessPhone string          `json:"business_phone,omitempty"`
	IsApproved    bool            `json:"is_approved"`
	IsActive      bool            `json:"is_active"`
	Billing       BillingSettings `json:"billing"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MerchantRequest is the payload for merchant registration
type MerchantRequest struct {
	BusinessName  string `json:"business_name" binding:"required"`
	BusinessEmail string `json:"business_email" binding:"required,email"`
	BusinessPhone string `json:"business_phone,omitempty"`
	Currency      string `json:"currency,omitempty"`
}
