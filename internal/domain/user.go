package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the caller's position in the three-tier hierarchy
type Role string

const (
	RolePortalAdmin Role = "PORTAL_ADMIN"
	RoleMerchant    Role = "MERCHANT"
	RoleCustomer    Role = "CUSTOMER"
)

// rank orders roles for coarse capability checks only. Tenant scoping
// is checked separately; the two must never be collapsed into one
// comparison.
func (r Role) rank() int {
	switch r {
	case RolePortalAdmin:
		return 3
	case RoleMerchant:
		return 2
	case RoleCustomer:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r outranks or equals other
func (r Role) AtLeast(other Role) bool {
	return r.rank() >= other.rank() && r.rank() > 0
}

// Valid reports whether the role is one of the enumerated values
func (r Role) Valid() bool {
	return r.rank() > 0
}

// User is an identity record. A MERCHANT user always carries MerchantID;
// a CUSTOMER user carries both MerchantID and CustomerID, and that
// customer must belong to that merchant. PORTAL_ADMIN carries neither.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	MerchantID   *uuid.UUID `json:"merchant_id,omitempty"`
	CustomerID   *uuid.UUID `json:"customer_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Validate enforces the role/tenant invariants
func (u *User) Validate() error {
	var errs ValidationErrors

	if !u.Role.Valid() {
		errs.Add("role", "unknown role")
	}
	switch u.Role {
	case RoleMerchant:
		if u.MerchantID == nil {
			errs.Add("merchant_id", "required for merchant users")
		}
	case RoleCustomer:
		if u.MerchantID == nil {
			errs.Add("merchant_id", "required for customer users")
		}
		if u.CustomerID == nil {
			errs.Add("customer_id", "required for customer users")
		}
	case RolePortalAdmin:
		if u.MerchantID != nil || u.CustomerID != nil {
			errs.Add("role", "portal admins carry no tenant scope")
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// LoginRequest is the payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the payload for merchant signup
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Name         string `json:"name" binding:"required"`
	BusinessName string `json:"business_name" binding:"required"`
}

// RegisterCustomerRequest is the payload for customer signup under a merchant
type RegisterCustomerRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Name       string `json:"name" binding:"required"`
	MerchantID string `json:"merchant_id" binding:"required"`
}
