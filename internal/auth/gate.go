package auth

import (
	"github.com/google/uuid"

	"github.com/subzcrib/billing-platform/internal/domain"
)

// Action names an operation for authorization purposes
type Action string

const (
	ActionReadMerchant       Action = "merchant.read"
	ActionManageMerchant     Action = "merchant.manage"
	ActionReadCustomer       Action = "customer.read"
	ActionManageCustomer     Action = "customer.manage"
	ActionReadProducts       Action = "product.read"
	ActionManageProducts     Action = "product.manage"
	ActionReadSubscription   Action = "subscription.read"
	ActionWriteSubscription  Action = "subscription.write"
	ActionDeleteSubscription Action = "subscription.delete"
	ActionReadAnalytics      Action = "analytics.read"
)

// merchantSharedRead lists actions a customer may perform against their
// own merchant's scope, e.g. browsing that merchant's product catalog.
var merchantSharedRead = map[Action]bool{
	ActionReadProducts: true,
	ActionReadMerchant: true,
}

// Scope identifies the tenant data an operation targets
type Scope struct {
	MerchantID *uuid.UUID
	CustomerID *uuid.UUID
}

// MerchantScope builds a scope targeting one merchant
func MerchantScope(merchantID uuid.UUID) Scope {
	return Scope{MerchantID: &merchantID}
}

// CustomerScope builds a scope targeting one customer under a merchant
func CustomerScope(merchantID, customerID uuid.UUID) Scope {
	return Scope{MerchantID: &merchantID, CustomerID: &customerID}
}

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Reason  error
}

// Allow is the positive decision
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny carries the typed refusal reason
func Deny(reason error) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Gate decides whether a caller may perform an action on a scope.
//
// The role hierarchy (PORTAL_ADMIN > MERCHANT > CUSTOMER) covers coarse
// capability checks only; tenant scoping is a separate equality check.
// A merchant outranks a customer but still cannot touch another
// merchant's data, so the two rules are never collapsed into one rank
// comparison.
type Gate struct{}

// NewGate creates an access control gate
func NewGate() *Gate {
	return &Gate{}
}

// Authorize evaluates the rules in precedence order
func (g *Gate) Authorize(caller *Identity, action Action, scope Scope) Decision {
	// 1. No valid identity
	if caller == nil || !caller.Role.Valid() {
		return Deny(domain.ErrUnauthenticated)
	}

	// 2. Portal admins see everything
	if caller.Role == domain.RolePortalAdmin {
		return Allow()
	}

	// 3. Merchants are confined to their own tenant
	if caller.Role == domain.RoleMerchant {
		if caller.MerchantID != nil && scope.MerchantID != nil && *caller.MerchantID == *scope.MerchantID {
			return Allow()
		}
		return Deny(domain.ErrForbidden)
	}

	// 4. Customers reach their own records, plus shared reads within
	// their merchant
	if caller.Role == domain.RoleCustomer {
		if caller.CustomerID != nil && scope.CustomerID != nil && *caller.CustomerID == *scope.CustomerID {
			return Allow()
		}
		if merchantSharedRead[action] &&
			caller.MerchantID != nil && scope.MerchantID != nil && *caller.MerchantID == *scope.MerchantID {
			return Allow()
		}
		return Deny(domain.ErrForbidden)
	}

	return Deny(domain.ErrForbidden)
}

// RequireRole is the coarse capability check: is the caller at least
// this role. It never grants tenant scope on its own.
func (g *Gate) RequireRole(caller *Identity, minimum domain.Role) Decision {
	if caller == nil || !caller.Role.Valid() {
		return Deny(domain.ErrUnauthenticated)
	}
	if !caller.Role.AtLeast(minimum) {
		return Deny(domain.ErrForbidden)
	}
	return Allow()
}
