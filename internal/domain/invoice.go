package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus is the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceLineItem is a single billed position
type InvoiceLineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// Invoice is the billing record created when a subscription cycle fires.
// It is mutated to paid/overdue by the payment collaborator.
type Invoice struct {
	ID             uuid.UUID         `json:"id"`
	SubscriptionID uuid.UUID         `json:"subscription_id"`
	CustomerID     uuid.UUID         `json:"customer_id"`
	MerchantID     uuid.UUID         `json:"merchant_id"`
	Amount         float64           `json:"amount"`
	Currency       string            `json:"currency"`
	Status         InvoiceStatus     `json:"status"`
	DueDate        time.Time         `json:"due_date"`
	PaidDate       *time.Time        `json:"paid_date,omitempty"`
	LineItems      []InvoiceLineItem `json:"line_items,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
