package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Order lifecycle statuses.
const (
	OrderStatusDraft          = "draft"
	OrderStatusPending        = "pending"
	OrderStatusPendingInvoice = "pending_invoice"
	OrderStatusPaid           = "paid"
	OrderStatusFailed         = "failed"
	OrderStatusCancelled      = "cancelled"
	OrderStatusAbandoned      = "abandoned"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCard    = "card"
	PaymentMethodInvoice = "invoice"
)

// Participant is one seat on an order.
type Participant struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	JobPosition string `json:"job_position,omitempty"`
}

// Address is the billing address on an order. Draft field updates merge
// into it sub-field by sub-field rather than replacing it wholesale.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

// Order is a registration order. It starts as a session-scoped draft (cart)
// and is transitioned to pending/pending_invoice at checkout. Only paid and
// pending orders count toward committed participants for early-bird capacity.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	SessionID     string          `json:"session_id"`
	Status        string          `json:"status"`
	EventSlug     string          `json:"event_slug"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	Quantity      int             `json:"quantity"`
	Currency      string          `json:"currency"`
	TotalAmount   float64         `json:"total_amount"`
	FirstName     string          `json:"first_name,omitempty"`
	LastName      string          `json:"last_name,omitempty"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Company       string          `json:"company,omitempty"`
	VATNumber     string          `json:"vat_number,omitempty"`
	Address       Address         `json:"address"`
	Participants  []Participant   `json:"participants"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CountsTowardCapacity reports whether the order's seats are committed for
// early-bird capacity purposes.
func (o *Order) CountsTowardCapacity() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusPending
}
