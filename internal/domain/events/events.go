// Package events defines the domain events emitted by the sales document
// lifecycle and the publisher port the services depend on.
//
// Events are published transactionally through the outbox: the storage
// implementation stages them inside the same database transaction that
// commits the state change, and a relay delivers them afterwards.
package events

import (
	"context"
	"time"

	"salescore/internal/core/id"
	"salescore/internal/core/types"
)

// Event types, used as outbox routing keys.
const (
	TypeQuoteStatusChanged   = "sales.quote.status_changed"
	TypeQuoteConverted       = "sales.quote.converted"
	TypeOrderStatusChanged   = "sales.order.status_changed"
	TypeInvoiceStatusChanged = "sales.invoice.status_changed"
	TypeInvoiceOverdue       = "sales.invoice.overdue"
	TypePaymentApplied       = "sales.payment.applied"
)

// Event is implemented by all domain events.
type Event interface {
	// EventType returns the routing key for the event
	EventType() string
	// AggregateID returns the ID of the document the event is about
	AggregateID() id.ID
}

// Publisher stages events for delivery. Implementations must honor the
// ambient transaction on ctx so events commit atomically with the state
// change that produced them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// QuoteStatusChanged is emitted on every quote status transition.
type QuoteStatusChanged struct {
	QuoteID    id.ID     `json:"quoteId"`
	CompanyID  id.ID     `json:"companyId"`
	Number     string    `json:"number"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (e QuoteStatusChanged) EventType() string  { return TypeQuoteStatusChanged }
func (e QuoteStatusChanged) AggregateID() id.ID { return e.QuoteID }

// QuoteConverted is emitted when an accepted quote becomes a sales order.
type QuoteConverted struct {
	QuoteID    id.ID     `json:"quoteId"`
	OrderID    id.ID     `json:"orderId"`
	CompanyID  id.ID     `json:"companyId"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (e QuoteConverted) EventType() string  { return TypeQuoteConverted }
func (e QuoteConverted) AggregateID() id.ID { return e.QuoteID }

// OrderStatusChanged is emitted on every sales order status transition.
type OrderStatusChanged struct {
	OrderID    id.ID     `json:"orderId"`
	CompanyID  id.ID     `json:"companyId"`
	Number     string    `json:"number"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (e OrderStatusChanged) EventType() string  { return TypeOrderStatusChanged }
func (e OrderStatusChanged) AggregateID() id.ID { return e.OrderID }

// InvoiceStatusChanged is emitted on every invoice status transition,
// including payment-driven ones.
type InvoiceStatusChanged struct {
	InvoiceID  id.ID     `json:"invoiceId"`
	CompanyID  id.ID     `json:"companyId"`
	Number     string    `json:"number"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (e InvoiceStatusChanged) EventType() string  { return TypeInvoiceStatusChanged }
func (e InvoiceStatusChanged) AggregateID() id.ID { return e.InvoiceID }

// InvoiceOverdue is emitted by the overdue sweep, once per invoice that
// crossed its due date.
type InvoiceOverdue struct {
	InvoiceID  id.ID       `json:"invoiceId"`
	CompanyID  id.ID       `json:"companyId"`
	Number     string      `json:"number"`
	DueDate    time.Time   `json:"dueDate"`
	BalanceDue types.Money `json:"balanceDue"`
	OccurredAt time.Time   `json:"occurredAt"`
}

func (e InvoiceOverdue) EventType() string  { return TypeInvoiceOverdue }
func (e InvoiceOverdue) AggregateID() id.ID { return e.InvoiceID }

// PaymentApplied is emitted when a customer payment is applied to an invoice.
type PaymentApplied struct {
	PaymentID     id.ID       `json:"paymentId"`
	InvoiceID     id.ID       `json:"invoiceId"`
	CompanyID     id.ID       `json:"companyId"`
	Amount        types.Money `json:"amount"`
	BalanceDue    types.Money `json:"balanceDue"`
	InvoiceStatus string      `json:"invoiceStatus"`
	OccurredAt    time.Time   `json:"occurredAt"`
}

func (e PaymentApplied) EventType() string  { return TypePaymentApplied }
func (e PaymentApplied) AggregateID() id.ID { return e.PaymentID }
