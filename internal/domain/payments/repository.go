package payments

import (
	"context"
	"time"

	"salescore/internal/core/id"
	"salescore/internal/core/scope"
	"salescore/internal/domain"
)

// Repository defines operations for customer payments.
type Repository interface {
	Create(ctx context.Context, sc scope.Scope, payment *CustomerPayment) error
	GetByID(ctx context.Context, sc scope.Scope, paymentID id.ID) (*CustomerPayment, error)

	// ListByInvoice returns all payments applied to an invoice,
	// oldest first.
	ListByInvoice(ctx context.Context, sc scope.Scope, invoiceID id.ID) ([]*CustomerPayment, error)

	List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*CustomerPayment], error)
}

// ListFilter for filtering payments.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	InvoiceID  *id.ID
	Method     *Method
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}
