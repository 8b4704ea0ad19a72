package invoice

import (
	"context"
	"time"

	"salescore/internal/core/id"
	"salescore/internal/core/scope"
	"salescore/internal/domain"
)

// Repository defines operations for invoice documents.
type Repository interface {
	Create(ctx context.Context, sc scope.Scope, doc *SalesInvoice) error
	GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesInvoice, error)
	GetByNumber(ctx context.Context, sc scope.Scope, number string) (*SalesInvoice, error)
	Update(ctx context.Context, sc scope.Scope, doc *SalesInvoice) error

	// GetForUpdate retrieves an invoice with a row lock.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesInvoice, error)

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*SalesInvoice], error)

	// ListOverdueCandidates returns SENT/PARTIAL_PAID invoices with a due
	// date before asOf and a positive balance. Used by the overdue sweep.
	ListOverdueCandidates(ctx context.Context, sc scope.Scope, asOf time.Time, limit int) ([]*SalesInvoice, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	Status     *Status
	OrderID    *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
	DueBefore  *time.Time
}
