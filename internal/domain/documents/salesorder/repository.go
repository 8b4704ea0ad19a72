package salesorder

import (
	"context"
	"time"

	"salescore/internal/core/id"
	"salescore/internal/core/scope"
	"salescore/internal/domain"
)

// Repository defines operations for sales order documents.
type Repository interface {
	Create(ctx context.Context, sc scope.Scope, doc *SalesOrder) error
	GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesOrder, error)
	GetByNumber(ctx context.Context, sc scope.Scope, number string) (*SalesOrder, error)
	Update(ctx context.Context, sc scope.Scope, doc *SalesOrder) error

	// GetForUpdate retrieves an order with a row lock.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, sc scope.Scope, docID id.ID) (*SalesOrder, error)

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*SalesOrder], error)
}

// ListFilter for filtering sales orders.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	Status     *Status
	QuoteID    *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
}
