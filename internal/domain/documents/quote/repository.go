package quote

import (
	"context"
	"time"

	"salescore/internal/core/id"
	"salescore/internal/core/scope"
	"salescore/internal/domain"
)

// Repository defines operations for quote documents. Every method takes
// an explicit scope; implementations apply the company filter
// unconditionally.
type Repository interface {
	Create(ctx context.Context, sc scope.Scope, doc *Quote) error
	GetByID(ctx context.Context, sc scope.Scope, docID id.ID) (*Quote, error)
	GetByNumber(ctx context.Context, sc scope.Scope, number string) (*Quote, error)
	Update(ctx context.Context, sc scope.Scope, doc *Quote) error

	// GetForUpdate retrieves a quote with a row lock.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, sc scope.Scope, docID id.ID) (*Quote, error)

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, sc scope.Scope, filter ListFilter) (domain.ListResult[*Quote], error)

	// ListExpiring returns SENT quotes whose validity lapsed at or
	// before the given time. Used by the expiration sweep.
	ListExpiring(ctx context.Context, sc scope.Scope, asOf time.Time, limit int) ([]*Quote, error)
}

// ListFilter for filtering quotes.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}
