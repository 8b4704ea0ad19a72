package party

import (
	"context"

	"salescore/internal/core/scope"
	"salescore/internal/domain"
)

// Repository defines the interface for Party persistence.
type Repository interface {
	domain.CatalogRepository[*Party]

	// FindByTaxNumber retrieves a party by tax number (unique within a company).
	FindByTaxNumber(ctx context.Context, sc scope.Scope, taxNumber string) (*Party, error)
}
