package product

import (
	"context"

	"salescore/internal/core/scope"
	"salescore/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindBySKU retrieves a product by SKU (unique within a company).
	FindBySKU(ctx context.Context, sc scope.Scope, sku string) (*Product, error)
}
