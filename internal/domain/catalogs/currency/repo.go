package currency

import (
	"context"

	"salescore/internal/core/scope"
	"salescore/internal/domain"
)

// Repository defines the interface for Currency persistence.
type Repository interface {
	domain.CatalogRepository[*Currency]

	// FindByISOCode retrieves a currency by ISO 4217 code.
	FindByISOCode(ctx context.Context, sc scope.Scope, isoCode string) (*Currency, error)

	// GetBase retrieves the company's base currency.
	GetBase(ctx context.Context, sc scope.Scope) (*Currency, error)
}
