package entity

import (
	"context"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
)

// Catalog is the base type for reference data (parties, products, currencies).
// All reference data lives in a shared schema and is scoped by company.
type Catalog struct {
	BaseCatalog

	// CompanyID scopes the record to a single company
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// Code is a human-readable identifier (unique within a company)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(companyID id.ID, code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		CompanyID:   companyID,
		Code:        code,
		Name:        name,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if id.IsNil(c.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	// Code can be auto-generated, so it is optional at creation
	// but required at save time

	return nil
}

// GetID returns the entity ID.
func (c *Catalog) GetID() id.ID {
	return c.ID
}

// GetCompanyID returns the owning company.
func (c *Catalog) GetCompanyID() id.ID {
	return c.CompanyID
}
