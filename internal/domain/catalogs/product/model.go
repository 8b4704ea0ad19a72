// Package product provides the Product catalog. Products represent the
// goods and services sold through quotes, orders and invoices.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"salescore/internal/core/apperror"
	"salescore/internal/core/entity"
	"salescore/internal/core/id"
	"salescore/internal/core/types"
)

// ProductType defines the type of item.
type ProductType string

const (
	TypeGoods   ProductType = "goods"
	TypeService ProductType = "service"
	TypeDigital ProductType = "digital"
)

// Product represents a sellable item.
type Product struct {
	entity.Catalog

	// Type defines item category
	Type ProductType `db:"type" json:"type"`

	// SKU is the stock keeping unit (unique within a company)
	SKU *string `db:"sku" json:"sku,omitempty"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// UnitPrice is the default selling price
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// TaxRate is the default tax percentage applied on document lines
	TaxRate decimal.Decimal `db:"tax_rate" json:"taxRate"`

	// Unit is the unit of measure (e.g., "pcs", "hour", "kg")
	Unit string `db:"unit" json:"unit"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`

	// IsActive controls whether the product can be added to new documents
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(companyID id.ID, code, name string, productType ProductType) *Product {
	return &Product{
		Catalog:  entity.NewCatalog(companyID, code, name),
		Type:     productType,
		Unit:     "pcs",
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidProductType(p.Type) {
		return apperror.NewValidation("invalid product type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}

	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.NewValidation("tax rate must be between 0 and 100").
			WithDetail("field", "taxRate")
	}

	return nil
}

func isValidProductType(t ProductType) bool {
	switch t {
	case TypeGoods, TypeService, TypeDigital:
		return true
	}
	return false
}
