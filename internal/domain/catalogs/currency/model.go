// Package currency provides the Currency catalog. Currencies are the
// monetary units referenced by documents and payments.
package currency

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"

	"salescore/internal/core/apperror"
	"salescore/internal/core/entity"
	"salescore/internal/core/id"
)

var isoCodeRE = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency represents a monetary unit.
type Currency struct {
	entity.Catalog

	// ISOCode is the ISO 4217 alphabetic code (e.g., "USD", "EUR")
	ISOCode string `db:"iso_code" json:"isoCode"`

	// Symbol is the currency symbol (e.g., "$", "€")
	Symbol string `db:"symbol" json:"symbol"`

	// DecimalPlaces is the number of decimal places
	DecimalPlaces int `db:"decimal_places" json:"decimalPlaces"`

	// IsBase indicates the company's base (accounting) currency
	IsBase bool `db:"is_base" json:"isBase"`
}

// NewCurrency creates a new Currency with required fields.
func NewCurrency(companyID id.ID, isoCode, name, symbol string) *Currency {
	return &Currency{
		Catalog:       entity.NewCatalog(companyID, isoCode, name),
		ISOCode:       isoCode,
		Symbol:        symbol,
		DecimalPlaces: 2,
	}
}

// Validate implements entity.Validatable interface.
func (c *Currency) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isoCodeRE.MatchString(c.ISOCode) {
		return apperror.NewValidation("ISO code must be 3 uppercase letters").
			WithDetail("field", "isoCode").
			WithDetail("value", c.ISOCode)
	}

	if c.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}

	if c.DecimalPlaces < 0 || c.DecimalPlaces > 8 {
		return apperror.NewValidation("decimal places must be between 0 and 8").
			WithDetail("field", "decimalPlaces")
	}

	return nil
}

// Format formats an amount according to currency settings.
func (c *Currency) Format(amount decimal.Decimal) string {
	return amount.StringFixed(int32(c.DecimalPlaces)) + c.Symbol
}
