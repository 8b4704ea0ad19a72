package entity

import (
	"context"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
)

// CurrencyAware is a trait for entities that have a currency dimension.
// Used for composition in Quote, SalesOrder, SalesInvoice, CustomerPayment.
type CurrencyAware struct {
	// CurrencyID is the currency for all monetary fields of this entity
	CurrencyID id.ID `db:"currency_id" json:"currencyId"`
}

// ValidateCurrency ensures a currency is set.
func (c *CurrencyAware) ValidateCurrency(ctx context.Context) error {
	if id.IsNil(c.CurrencyID) {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currencyId")
	}
	return nil
}

// GetCurrencyID returns the currency ID (useful for interfaces).
func (c *CurrencyAware) GetCurrencyID() id.ID {
	return c.CurrencyID
}
