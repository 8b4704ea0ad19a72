package dto

import (
	"salescore/internal/core/id"
	"salescore/internal/domain/catalogs/currency"
)

// --- Request DTOs ---

type CreateCurrencyRequest struct {
	ISOCode       string `json:"isoCode" binding:"required,len=3"`
	Name          string `json:"name" binding:"required"`
	Symbol        string `json:"symbol"`
	DecimalPlaces *int   `json:"decimalPlaces,omitempty"`
	IsBase        bool   `json:"isBase"`
}

func (r *CreateCurrencyRequest) ToEntity(companyID id.ID) *currency.Currency {
	c := currency.NewCurrency(companyID, r.ISOCode, r.Name, r.Symbol)
	if r.DecimalPlaces != nil {
		c.DecimalPlaces = *r.DecimalPlaces
	}
	c.IsBase = r.IsBase
	return c
}

type UpdateCurrencyRequest struct {
	Name          *string `json:"name,omitempty"`
	Symbol        *string `json:"symbol,omitempty"`
	DecimalPlaces *int    `json:"decimalPlaces,omitempty"`
	IsBase        *bool   `json:"isBase,omitempty"`
}

func (r *UpdateCurrencyRequest) ApplyTo(c *currency.Currency) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Symbol != nil {
		c.Symbol = *r.Symbol
	}
	if r.DecimalPlaces != nil {
		c.DecimalPlaces = *r.DecimalPlaces
	}
	if r.IsBase != nil {
		c.IsBase = *r.IsBase
	}
}

// --- Response DTOs ---

type CurrencyResponse struct {
	CatalogResponse
	ISOCode       string `json:"isoCode"`
	Symbol        string `json:"symbol"`
	DecimalPlaces int    `json:"decimalPlaces"`
	IsBase        bool   `json:"isBase"`
}

func FromCurrency(c *currency.Currency) *CurrencyResponse {
	return &CurrencyResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		ISOCode:         c.ISOCode,
		Symbol:          c.Symbol,
		DecimalPlaces:   c.DecimalPlaces,
		IsBase:          c.IsBase,
	}
}

func FromCurrencyList(items []*currency.Currency) []*CurrencyResponse {
	out := make([]*CurrencyResponse, len(items))
	for i, c := range items {
		out[i] = FromCurrency(c)
	}
	return out
}
