package handlers

import (
	"salescore/internal/core/id"
	"salescore/internal/domain/catalogs/currency"
	"salescore/internal/infrastructure/http/v1/dto"
)

// CurrencyHandler handles currency catalog endpoints.
type CurrencyHandler = CatalogHandler[*currency.Currency, dto.CreateCurrencyRequest, dto.UpdateCurrencyRequest]

// NewCurrencyHandler creates a handler for the currency catalog.
func NewCurrencyHandler(base *BaseHandler, service *currency.Service) *CurrencyHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*currency.Currency, dto.CreateCurrencyRequest, dto.UpdateCurrencyRequest]{
		Service:    service.CatalogService,
		EntityName: "currency",
		MapCreateDTO: func(req dto.CreateCurrencyRequest, companyID id.ID) *currency.Currency {
			return req.ToEntity(companyID)
		},
		MapUpdateDTO: func(req dto.UpdateCurrencyRequest, existing *currency.Currency) *currency.Currency {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(c *currency.Currency) any {
			return dto.FromCurrency(c)
		},
	})
}
