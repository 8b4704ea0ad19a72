package handlers

import (
	"salescore/internal/core/id"
	"salescore/internal/domain/catalogs/party"
	"salescore/internal/infrastructure/http/v1/dto"
)

// PartyHandler handles party (customer/vendor/lead) endpoints.
type PartyHandler = CatalogHandler[*party.Party, dto.CreatePartyRequest, dto.UpdatePartyRequest]

// NewPartyHandler creates a handler for the party catalog.
func NewPartyHandler(base *BaseHandler, service *party.Service) *PartyHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*party.Party, dto.CreatePartyRequest, dto.UpdatePartyRequest]{
		Service:    service.CatalogService,
		EntityName: "party",
		MapCreateDTO: func(req dto.CreatePartyRequest, companyID id.ID) *party.Party {
			return req.ToEntity(companyID)
		},
		MapUpdateDTO: func(req dto.UpdatePartyRequest, existing *party.Party) *party.Party {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(p *party.Party) any {
			return dto.FromParty(p)
		},
	})
}
