package dto

import (
	"salescore/internal/core/id"
	"salescore/internal/core/types"
	"salescore/internal/domain/catalogs/party"
)

// --- Request DTOs ---

type CreatePartyRequest struct {
	Code             string       `json:"code"`
	Name             string       `json:"name" binding:"required"`
	Kind             string       `json:"kind" binding:"required"`
	Status           string       `json:"status,omitempty"`
	CurrencyID       *string      `json:"currencyId,omitempty"`
	PaymentTermsDays int          `json:"paymentTermsDays"`
	CreditLimit      *types.Money `json:"creditLimit,omitempty"`
	TaxNumber        *string      `json:"taxNumber,omitempty"`
	BillingAddress   *string      `json:"billingAddress,omitempty"`
	ShippingAddress  *string      `json:"shippingAddress,omitempty"`
	Phone            *string      `json:"phone,omitempty"`
	Email            *string      `json:"email,omitempty"`
	ContactPerson    *string      `json:"contactPerson,omitempty"`
	Comment          *string      `json:"comment,omitempty"`
}

func (r *CreatePartyRequest) ToEntity(companyID id.ID) *party.Party {
	p := party.NewParty(companyID, r.Code, r.Name, party.Kind(r.Kind))
	if r.Status != "" {
		p.Status = party.Status(r.Status)
	}
	if r.CurrencyID != nil {
		p.CurrencyID = ParseOptionalID(*r.CurrencyID)
	}
	p.PaymentTermsDays = r.PaymentTermsDays
	p.CreditLimit = r.CreditLimit
	p.TaxNumber = r.TaxNumber
	p.BillingAddress = r.BillingAddress
	p.ShippingAddress = r.ShippingAddress
	p.Phone = r.Phone
	p.Email = r.Email
	p.ContactPerson = r.ContactPerson
	p.Comment = r.Comment
	return p
}

type UpdatePartyRequest struct {
	Code             *string      `json:"code,omitempty"`
	Name             *string      `json:"name,omitempty"`
	Kind             *string      `json:"kind,omitempty"`
	Status           *string      `json:"status,omitempty"`
	CurrencyID       *string      `json:"currencyId,omitempty"`
	PaymentTermsDays *int         `json:"paymentTermsDays,omitempty"`
	CreditLimit      *types.Money `json:"creditLimit,omitempty"`
	TaxNumber        *string      `json:"taxNumber,omitempty"`
	BillingAddress   *string      `json:"billingAddress,omitempty"`
	ShippingAddress  *string      `json:"shippingAddress,omitempty"`
	Phone            *string      `json:"phone,omitempty"`
	Email            *string      `json:"email,omitempty"`
	ContactPerson    *string      `json:"contactPerson,omitempty"`
	Comment          *string      `json:"comment,omitempty"`
}

func (r *UpdatePartyRequest) ApplyTo(p *party.Party) {
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Kind != nil {
		p.Kind = party.Kind(*r.Kind)
	}
	if r.Status != nil {
		p.Status = party.Status(*r.Status)
	}
	if r.CurrencyID != nil {
		p.CurrencyID = ParseOptionalID(*r.CurrencyID)
	}
	if r.PaymentTermsDays != nil {
		p.PaymentTermsDays = *r.PaymentTermsDays
	}
	if r.CreditLimit != nil {
		p.CreditLimit = r.CreditLimit
	}
	if r.TaxNumber != nil {
		p.TaxNumber = r.TaxNumber
	}
	if r.BillingAddress != nil {
		p.BillingAddress = r.BillingAddress
	}
	if r.ShippingAddress != nil {
		p.ShippingAddress = r.ShippingAddress
	}
	if r.Phone != nil {
		p.Phone = r.Phone
	}
	if r.Email != nil {
		p.Email = r.Email
	}
	if r.ContactPerson != nil {
		p.ContactPerson = r.ContactPerson
	}
	if r.Comment != nil {
		p.Comment = r.Comment
	}
}

// --- Response DTOs ---

type PartyResponse struct {
	CatalogResponse
	Kind             string       `json:"kind"`
	Status           string       `json:"status"`
	CurrencyID       *string      `json:"currencyId,omitempty"`
	PaymentTermsDays int          `json:"paymentTermsDays"`
	CreditLimit      *types.Money `json:"creditLimit,omitempty"`
	TaxNumber        *string      `json:"taxNumber,omitempty"`
	BillingAddress   *string      `json:"billingAddress,omitempty"`
	ShippingAddress  *string      `json:"shippingAddress,omitempty"`
	Phone            *string      `json:"phone,omitempty"`
	Email            *string      `json:"email,omitempty"`
	ContactPerson    *string      `json:"contactPerson,omitempty"`
	Comment          *string      `json:"comment,omitempty"`
}

func FromParty(p *party.Party) *PartyResponse {
	resp := &PartyResponse{
		CatalogResponse:  FromCatalog(p.Catalog),
		Kind:             string(p.Kind),
		Status:           string(p.Status),
		PaymentTermsDays: p.PaymentTermsDays,
		CreditLimit:      p.CreditLimit,
		TaxNumber:        p.TaxNumber,
		BillingAddress:   p.BillingAddress,
		ShippingAddress:  p.ShippingAddress,
		Phone:            p.Phone,
		Email:            p.Email,
		ContactPerson:    p.ContactPerson,
		Comment:          p.Comment,
	}
	if p.CurrencyID != nil {
		s := p.CurrencyID.String()
		resp.CurrencyID = &s
	}
	return resp
}

func FromPartyList(items []*party.Party) []*PartyResponse {
	out := make([]*PartyResponse, len(items))
	for i, p := range items {
		out[i] = FromParty(p)
	}
	return out
}
