// Package party provides the Party catalog. Parties represent business
// partners: customers, vendors and sales leads.
package party

import (
	"context"
	"regexp"

	"salescore/internal/core/apperror"
	"salescore/internal/core/entity"
	"salescore/internal/core/id"
	"salescore/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Kind defines the role of a party.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindVendor   Kind = "vendor"
	KindLead     Kind = "lead"
)

// Status defines the lifecycle status of a party.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBlocked  Status = "blocked"
)

// Party represents a business partner.
type Party struct {
	entity.Catalog

	// Kind defines whether this is a customer, vendor or lead
	Kind Kind `db:"kind" json:"kind"`

	// Status controls whether documents may reference this party
	Status Status `db:"status" json:"status"`

	// CurrencyID is the default currency for documents of this party
	CurrencyID *id.ID `db:"currency_id" json:"currencyId,omitempty"`

	// PaymentTermsDays is the default payment term used to derive
	// invoice due dates (net days)
	PaymentTermsDays int `db:"payment_terms_days" json:"paymentTermsDays"`

	// CreditLimit caps the open balance for customers; nil means no limit
	CreditLimit *types.Money `db:"credit_limit" json:"creditLimit,omitempty"`

	// TaxNumber is the tax registration identifier
	TaxNumber *string `db:"tax_number" json:"taxNumber,omitempty"`

	// BillingAddress is the invoicing address
	BillingAddress *string `db:"billing_address" json:"billingAddress,omitempty"`

	// ShippingAddress is the delivery address
	ShippingAddress *string `db:"shipping_address" json:"shippingAddress,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewParty creates a new Party with required fields.
func NewParty(companyID id.ID, code, name string, kind Kind) *Party {
	return &Party{
		Catalog: entity.NewCatalog(companyID, code, name),
		Kind:    kind,
		Status:  StatusActive,
	}
}

// Validate implements entity.Validatable interface.
func (p *Party) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(p.Kind) {
		return apperror.NewValidation("invalid party kind").
			WithDetail("field", "kind").
			WithDetail("value", string(p.Kind))
	}

	if !isValidStatus(p.Status) {
		return apperror.NewValidation("invalid party status").
			WithDetail("field", "status").
			WithDetail("value", string(p.Status))
	}

	if p.PaymentTermsDays < 0 {
		return apperror.NewValidation("payment terms must not be negative").
			WithDetail("field", "paymentTermsDays")
	}

	if p.CreditLimit != nil && p.CreditLimit.IsNegative() {
		return apperror.NewValidation("credit limit must not be negative").
			WithDetail("field", "creditLimit")
	}

	if p.Email != nil && *p.Email != "" && !emailRE.MatchString(*p.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

// IsCustomer returns true if the party can be a document customer.
// Leads are allowed on quotes but must be promoted before ordering.
func (p *Party) IsCustomer() bool {
	return p.Kind == KindCustomer
}

// CanTransact returns true if documents may reference this party.
func (p *Party) CanTransact() bool {
	return p.Status == StatusActive && !p.DeletionMark
}

// WithinCreditLimit reports whether an additional open amount fits
// under the party's credit limit.
func (p *Party) WithinCreditLimit(openBalance, amount types.Money) bool {
	if p.CreditLimit == nil {
		return true
	}
	return openBalance.Add(amount).LessThanOrEqual(*p.CreditLimit)
}

func isValidKind(k Kind) bool {
	switch k {
	case KindCustomer, KindVendor, KindLead:
		return true
	}
	return false
}

func isValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked:
		return true
	}
	return false
}
