package entity

import (
	"context"
	"time"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
)

// Document is the base type for sales business documents
// (Quote, SalesOrder, SalesInvoice).
type Document struct {
	BaseDocument

	// CompanyID is the tenant boundary; every query filters on it
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// CustomerID references the party the document is addressed to
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Number is the document number (auto-generated, unique per company + type)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Notes is optional free text
	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewDocument creates a new Document for the given company and customer.
func NewDocument(companyID, customerID id.ID) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		CompanyID:    companyID,
		CustomerID:   customerID,
		Date:         time.Now().UTC(),
	}
}

// Validate implements Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}

	if id.IsNil(d.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}
