// Package payments provides the CustomerPayment record and the payment
// application engine that settles invoices.
package payments

import (
	"context"
	"time"

	"salescore/internal/core/apperror"
	"salescore/internal/core/entity"
	"salescore/internal/core/id"
	"salescore/internal/core/types"
)

// Method defines how a payment was made.
type Method string

const (
	MethodCash           Method = "CASH"
	MethodCreditCard     Method = "CREDIT_CARD"
	MethodDebitCard      Method = "DEBIT_CARD"
	MethodBankTransfer   Method = "BANK_TRANSFER"
	MethodCheck          Method = "CHECK"
	MethodDigitalWallet  Method = "DIGITAL_WALLET"
	MethodCryptocurrency Method = "CRYPTOCURRENCY"
)

// Status defines the payment lifecycle status.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
	StatusCancelled Status = "CANCELLED"
)

// CustomerPayment represents a payment received from a customer. It is
// either applied against one invoice, or held unapplied (an advance)
// until an invoice exists to settle.
type CustomerPayment struct {
	entity.Document

	// Currency support trait
	entity.CurrencyAware

	// InvoiceID is the settled invoice; nil for an advance payment
	InvoiceID id.ID `db:"invoice_id" json:"invoiceId,omitempty"`

	Amount types.Money `db:"amount" json:"amount"`
	Method Method      `db:"method" json:"method"`
	Status Status      `db:"status" json:"status"`

	// Reference is the external payment reference (bank slip, txn id)
	Reference string `db:"reference" json:"reference,omitempty"`
}

// NewCustomerPayment creates a payment row for an invoice.
func NewCustomerPayment(companyID, customerID, invoiceID id.ID, amount types.Money, paymentDate time.Time, method Method) *CustomerPayment {
	p := &CustomerPayment{
		Document:  entity.NewDocument(companyID, customerID),
		InvoiceID: invoiceID,
		Amount:    amount,
		Method:    method,
		Status:    StatusCompleted,
	}
	p.Date = paymentDate
	return p
}

// NewUnappliedPayment creates an advance payment not tied to any invoice.
func NewUnappliedPayment(companyID, customerID id.ID, amount types.Money, paymentDate time.Time, method Method) *CustomerPayment {
	return NewCustomerPayment(companyID, customerID, id.Nil(), amount, paymentDate, method)
}

// IsApplied reports whether the payment settles an invoice.
func (p *CustomerPayment) IsApplied() bool {
	return !id.IsNil(p.InvoiceID)
}

// Validate implements entity.Validatable.
func (p *CustomerPayment) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if err := p.ValidateCurrency(ctx); err != nil {
		return err
	}

	if !p.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}

	if !isValidMethod(p.Method) {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "method").
			WithDetail("value", string(p.Method))
	}

	if !isValidStatus(p.Status) {
		return apperror.NewValidation("invalid payment status").
			WithDetail("field", "status").
			WithDetail("value", string(p.Status))
	}

	return nil
}

func isValidMethod(m Method) bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDebitCard, MethodBankTransfer,
		MethodCheck, MethodDigitalWallet, MethodCryptocurrency:
		return true
	}
	return false
}

func isValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}
