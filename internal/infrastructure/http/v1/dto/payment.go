package dto

import (
	"time"

	"salescore/internal/core/id"
	"salescore/internal/core/types"
	"salescore/internal/domain/payments"
)

// --- Request DTOs ---

// ApplyPaymentRequest applies a payment against an invoice.
type ApplyPaymentRequest struct {
	Amount      types.Money `json:"amount" binding:"required"`
	PaymentDate *time.Time  `json:"paymentDate,omitempty"`
	Method      string      `json:"method" binding:"required"`
	Reference   string      `json:"reference,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

func (r *ApplyPaymentRequest) ToInput() payments.ApplyInput {
	in := payments.ApplyInput{
		Amount:    r.Amount,
		Method:    payments.Method(r.Method),
		Reference: r.Reference,
		Notes:     r.Notes,
	}
	if r.PaymentDate != nil {
		in.PaymentDate = *r.PaymentDate
	}
	return in
}

// RecordPaymentRequest records an advance payment that is not applied
// to any invoice.
type RecordPaymentRequest struct {
	CustomerID  string      `json:"customerId" binding:"required"`
	CurrencyID  string      `json:"currencyId" binding:"required"`
	Amount      types.Money `json:"amount" binding:"required"`
	PaymentDate *time.Time  `json:"paymentDate,omitempty"`
	Method      string      `json:"method" binding:"required"`
	Reference   string      `json:"reference,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

func (r *RecordPaymentRequest) ToInput(customerID, currencyID id.ID) payments.RecordInput {
	in := payments.RecordInput{
		CustomerID: customerID,
		CurrencyID: currencyID,
		Amount:     r.Amount,
		Method:     payments.Method(r.Method),
		Reference:  r.Reference,
		Notes:      r.Notes,
	}
	if r.PaymentDate != nil {
		in.PaymentDate = *r.PaymentDate
	}
	return in
}

type PaymentListQuery struct {
	BaseListQuery
	CustomerID string     `form:"customerId"`
	InvoiceID  string     `form:"invoiceId"`
	Method     string     `form:"method"`
	Status     string     `form:"status"`
	DateFrom   *time.Time `form:"dateFrom"`
	DateTo     *time.Time `form:"dateTo"`
}

func (q PaymentListQuery) ToFilter() payments.ListFilter {
	filter := payments.ListFilter{
		ListFilter: q.BaseListQuery.ToFilter(),
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
	}
	filter.CustomerID = ParseOptionalID(q.CustomerID)
	filter.InvoiceID = ParseOptionalID(q.InvoiceID)
	if q.Method != "" {
		m := payments.Method(q.Method)
		filter.Method = &m
	}
	if q.Status != "" {
		st := payments.Status(q.Status)
		filter.Status = &st
	}
	return filter
}

// --- Response DTOs ---

type PaymentResponse struct {
	DocumentResponse
	InvoiceID  string      `json:"invoiceId,omitempty"`
	CurrencyID string      `json:"currencyId"`
	Amount     types.Money `json:"amount"`
	Method     string      `json:"method"`
	Status     string      `json:"status"`
	Reference  string      `json:"reference,omitempty"`
}

func FromPayment(p *payments.CustomerPayment) *PaymentResponse {
	resp := &PaymentResponse{
		DocumentResponse: FromDocument(p.Document),
		CurrencyID:       p.CurrencyID.String(),
		Amount:           p.Amount,
		Method:           string(p.Method),
		Status:           string(p.Status),
		Reference:        p.Reference,
	}
	if p.IsApplied() {
		resp.InvoiceID = p.InvoiceID.String()
	}
	return resp
}

func FromPaymentList(items []*payments.CustomerPayment) []*PaymentResponse {
	out := make([]*PaymentResponse, len(items))
	for i, p := range items {
		out[i] = FromPayment(p)
	}
	return out
}

// ApplyPaymentResponse returns the payment and the updated invoice state.
type ApplyPaymentResponse struct {
	Payment *PaymentResponse `json:"payment"`
	Invoice *InvoiceResponse `json:"invoice"`
}
