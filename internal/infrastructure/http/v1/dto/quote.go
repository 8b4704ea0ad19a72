package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"salescore/internal/core/id"
	"salescore/internal/core/types"
	"salescore/internal/domain/documents/quote"
)

// --- Request DTOs ---

type CreateQuoteRequest struct {
	Date               *time.Time         `json:"date,omitempty"`
	CustomerID         string             `json:"customerId" binding:"required"`
	CurrencyID         string             `json:"currencyId" binding:"required"`
	ValidUntil         *time.Time         `json:"validUntil,omitempty"`
	DiscountPercentage decimal.Decimal    `json:"discountPercentage"`
	DiscountAmount     types.Money        `json:"discountAmount"`
	Notes              string             `json:"notes,omitempty"`
	Lines              []QuoteLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type QuoteLineRequest struct {
	ProductID          string          `json:"productId" binding:"required"`
	Description        string          `json:"description,omitempty"`
	Quantity           types.Quantity  `json:"quantity" binding:"required"`
	UnitPrice          types.Money     `json:"unitPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     types.Money     `json:"discountAmount"`
	TaxRate            decimal.Decimal `json:"taxRate"`
}

func (r QuoteLineRequest) toLine() quote.Line {
	productID, _ := id.Parse(r.ProductID)
	return quote.Line{
		ProductID:          productID,
		Description:        r.Description,
		Quantity:           r.Quantity,
		UnitPrice:          r.UnitPrice,
		DiscountPercentage: r.DiscountPercentage,
		DiscountAmount:     r.DiscountAmount,
		TaxRate:            r.TaxRate,
	}
}

func (r *CreateQuoteRequest) ToEntity(companyID id.ID) *quote.Quote {
	customerID, _ := id.Parse(r.CustomerID)
	currencyID, _ := id.Parse(r.CurrencyID)

	doc := quote.New(companyID, customerID)
	doc.CurrencyID = currencyID
	doc.ValidUntil = r.ValidUntil
	doc.DiscountPercentage = r.DiscountPercentage
	doc.DiscountAmount = r.DiscountAmount
	doc.Notes = r.Notes
	if r.Date != nil {
		doc.Date = *r.Date
	}

	for _, line := range r.Lines {
		doc.AddLine(line.toLine())
	}

	return doc
}

type UpdateQuoteRequest struct {
	Date               *time.Time         `json:"date,omitempty"`
	CustomerID         *string            `json:"customerId,omitempty"`
	CurrencyID         *string            `json:"currencyId,omitempty"`
	ValidUntil         *time.Time         `json:"validUntil,omitempty"`
	DiscountPercentage *decimal.Decimal   `json:"discountPercentage,omitempty"`
	DiscountAmount     *types.Money       `json:"discountAmount,omitempty"`
	Notes              *string            `json:"notes,omitempty"`
	Lines              []QuoteLineRequest `json:"lines,omitempty"`
}

func (r *UpdateQuoteRequest) ApplyTo(doc *quote.Quote) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.CustomerID != nil {
		customerID, _ := id.Parse(*r.CustomerID)
		doc.CustomerID = customerID
	}
	if r.CurrencyID != nil {
		currencyID, _ := id.Parse(*r.CurrencyID)
		doc.CurrencyID = currencyID
	}
	if r.ValidUntil != nil {
		doc.ValidUntil = r.ValidUntil
	}
	if r.DiscountPercentage != nil {
		doc.DiscountPercentage = *r.DiscountPercentage
	}
	if r.DiscountAmount != nil {
		doc.DiscountAmount = *r.DiscountAmount
	}
	if r.Notes != nil {
		doc.Notes = *r.Notes
	}

	if r.Lines != nil {
		lines := make([]quote.Line, 0, len(r.Lines))
		for _, line := range r.Lines {
			lines = append(lines, line.toLine())
		}
		doc.ReplaceLines(lines)
	} else {
		doc.ApplyTotals()
	}
}

type ChangeQuoteStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

type QuoteListQuery struct {
	BaseListQuery
	CustomerID string     `form:"customerId"`
	Status     string     `form:"status"`
	DateFrom   *time.Time `form:"dateFrom"`
	DateTo     *time.Time `form:"dateTo"`
}

func (q QuoteListQuery) ToFilter() quote.ListFilter {
	filter := quote.ListFilter{
		ListFilter: q.BaseListQuery.ToFilter(),
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
	}
	filter.CustomerID = ParseOptionalID(q.CustomerID)
	if q.Status != "" {
		st := quote.Status(q.Status)
		filter.Status = &st
	}
	return filter
}

// --- Response DTOs ---

type QuoteResponse struct {
	DocumentResponse
	Status             string              `json:"status"`
	CurrencyID         string              `json:"currencyId"`
	ValidUntil         *time.Time          `json:"validUntil,omitempty"`
	DiscountPercentage decimal.Decimal     `json:"discountPercentage"`
	DiscountAmount     types.Money         `json:"discountAmount"`
	Subtotal           types.Money         `json:"subtotal"`
	TaxAmount          types.Money         `json:"taxAmount"`
	TotalAmount        types.Money         `json:"totalAmount"`
	SentDate           *time.Time          `json:"sentDate,omitempty"`
	AcceptedDate       *time.Time          `json:"acceptedDate,omitempty"`
	RejectionReason    *string             `json:"rejectionReason,omitempty"`
	ConvertedOrderID   *string             `json:"convertedOrderId,omitempty"`
	Lines              []QuoteLineResponse `json:"lines,omitempty"`
}

type QuoteLineResponse struct {
	LineID             string          `json:"lineId"`
	LineNo             int             `json:"lineNo"`
	ProductID          string          `json:"productId"`
	Description        string          `json:"description,omitempty"`
	Quantity           types.Quantity  `json:"quantity"`
	UnitPrice          types.Money     `json:"unitPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     types.Money     `json:"discountAmount"`
	TaxRate            decimal.Decimal `json:"taxRate"`
	LineTotal          types.Money     `json:"lineTotal"`
	TaxAmount          types.Money     `json:"taxAmount"`
}

func FromQuote(doc *quote.Quote) *QuoteResponse {
	resp := &QuoteResponse{
		DocumentResponse:   FromDocument(doc.Document),
		Status:             string(doc.Status),
		CurrencyID:         doc.CurrencyID.String(),
		ValidUntil:         doc.ValidUntil,
		DiscountPercentage: doc.DiscountPercentage,
		DiscountAmount:     doc.DiscountAmount,
		Subtotal:           doc.Subtotal,
		TaxAmount:          doc.TaxAmount,
		TotalAmount:        doc.TotalAmount,
		SentDate:           doc.SentDate,
		AcceptedDate:       doc.AcceptedDate,
		RejectionReason:    doc.RejectionReason,
	}

	if doc.ConvertedOrderID != nil {
		s := doc.ConvertedOrderID.String()
		resp.ConvertedOrderID = &s
	}

	resp.Lines = make([]QuoteLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = QuoteLineResponse{
			LineID:             line.LineID.String(),
			LineNo:             line.LineNo,
			ProductID:          line.ProductID.String(),
			Description:        line.Description,
			Quantity:           line.Quantity,
			UnitPrice:          line.UnitPrice,
			DiscountPercentage: line.DiscountPercentage,
			DiscountAmount:     line.DiscountAmount,
			TaxRate:            line.TaxRate,
			LineTotal:          line.LineTotal,
			TaxAmount:          line.TaxAmount,
		}
	}

	return resp
}

func FromQuoteList(docs []*quote.Quote) []*QuoteResponse {
	items := make([]*QuoteResponse, len(docs))
	for i, d := range docs {
		items[i] = FromQuote(d)
	}
	return items
}
