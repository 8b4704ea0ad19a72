package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"salescore/internal/core/id"
	"salescore/internal/core/types"
	"salescore/internal/domain/documents/invoice"
)

// --- Request DTOs ---

type CreateInvoiceRequest struct {
	Date               *time.Time           `json:"date,omitempty"`
	CustomerID         string               `json:"customerId" binding:"required"`
	CurrencyID         string               `json:"currencyId" binding:"required"`
	DueDate            time.Time            `json:"dueDate" binding:"required"`
	DiscountPercentage decimal.Decimal      `json:"discountPercentage"`
	DiscountAmount     types.Money          `json:"discountAmount"`
	ShippingAmount     types.Money          `json:"shippingAmount"`
	Notes              string               `json:"notes,omitempty"`
	Lines              []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type InvoiceLineRequest struct {
	ProductID          string          `json:"productId" binding:"required"`
	Description        string          `json:"description,omitempty"`
	Quantity           types.Quantity  `json:"quantity" binding:"required"`
	UnitPrice          types.Money     `json:"unitPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     types.Money     `json:"discountAmount"`
	TaxRate            decimal.Decimal `json:"taxRate"`
}

func (r InvoiceLineRequest) toLine() invoice.Line {
	productID, _ := id.Parse(r.ProductID)
	return invoice.Line{
		ProductID:          productID,
		Description:        r.Description,
		Quantity:           r.Quantity,
		UnitPrice:          r.UnitPrice,
		DiscountPercentage: r.DiscountPercentage,
		DiscountAmount:     r.DiscountAmount,
		TaxRate:            r.TaxRate,
	}
}

func (r *CreateInvoiceRequest) ToEntity(companyID id.ID) *invoice.SalesInvoice {
	customerID, _ := id.Parse(r.CustomerID)
	currencyID, _ := id.Parse(r.CurrencyID)

	doc := invoice.New(companyID, customerID, r.DueDate)
	doc.CurrencyID = currencyID
	doc.DiscountPercentage = r.DiscountPercentage
	doc.DiscountAmount = r.DiscountAmount
	doc.ShippingAmount = r.ShippingAmount
	doc.Notes = r.Notes
	if r.Date != nil {
		doc.Date = *r.Date
	}

	for _, line := range r.Lines {
		doc.AddLine(line.toLine())
	}

	return doc
}

// CreateInvoiceFromOrderRequest bills the uninvoiced remainder of an order.
type CreateInvoiceFromOrderRequest struct {
	OrderID string    `json:"orderId" binding:"required"`
	DueDate time.Time `json:"dueDate" binding:"required"`
}

type UpdateInvoiceRequest struct {
	Date               *time.Time           `json:"date,omitempty"`
	CustomerID         *string              `json:"customerId,omitempty"`
	CurrencyID         *string              `json:"currencyId,omitempty"`
	DueDate            *time.Time           `json:"dueDate,omitempty"`
	DiscountPercentage *decimal.Decimal     `json:"discountPercentage,omitempty"`
	DiscountAmount     *types.Money         `json:"discountAmount,omitempty"`
	ShippingAmount     *types.Money         `json:"shippingAmount,omitempty"`
	Notes              *string              `json:"notes,omitempty"`
	Lines              []InvoiceLineRequest `json:"lines,omitempty"`
}

func (r *UpdateInvoiceRequest) ApplyTo(doc *invoice.SalesInvoice) {
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
	if r.DueDate != nil {
		doc.DueDate = *r.DueDate
	}
	if r.DiscountPercentage != nil {
		doc.DiscountPercentage = *r.DiscountPercentage
	}
	if r.DiscountAmount != nil {
		doc.DiscountAmount = *r.DiscountAmount
	}
	if r.ShippingAmount != nil {
		doc.ShippingAmount = *r.ShippingAmount
	}
	if r.Notes != nil {
		doc.Notes = *r.Notes
	}

	if r.Lines != nil {
		lines := make([]invoice.Line, 0, len(r.Lines))
		for _, line := range r.Lines {
			lines = append(lines, line.toLine())
		}
		doc.ReplaceLines(lines)
	} else {
		doc.ApplyTotals()
	}
}

type ChangeInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type InvoiceListQuery struct {
	BaseListQuery
	CustomerID string     `form:"customerId"`
	Status     string     `form:"status"`
	OrderID    string     `form:"orderId"`
	DateFrom   *time.Time `form:"dateFrom"`
	DateTo     *time.Time `form:"dateTo"`
	DueBefore  *time.Time `form:"dueBefore"`
}

func (q InvoiceListQuery) ToFilter() invoice.ListFilter {
	filter := invoice.ListFilter{
		ListFilter: q.BaseListQuery.ToFilter(),
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
		DueBefore:  q.DueBefore,
	}
	filter.CustomerID = ParseOptionalID(q.CustomerID)
	filter.OrderID = ParseOptionalID(q.OrderID)
	if q.Status != "" {
		st := invoice.Status(q.Status)
		filter.Status = &st
	}
	return filter
}

// --- Response DTOs ---

type InvoiceResponse struct {
	DocumentResponse
	Status             string                `json:"status"`
	CurrencyID         string                `json:"currencyId"`
	OrderID            *string               `json:"orderId,omitempty"`
	DueDate            time.Time             `json:"dueDate"`
	DiscountPercentage decimal.Decimal       `json:"discountPercentage"`
	DiscountAmount     types.Money           `json:"discountAmount"`
	ShippingAmount     types.Money           `json:"shippingAmount"`
	Subtotal           types.Money           `json:"subtotal"`
	TaxAmount          types.Money           `json:"taxAmount"`
	TotalAmount        types.Money           `json:"totalAmount"`
	PaidAmount         types.Money           `json:"paidAmount"`
	BalanceDue         types.Money           `json:"balanceDue"`
	SentDate           *time.Time            `json:"sentDate,omitempty"`
	PaidDate           *time.Time            `json:"paidDate,omitempty"`
	Lines              []InvoiceLineResponse `json:"lines,omitempty"`
}

type InvoiceLineResponse struct {
	LineID             string          `json:"lineId"`
	LineNo             int             `json:"lineNo"`
	ProductID          string          `json:"productId"`
	Description        string          `json:"description,omitempty"`
	OrderLineID        *string         `json:"orderLineId,omitempty"`
	Quantity           types.Quantity  `json:"quantity"`
	UnitPrice          types.Money     `json:"unitPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     types.Money     `json:"discountAmount"`
	TaxRate            decimal.Decimal `json:"taxRate"`
	LineTotal          types.Money     `json:"lineTotal"`
	TaxAmount          types.Money     `json:"taxAmount"`
}

func FromInvoice(doc *invoice.SalesInvoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		DocumentResponse:   FromDocument(doc.Document),
		Status:             string(doc.Status),
		CurrencyID:         doc.CurrencyID.String(),
		DueDate:            doc.DueDate,
		DiscountPercentage: doc.DiscountPercentage,
		DiscountAmount:     doc.DiscountAmount,
		ShippingAmount:     doc.ShippingAmount,
		Subtotal:           doc.Subtotal,
		TaxAmount:          doc.TaxAmount,
		TotalAmount:        doc.TotalAmount,
		PaidAmount:         doc.PaidAmount,
		BalanceDue:         doc.BalanceDue,
		SentDate:           doc.SentDate,
		PaidDate:           doc.PaidDate,
	}

	if doc.OrderID != nil {
		s := doc.OrderID.String()
		resp.OrderID = &s
	}

	resp.Lines = make([]InvoiceLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		lr := InvoiceLineResponse{
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
		if line.OrderLineID != nil {
			s := line.OrderLineID.String()
			lr.OrderLineID = &s
		}
		resp.Lines[i] = lr
	}

	return resp
}

func FromInvoiceList(docs []*invoice.SalesInvoice) []*InvoiceResponse {
	items := make([]*InvoiceResponse, len(docs))
	for i, d := range docs {
		items[i] = FromInvoice(d)
	}
	return items
}
