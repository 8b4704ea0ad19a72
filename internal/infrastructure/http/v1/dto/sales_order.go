package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"salescore/internal/core/id"
	"salescore/internal/core/types"
	"salescore/internal/domain/documents/salesorder"
)

// --- Request DTOs ---

type CreateSalesOrderRequest struct {
	Date               *time.Time              `json:"date,omitempty"`
	CustomerID         string                  `json:"customerId" binding:"required"`
	CurrencyID         string                  `json:"currencyId" binding:"required"`
	ExpectedDelivery   *time.Time              `json:"expectedDelivery,omitempty"`
	DiscountPercentage decimal.Decimal         `json:"discountPercentage"`
	DiscountAmount     types.Money             `json:"discountAmount"`
	ShippingAmount     types.Money             `json:"shippingAmount"`
	Notes              string                  `json:"notes,omitempty"`
	Lines              []SalesOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type SalesOrderLineRequest struct {
	ProductID          string          `json:"productId" binding:"required"`
	Description        string          `json:"description,omitempty"`
	Quantity           types.Quantity  `json:"quantity" binding:"required"`
	UnitPrice          types.Money     `json:"unitPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     types.Money     `json:"discountAmount"`
	TaxRate            decimal.Decimal `json:"taxRate"`
}

func (r SalesOrderLineRequest) toLine() salesorder.Line {
	productID, _ := id.Parse(r.ProductID)
	return salesorder.Line{
		ProductID:          productID,
		Description:        r.Description,
		Quantity:           r.Quantity,
		UnitPrice:          r.UnitPrice,
		DiscountPercentage: r.DiscountPercentage,
		DiscountAmount:     r.DiscountAmount,
		TaxRate:            r.TaxRate,
	}
}

func (r *CreateSalesOrderRequest) ToEntity(companyID id.ID) *salesorder.SalesOrder {
	customerID, _ := id.Parse(r.CustomerID)
	currencyID, _ := id.Parse(r.CurrencyID)

	doc := salesorder.New(companyID, customerID)
	doc.CurrencyID = currencyID
	doc.ExpectedDelivery = r.ExpectedDelivery
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

type UpdateSalesOrderRequest struct {
	Date               *time.Time              `json:"date,omitempty"`
	CustomerID         *string                 `json:"customerId,omitempty"`
	CurrencyID         *string                 `json:"currencyId,omitempty"`
	ExpectedDelivery   *time.Time              `json:"expectedDelivery,omitempty"`
	DiscountPercentage *decimal.Decimal        `json:"discountPercentage,omitempty"`
	DiscountAmount     *types.Money            `json:"discountAmount,omitempty"`
	ShippingAmount     *types.Money            `json:"shippingAmount,omitempty"`
	Notes              *string                 `json:"notes,omitempty"`
	Lines              []SalesOrderLineRequest `json:"lines,omitempty"`
}

func (r *UpdateSalesOrderRequest) ApplyTo(doc *salesorder.SalesOrder) {
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
	if r.ExpectedDelivery != nil {
		doc.ExpectedDelivery = r.ExpectedDelivery
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
		lines := make([]salesorder.Line, 0, len(r.Lines))
		for _, line := range r.Lines {
			lines = append(lines, line.toLine())
		}
		doc.ReplaceLines(lines)
	} else {
		doc.ApplyTotals()
	}
}

type ChangeOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RecordFulfillmentRequest struct {
	LineID          string         `json:"lineId" binding:"required"`
	QuantityShipped types.Quantity `json:"quantityShipped" binding:"required"`
}

type SalesOrderListQuery struct {
	BaseListQuery
	CustomerID string     `form:"customerId"`
	Status     string     `form:"status"`
	QuoteID    string     `form:"quoteId"`
	DateFrom   *time.Time `form:"dateFrom"`
	DateTo     *time.Time `form:"dateTo"`
}

func (q SalesOrderListQuery) ToFilter() salesorder.ListFilter {
	filter := salesorder.ListFilter{
		ListFilter: q.BaseListQuery.ToFilter(),
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
	}
	filter.CustomerID = ParseOptionalID(q.CustomerID)
	filter.QuoteID = ParseOptionalID(q.QuoteID)
	if q.Status != "" {
		st := salesorder.Status(q.Status)
		filter.Status = &st
	}
	return filter
}

// --- Response DTOs ---

type SalesOrderResponse struct {
	DocumentResponse
	Status             string                   `json:"status"`
	CurrencyID         string                   `json:"currencyId"`
	QuoteID            *string                  `json:"quoteId,omitempty"`
	ExpectedDelivery   *time.Time               `json:"expectedDelivery,omitempty"`
	DiscountPercentage decimal.Decimal          `json:"discountPercentage"`
	DiscountAmount     types.Money              `json:"discountAmount"`
	ShippingAmount     types.Money              `json:"shippingAmount"`
	Subtotal           types.Money              `json:"subtotal"`
	TaxAmount          types.Money              `json:"taxAmount"`
	TotalAmount        types.Money              `json:"totalAmount"`
	ConfirmedDate      *time.Time               `json:"confirmedDate,omitempty"`
	ShippedDate        *time.Time               `json:"shippedDate,omitempty"`
	DeliveredDate      *time.Time               `json:"deliveredDate,omitempty"`
	Lines              []SalesOrderLineResponse `json:"lines,omitempty"`
}

type SalesOrderLineResponse struct {
	LineID             string          `json:"lineId"`
	LineNo             int             `json:"lineNo"`
	ProductID          string          `json:"productId"`
	Description        string          `json:"description,omitempty"`
	Quantity           types.Quantity  `json:"quantity"`
	UnitPrice          types.Money     `json:"unitPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     types.Money     `json:"discountAmount"`
	TaxRate            decimal.Decimal `json:"taxRate"`
	QuantityShipped    types.Quantity  `json:"quantityShipped"`
	QuantityInvoiced   types.Quantity  `json:"quantityInvoiced"`
	LineTotal          types.Money     `json:"lineTotal"`
	TaxAmount          types.Money     `json:"taxAmount"`
}

func FromSalesOrder(doc *salesorder.SalesOrder) *SalesOrderResponse {
	resp := &SalesOrderResponse{
		DocumentResponse:   FromDocument(doc.Document),
		Status:             string(doc.Status),
		CurrencyID:         doc.CurrencyID.String(),
		ExpectedDelivery:   doc.ExpectedDelivery,
		DiscountPercentage: doc.DiscountPercentage,
		DiscountAmount:     doc.DiscountAmount,
		ShippingAmount:     doc.ShippingAmount,
		Subtotal:           doc.Subtotal,
		TaxAmount:          doc.TaxAmount,
		TotalAmount:        doc.TotalAmount,
		ConfirmedDate:      doc.ConfirmedDate,
		ShippedDate:        doc.ShippedDate,
		DeliveredDate:      doc.DeliveredDate,
	}

	if doc.QuoteID != nil {
		s := doc.QuoteID.String()
		resp.QuoteID = &s
	}

	resp.Lines = make([]SalesOrderLineResponse, len(doc.Lines))
	for i, line := range doc.Lines {
		resp.Lines[i] = SalesOrderLineResponse{
			LineID:             line.LineID.String(),
			LineNo:             line.LineNo,
			ProductID:          line.ProductID.String(),
			Description:        line.Description,
			Quantity:           line.Quantity,
			UnitPrice:          line.UnitPrice,
			DiscountPercentage: line.DiscountPercentage,
			DiscountAmount:     line.DiscountAmount,
			TaxRate:            line.TaxRate,
			QuantityShipped:    line.QuantityShipped,
			QuantityInvoiced:   line.QuantityInvoiced,
			LineTotal:          line.LineTotal,
			TaxAmount:          line.TaxAmount,
		}
	}

	return resp
}

func FromSalesOrderList(docs []*salesorder.SalesOrder) []*SalesOrderResponse {
	items := make([]*SalesOrderResponse, len(docs))
	for i, d := range docs {
		items[i] = FromSalesOrder(d)
	}
	return items
}
