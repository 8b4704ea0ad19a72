// Package salesorder provides the SalesOrder document: a confirmed
// customer commitment tracked through fulfillment and invoicing.
package salesorder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"salescore/internal/core/apperror"
	"salescore/internal/core/entity"
	"salescore/internal/core/id"
	"salescore/internal/core/types"
	"salescore/internal/domain/totals"
)

// SalesOrder represents a sales order document.
type SalesOrder struct {
	entity.Document

	// Currency support trait
	entity.CurrencyAware

	// Status drives the lifecycle state machine
	Status Status `db:"status" json:"status"`

	// QuoteID references the quote this order was converted from
	QuoteID *id.ID `db:"quote_id" json:"quoteId,omitempty"`

	// ExpectedDelivery is the promised delivery date
	ExpectedDelivery *time.Time `db:"expected_delivery" json:"expectedDelivery,omitempty"`

	// Document-level discount inputs
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discountPercentage"`
	DiscountAmount     types.Money     `db:"discount_amount" json:"discountAmount"`

	// ShippingAmount is added after discount and tax
	ShippingAmount types.Money `db:"shipping_amount" json:"shippingAmount"`

	// Totals (computed from lines, never set directly)
	Subtotal    types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount   types.Money `db:"tax_amount" json:"taxAmount"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Lifecycle audit
	ConfirmedDate *time.Time `db:"confirmed_date" json:"confirmedDate,omitempty"`
	ShippedDate   *time.Time `db:"shipped_date" json:"shippedDate,omitempty"`
	DeliveredDate *time.Time `db:"delivered_date" json:"deliveredDate,omitempty"`

	// Table part: ordered items
	Lines []Line `db:"-" json:"lines"`
}

// Line represents an ordered item with fulfillment tracking.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	Description string `db:"description" json:"description,omitempty"`

	Quantity           types.Quantity  `db:"quantity" json:"quantity"`
	UnitPrice          types.Money     `db:"unit_price" json:"unitPrice"`
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discountPercentage"`
	DiscountAmount     types.Money     `db:"discount_amount" json:"discountAmount"`
	TaxRate            decimal.Decimal `db:"tax_rate" json:"taxRate"`

	// Fulfillment tracking, both monotonically non-decreasing
	QuantityShipped  types.Quantity `db:"quantity_shipped" json:"quantityShipped"`
	QuantityInvoiced types.Quantity `db:"quantity_invoiced" json:"quantityInvoiced"`

	// Computed amounts
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
	TaxAmount types.Money `db:"tax_amount" json:"taxAmount"`
}

// RemainingToShip returns the quantity not yet shipped.
func (l Line) RemainingToShip() types.Quantity {
	return l.Quantity.Sub(l.QuantityShipped)
}

// RemainingToInvoice returns the quantity not yet invoiced.
func (l Line) RemainingToInvoice() types.Quantity {
	return l.Quantity.Sub(l.QuantityInvoiced)
}

// New creates a new draft sales order.
func New(companyID, customerID id.ID) *SalesOrder {
	return &SalesOrder{
		Document: entity.NewDocument(companyID, customerID),
		Status:   StatusDraft,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends a line and recomputes totals.
func (o *SalesOrder) AddLine(line Line) {
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(o.Lines) + 1
	o.Lines = append(o.Lines, line)
	o.ApplyTotals()
}

// ReplaceLines swaps the table part and recomputes totals.
func (o *SalesOrder) ReplaceLines(lines []Line) {
	o.Lines = make([]Line, 0, len(lines))
	for _, l := range lines {
		if id.IsNil(l.LineID) {
			l.LineID = id.New()
		}
		l.LineNo = len(o.Lines) + 1
		o.Lines = append(o.Lines, l)
	}
	o.ApplyTotals()
}

// ApplyTotals runs the totals cascade over the current lines and stores
// the result on the document. Safe to call repeatedly.
func (o *SalesOrder) ApplyTotals() {
	res := totals.Compute(totals.Input{
		Lines:              o.totalsLines(),
		DiscountPercentage: o.DiscountPercentage,
		DiscountAmount:     o.DiscountAmount,
		ShippingAmount:     o.ShippingAmount,
	})

	for i := range o.Lines {
		o.Lines[i].LineTotal = res.LineResults[i].LineTotal
		o.Lines[i].TaxAmount = res.LineResults[i].TaxAmount
	}
	o.Subtotal = res.Subtotal
	o.TaxAmount = res.TaxAmount
	o.TotalAmount = res.TotalAmount
}

func (o *SalesOrder) totalsLines() []totals.Line {
	lines := make([]totals.Line, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = totals.Line{
			Quantity:           l.Quantity,
			UnitPrice:          l.UnitPrice,
			DiscountPercentage: l.DiscountPercentage,
			DiscountAmount:     l.DiscountAmount,
			TaxRate:            l.TaxRate,
		}
	}
	return lines
}

// IsEditable reports whether field updates are allowed.
func (o *SalesOrder) IsEditable() bool {
	return o.Status == StatusDraft || o.Status == StatusConfirmed
}

// FindLine returns the line with the given ID, or nil.
func (o *SalesOrder) FindLine(lineID id.ID) *Line {
	for i := range o.Lines {
		if o.Lines[i].LineID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// FullyShipped reports whether every line is shipped in full.
func (o *SalesOrder) FullyShipped() bool {
	for _, l := range o.Lines {
		if l.QuantityShipped.LessThan(l.Quantity) {
			return false
		}
	}
	return len(o.Lines) > 0
}

// Validate implements entity.Validatable.
func (o *SalesOrder) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if err := o.ValidateCurrency(ctx); err != nil {
		return err
	}

	if !o.Status.IsValid() {
		return apperror.NewValidation("invalid order status").
			WithDetail("field", "status").
			WithDetail("value", string(o.Status))
	}

	if o.ShippingAmount.IsNegative() {
		return apperror.NewValidation("shipping amount cannot be negative").
			WithDetail("field", "shippingAmount")
	}

	if len(o.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range o.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.QuantityShipped.IsNegative() || line.QuantityShipped.GreaterThan(line.Quantity) {
			return apperror.NewValidation("shipped quantity out of range").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.QuantityInvoiced.IsNegative() || line.QuantityInvoiced.GreaterThan(line.Quantity) {
			return apperror.NewValidation("invoiced quantity out of range").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
