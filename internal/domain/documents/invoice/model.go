// Package invoice provides the SalesInvoice document: a billed amount
// owed by a customer, tracked through payment to settlement.
package invoice

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

// SalesInvoice represents a sales invoice document.
type SalesInvoice struct {
	entity.Document

	// Currency support trait
	entity.CurrencyAware

	// Status drives the lifecycle state machine
	Status Status `db:"status" json:"status"`

	// OrderID references the sales order this invoice bills, if any
	OrderID *id.ID `db:"order_id" json:"orderId,omitempty"`

	// DueDate is the payment deadline; never precedes the invoice date
	DueDate time.Time `db:"due_date" json:"dueDate"`

	// Document-level discount inputs
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discountPercentage"`
	DiscountAmount     types.Money     `db:"discount_amount" json:"discountAmount"`

	// ShippingAmount is added after discount and tax
	ShippingAmount types.Money `db:"shipping_amount" json:"shippingAmount"`

	// Totals (computed from lines, never set directly)
	Subtotal    types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount   types.Money `db:"tax_amount" json:"taxAmount"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Payment tracking
	PaidAmount types.Money `db:"paid_amount" json:"paidAmount"`
	BalanceDue types.Money `db:"balance_due" json:"balanceDue"`

	// Lifecycle audit
	SentDate *time.Time `db:"sent_date" json:"sentDate,omitempty"`
	PaidDate *time.Time `db:"paid_date" json:"paidDate,omitempty"`

	// Table part: billed items
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a billed item.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	Description string `db:"description" json:"description,omitempty"`

	// OrderLineID links back to the order line this line bills, if any
	OrderLineID *id.ID `db:"order_line_id" json:"orderLineId,omitempty"`

	Quantity           types.Quantity  `db:"quantity" json:"quantity"`
	UnitPrice          types.Money     `db:"unit_price" json:"unitPrice"`
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discountPercentage"`
	DiscountAmount     types.Money     `db:"discount_amount" json:"discountAmount"`
	TaxRate            decimal.Decimal `db:"tax_rate" json:"taxRate"`

	// Computed amounts
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
	TaxAmount types.Money `db:"tax_amount" json:"taxAmount"`
}

// New creates a new draft invoice.
func New(companyID, customerID id.ID, dueDate time.Time) *SalesInvoice {
	return &SalesInvoice{
		Document: entity.NewDocument(companyID, customerID),
		Status:   StatusDraft,
		DueDate:  dueDate,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends a line and recomputes totals.
func (inv *SalesInvoice) AddLine(line Line) {
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(inv.Lines) + 1
	inv.Lines = append(inv.Lines, line)
	inv.ApplyTotals()
}

// ReplaceLines swaps the table part and recomputes totals.
func (inv *SalesInvoice) ReplaceLines(lines []Line) {
	inv.Lines = make([]Line, 0, len(lines))
	for _, l := range lines {
		if id.IsNil(l.LineID) {
			l.LineID = id.New()
		}
		l.LineNo = len(inv.Lines) + 1
		inv.Lines = append(inv.Lines, l)
	}
	inv.ApplyTotals()
}

// ApplyTotals runs the totals cascade over the current lines and stores
// the result, including the balance due. Safe to call repeatedly.
func (inv *SalesInvoice) ApplyTotals() {
	res := totals.Compute(totals.Input{
		Lines:              inv.totalsLines(),
		DiscountPercentage: inv.DiscountPercentage,
		DiscountAmount:     inv.DiscountAmount,
		ShippingAmount:     inv.ShippingAmount,
		PaidAmount:         inv.PaidAmount,
	})

	for i := range inv.Lines {
		inv.Lines[i].LineTotal = res.LineResults[i].LineTotal
		inv.Lines[i].TaxAmount = res.LineResults[i].TaxAmount
	}
	inv.Subtotal = res.Subtotal
	inv.TaxAmount = res.TaxAmount
	inv.TotalAmount = res.TotalAmount
	inv.BalanceDue = res.BalanceDue
}

func (inv *SalesInvoice) totalsLines() []totals.Line {
	lines := make([]totals.Line, len(inv.Lines))
	for i, l := range inv.Lines {
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

// RegisterPayment applies a payment amount to the invoice and strictly
// recomputes balance and status: zero balance means PAID, anything else
// PARTIAL_PAID. Callers must have checked preconditions via Status.IsPayable.
func (inv *SalesInvoice) RegisterPayment(amount types.Money, at time.Time) {
	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.BalanceDue = inv.TotalAmount.Sub(inv.PaidAmount)

	if inv.BalanceDue.IsZero() {
		inv.Status = StatusPaid
		inv.PaidDate = &at
	} else {
		inv.Status = StatusPartialPaid
	}
}

// IsEditable reports whether field updates are allowed.
func (inv *SalesInvoice) IsEditable() bool {
	return inv.Status == StatusDraft || inv.Status == StatusSent
}

// IsOverdue reports whether the invoice should move to OVERDUE as of now.
func (inv *SalesInvoice) IsOverdue(now time.Time) bool {
	return (inv.Status == StatusSent || inv.Status == StatusPartialPaid) &&
		inv.DueDate.Before(now) && inv.BalanceDue.IsPositive()
}

// Validate implements entity.Validatable.
func (inv *SalesInvoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if err := inv.ValidateCurrency(ctx); err != nil {
		return err
	}

	if !inv.Status.IsValid() {
		return apperror.NewValidation("invalid invoice status").
			WithDetail("field", "status").
			WithDetail("value", string(inv.Status))
	}

	if inv.DueDate.IsZero() {
		return apperror.NewValidation("due date is required").
			WithDetail("field", "dueDate")
	}
	if inv.DueDate.Before(inv.Date) {
		return apperror.NewValidation("due date must not precede invoice date").
			WithDetail("field", "dueDate")
	}

	if inv.ShippingAmount.IsNegative() {
		return apperror.NewValidation("shipping amount cannot be negative").
			WithDetail("field", "shippingAmount")
	}

	if inv.PaidAmount.IsNegative() {
		return apperror.NewValidation("paid amount cannot be negative").
			WithDetail("field", "paidAmount")
	}

	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range inv.Lines {
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
	}

	return nil
}
