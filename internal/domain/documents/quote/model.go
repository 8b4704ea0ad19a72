// Package quote provides the Quote document: a priced offer to a customer
// that can be accepted and converted into a sales order.
package quote

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

// Quote represents a quotation document.
type Quote struct {
	entity.Document

	// Currency support trait
	entity.CurrencyAware

	// Status drives the lifecycle state machine
	Status Status `db:"status" json:"status"`

	// ValidUntil is the offer expiration date
	ValidUntil *time.Time `db:"valid_until" json:"validUntil,omitempty"`

	// Document-level discount inputs
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discountPercentage"`
	DiscountAmount     types.Money     `db:"discount_amount" json:"discountAmount"`

	// Totals (computed from lines, never set directly)
	Subtotal    types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount   types.Money `db:"tax_amount" json:"taxAmount"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Lifecycle audit
	SentDate        *time.Time `db:"sent_date" json:"sentDate,omitempty"`
	AcceptedDate    *time.Time `db:"accepted_date" json:"acceptedDate,omitempty"`
	RejectionReason *string    `db:"rejection_reason" json:"rejectionReason,omitempty"`

	// ConvertedOrderID references the sales order created from this quote
	ConvertedOrderID *id.ID `db:"converted_order_id" json:"convertedOrderId,omitempty"`

	// Table part: quoted items
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a quoted item.
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

	// Computed amounts
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
	TaxAmount types.Money `db:"tax_amount" json:"taxAmount"`
}

// New creates a new draft quote.
func New(companyID, customerID id.ID) *Quote {
	return &Quote{
		Document: entity.NewDocument(companyID, customerID),
		Status:   StatusDraft,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends a line and recomputes totals.
func (q *Quote) AddLine(line Line) {
	if id.IsNil(line.LineID) {
		line.LineID = id.New()
	}
	line.LineNo = len(q.Lines) + 1
	q.Lines = append(q.Lines, line)
	q.ApplyTotals()
}

// ReplaceLines swaps the table part and recomputes totals.
func (q *Quote) ReplaceLines(lines []Line) {
	q.Lines = make([]Line, 0, len(lines))
	for _, l := range lines {
		if id.IsNil(l.LineID) {
			l.LineID = id.New()
		}
		l.LineNo = len(q.Lines) + 1
		q.Lines = append(q.Lines, l)
	}
	q.ApplyTotals()
}

// ApplyTotals runs the totals cascade over the current lines and stores
// the result on the document. Safe to call repeatedly.
func (q *Quote) ApplyTotals() {
	res := totals.Compute(totals.Input{
		Lines:              q.totalsLines(),
		DiscountPercentage: q.DiscountPercentage,
		DiscountAmount:     q.DiscountAmount,
	})

	for i := range q.Lines {
		q.Lines[i].LineTotal = res.LineResults[i].LineTotal
		q.Lines[i].TaxAmount = res.LineResults[i].TaxAmount
	}
	q.Subtotal = res.Subtotal
	q.TaxAmount = res.TaxAmount
	q.TotalAmount = res.TotalAmount
}

func (q *Quote) totalsLines() []totals.Line {
	lines := make([]totals.Line, len(q.Lines))
	for i, l := range q.Lines {
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
func (q *Quote) IsEditable() bool {
	return q.Status == StatusDraft
}

// IsExpired reports whether the offer validity has lapsed at the given
// time. Only SENT quotes expire; drafts stay editable.
func (q *Quote) IsExpired(now time.Time) bool {
	return q.Status == StatusSent && q.ValidUntil != nil && q.ValidUntil.Before(now)
}

// Validate implements entity.Validatable.
func (q *Quote) Validate(ctx context.Context) error {
	if err := q.Document.Validate(ctx); err != nil {
		return err
	}

	if err := q.ValidateCurrency(ctx); err != nil {
		return err
	}

	if !q.Status.IsValid() {
		return apperror.NewValidation("invalid quote status").
			WithDetail("field", "status").
			WithDetail("value", string(q.Status))
	}

	if q.ValidUntil != nil && q.ValidUntil.Before(q.Date) {
		return apperror.NewValidation("valid until must not precede quote date").
			WithDetail("field", "validUntil")
	}

	if len(q.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	return validateLines(q.Lines)
}

func validateLines(lines []Line) error {
	for i, line := range lines {
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
