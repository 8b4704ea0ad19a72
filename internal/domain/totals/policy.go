// Package totals implements the shared discount/tax/shipping cascade used
// by quotes, sales orders and sales invoices when computing monetary totals.
//
// The cascade is deterministic and idempotent: computing it twice over the
// same inputs yields the same result, so it is safe to call inline during
// create/update and standalone as a "recalculate totals" operation.
//
// Discount ordering decision: the document-level discount (percentage of
// subtotal plus fixed amount) is subtracted from the subtotal BEFORE tax and
// shipping are added:
//
//	total = subtotal − documentDiscount + tax + shipping
//
// Per-line: gross = quantity × unit price, reduced first by the percentage
// discount, then by the fixed discount, floored at zero. Line tax is
// computed on the already-discounted line total.
package totals

import (
	"github.com/shopspring/decimal"

	"salescore/internal/core/types"
)

// Line is the per-line input to the cascade.
type Line struct {
	Quantity           types.Quantity
	UnitPrice          types.Money
	DiscountPercentage decimal.Decimal // 0..100
	DiscountAmount     types.Money     // fixed, applies to the whole line
	TaxRate            decimal.Decimal // 0..100
}

// LineResult holds the computed per-line amounts.
type LineResult struct {
	LineTotal types.Money
	TaxAmount types.Money
}

// Input is the document-level input to the cascade.
type Input struct {
	Lines []Line

	// Document-level discount, both components optional and additive
	DiscountPercentage decimal.Decimal // percentage of subtotal
	DiscountAmount     types.Money     // fixed

	// ShippingAmount is zero for quotes
	ShippingAmount types.Money

	// PaidAmount feeds BalanceDue; only meaningful for invoices
	PaidAmount types.Money
}

// Result holds the aggregated document totals.
type Result struct {
	Subtotal       types.Money
	TaxAmount      types.Money
	DiscountTotal  types.Money // document-level discount actually applied
	TotalAmount    types.Money
	BalanceDue     types.Money // TotalAmount − PaidAmount
	LineResults    []LineResult
}

// ComputeLine applies the per-line cascade. The fixed discount is clamped
// so a line total is never negative.
func ComputeLine(l Line) LineResult {
	gross := types.RoundMoney(l.Quantity.Mul(l.UnitPrice))

	if l.DiscountPercentage.IsPositive() {
		gross = gross.Sub(types.Percent(gross, l.DiscountPercentage))
	}
	if l.DiscountAmount.IsPositive() {
		gross = gross.Sub(l.DiscountAmount)
	}
	if gross.IsNegative() {
		gross = types.Zero()
	}

	var tax types.Money
	if l.TaxRate.IsPositive() {
		tax = types.Percent(gross, l.TaxRate)
	} else {
		tax = types.Zero()
	}

	return LineResult{LineTotal: types.RoundMoney(gross), TaxAmount: tax}
}

// Compute aggregates all lines and applies the document-level cascade.
func Compute(in Input) Result {
	res := Result{
		Subtotal:    types.Zero(),
		TaxAmount:   types.Zero(),
		LineResults: make([]LineResult, 0, len(in.Lines)),
	}

	for _, line := range in.Lines {
		lr := ComputeLine(line)
		res.LineResults = append(res.LineResults, lr)
		res.Subtotal = res.Subtotal.Add(lr.LineTotal)
		res.TaxAmount = res.TaxAmount.Add(lr.TaxAmount)
	}

	discount := types.Zero()
	if in.DiscountPercentage.IsPositive() {
		discount = discount.Add(types.Percent(res.Subtotal, in.DiscountPercentage))
	}
	if in.DiscountAmount.IsPositive() {
		discount = discount.Add(in.DiscountAmount)
	}
	// Document discount never exceeds the subtotal, mirroring the
	// per-line floor-at-zero rule.
	if discount.GreaterThan(res.Subtotal) {
		discount = res.Subtotal
	}
	res.DiscountTotal = discount

	total := res.Subtotal.Sub(discount).Add(res.TaxAmount)
	if in.ShippingAmount.IsPositive() {
		total = total.Add(in.ShippingAmount)
	}
	res.TotalAmount = types.RoundMoney(total)
	res.BalanceDue = res.TotalAmount.Sub(in.PaidAmount)

	return res
}
