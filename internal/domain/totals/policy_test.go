package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescore/internal/core/types"
)

func d(s string) decimal.Decimal {
	return types.MustMoney(s)
}

func TestComputeLine_DiscountThenTax(t *testing.T) {
	// quantity=2, unit_price=100.00, discount 10%, tax 5%
	lr := ComputeLine(Line{
		Quantity:           d("2"),
		UnitPrice:          d("100.00"),
		DiscountPercentage: d("10"),
		TaxRate:            d("5"),
	})

	assert.True(t, lr.LineTotal.Equal(d("180.00")), "line_total = %s", lr.LineTotal)
	assert.True(t, lr.TaxAmount.Equal(d("9.00")), "tax = %s", lr.TaxAmount)
}

func TestComputeLine_FixedDiscountAfterPercentage(t *testing.T) {
	lr := ComputeLine(Line{
		Quantity:           d("1"),
		UnitPrice:          d("200.00"),
		DiscountPercentage: d("50"),
		DiscountAmount:     d("40.00"),
	})

	// 200 → 100 after 50%, → 60 after fixed 40
	assert.True(t, lr.LineTotal.Equal(d("60.00")))
}

func TestComputeLine_NeverNegative(t *testing.T) {
	quantities := []string{"0", "1", "2", "0.5", "100"}
	prices := []string{"0", "0.01", "10.00", "999.99"}
	pcts := []string{"0", "10", "50", "100"}
	fixed := []string{"0", "5.00", "1000.00"}

	for _, q := range quantities {
		for _, p := range prices {
			for _, pct := range pcts {
				for _, f := range fixed {
					lr := ComputeLine(Line{
						Quantity:           d(q),
						UnitPrice:          d(p),
						DiscountPercentage: d(pct),
						DiscountAmount:     d(f),
						TaxRate:            d("20"),
					})
					assert.False(t, lr.LineTotal.IsNegative(),
						"qty=%s price=%s pct=%s fixed=%s → %s", q, p, pct, f, lr.LineTotal)
					assert.False(t, lr.TaxAmount.IsNegative())
				}
			}
		}
	}
}

func TestCompute_SingleLineScenario(t *testing.T) {
	// Quote with one line: quantity=2, unit_price=100.00, discount 10%, tax 5%,
	// no document-level discount/shipping.
	res := Compute(Input{
		Lines: []Line{{
			Quantity:           d("2"),
			UnitPrice:          d("100.00"),
			DiscountPercentage: d("10"),
			TaxRate:            d("5"),
		}},
	})

	assert.True(t, res.Subtotal.Equal(d("180.00")), "subtotal = %s", res.Subtotal)
	assert.True(t, res.TaxAmount.Equal(d("9.00")), "tax = %s", res.TaxAmount)
	assert.True(t, res.TotalAmount.Equal(d("189.00")), "total = %s", res.TotalAmount)
}

func TestCompute_DocumentDiscountAppliesToSubtotalOnly(t *testing.T) {
	// Pins the committed discount ordering: the document discount reduces
	// the subtotal before tax and shipping are added.
	res := Compute(Input{
		Lines: []Line{{
			Quantity:  d("1"),
			UnitPrice: d("100.00"),
			TaxRate:   d("10"),
		}},
		DiscountPercentage: d("10"),
		DiscountAmount:     d("5.00"),
		ShippingAmount:     d("20.00"),
	})

	// subtotal 100, tax 10, discount 10% of 100 + 5 = 15
	// total = 100 − 15 + 10 + 20 = 115; NOT (100+10+20)−15 applied to tax base
	require.True(t, res.Subtotal.Equal(d("100.00")))
	require.True(t, res.TaxAmount.Equal(d("10.00")))
	assert.True(t, res.DiscountTotal.Equal(d("15.00")))
	assert.True(t, res.TotalAmount.Equal(d("115.00")), "total = %s", res.TotalAmount)
}

func TestCompute_DocumentDiscountClampedAtSubtotal(t *testing.T) {
	res := Compute(Input{
		Lines: []Line{{
			Quantity:  d("1"),
			UnitPrice: d("50.00"),
		}},
		DiscountAmount: d("80.00"),
		ShippingAmount: d("10.00"),
	})

	assert.True(t, res.DiscountTotal.Equal(d("50.00")))
	assert.True(t, res.TotalAmount.Equal(d("10.00")), "total = %s", res.TotalAmount)
}

func TestCompute_Idempotent(t *testing.T) {
	in := Input{
		Lines: []Line{
			{Quantity: d("3"), UnitPrice: d("19.99"), DiscountPercentage: d("7.5"), TaxRate: d("21")},
			{Quantity: d("1.5"), UnitPrice: d("40.00"), DiscountAmount: d("3.33"), TaxRate: d("5")},
		},
		DiscountPercentage: d("2"),
		ShippingAmount:     d("12.50"),
		PaidAmount:         d("10.00"),
	}

	first := Compute(in)
	second := Compute(in)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
	assert.True(t, first.BalanceDue.Equal(second.BalanceDue))
}

func TestCompute_BalanceDue(t *testing.T) {
	res := Compute(Input{
		Lines: []Line{{
			Quantity:           d("2"),
			UnitPrice:          d("100.00"),
			DiscountPercentage: d("10"),
			TaxRate:            d("5"),
		}},
		PaidAmount: d("100.00"),
	})

	assert.True(t, res.TotalAmount.Equal(d("189.00")))
	assert.True(t, res.BalanceDue.Equal(d("89.00")))
}

func TestCompute_EmptyLines(t *testing.T) {
	res := Compute(Input{})

	assert.True(t, res.Subtotal.IsZero())
	assert.True(t, res.TaxAmount.IsZero())
	assert.True(t, res.TotalAmount.IsZero())
}
