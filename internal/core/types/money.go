// Package types provides common type aliases and monetary helpers.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors; matches
// NUMERIC(15,2) columns in PostgreSQL.
type Money = decimal.Decimal

// Quantity represents a line quantity, NUMERIC(10,3) in PostgreSQL.
// Kept as decimal so fractional quantities (hours, kilograms) are exact.
type Quantity = decimal.Decimal

// moneyPlaces is the rounding scale for monetary values.
const moneyPlaces = 2

// NewMoney creates a Money value from a float.
// WARNING: prefer MoneyFromString for values crossing an API boundary.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// MoneyFromString creates a Money value from a string.
func MoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds to the monetary scale (2 places, half away from zero).
func RoundMoney(m Money) Money {
	return m.Round(moneyPlaces)
}

// Percent applies pct (expressed as 0..100) to base and rounds to the
// monetary scale: Percent(200, 10) == 20.00.
func Percent(base Money, pct decimal.Decimal) Money {
	return RoundMoney(base.Mul(pct).Div(decimal.NewFromInt(100)))
}
