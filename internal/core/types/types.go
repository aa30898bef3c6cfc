// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroMoney returns zero Money value.
func ZeroMoney() Money {
	return decimal.Zero
}

// Quantity is a whole number of stock units.
//
// Inventory in this system is counted in discrete pieces; fractional units are
// not supported, so a plain int64 maps directly to BIGINT in PostgreSQL and
// keeps ledger arithmetic exact.
type Quantity = int64

// AbsQuantity returns the absolute value of a quantity.
func AbsQuantity(q Quantity) Quantity {
	if q < 0 {
		return -q
	}
	return q
}

// ClampQuantity returns q, or min if q is below it.
func ClampQuantity(q, min Quantity) Quantity {
	if q < min {
		return min
	}
	return q
}
