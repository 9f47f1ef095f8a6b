package domain

import "github.com/shopspring/decimal"

// RoundCurrency rounds to whole currency units, half away from zero.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// FinalTotal subtracts a discount from a subtotal, never going below zero.
func FinalTotal(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// AppliedDiscount is the part of a discount that actually reduces the subtotal.
func AppliedDiscount(subtotal, discount decimal.Decimal) decimal.Decimal {
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}
