// Package pricing holds the pure calculations derived from a cart: totals,
// display formatting and order identifiers.
package pricing

import (
	"math"

	"ayuta/internal/models"
)

// Defaults used by the shop pages.
const (
	DefaultTaxRate      = 0.05
	DefaultShippingCost = 0.0
)

// GetTotals derives subtotal, taxes, shipping and total from cart.
// Taxes are rounded before they are added, then the sum is rounded again,
// so results match the stored order totals exactly.
func GetTotals(cart []models.CartItem, taxRate, shipping float64) models.Totals {
	var subtotal float64
	for _, item := range cart {
		subtotal += item.Price * float64(max(0, item.Quantity))
	}
	taxes := Round2(subtotal * taxRate)
	total := Round2(subtotal + taxes + shipping)
	return models.Totals{
		Subtotal: subtotal,
		Taxes:    taxes,
		Shipping: shipping,
		Total:    total,
	}
}

// DefaultTotals is GetTotals with the default tax rate and free shipping.
func DefaultTotals(cart []models.CartItem) models.Totals {
	return GetTotals(cart, DefaultTaxRate, DefaultShippingCost)
}

// Round2 rounds to 2 decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ItemCount is the number of units in the cart.
func ItemCount(cart []models.CartItem) int {
	n := 0
	for _, item := range cart {
		n += max(0, item.Quantity)
	}
	return n
}
