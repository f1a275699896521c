package pricing_test

import (
	"testing"

	"ayuta/internal/models"
	"ayuta/internal/pricing"

	"github.com/stretchr/testify/assert"
)

func TestGetTotals_Example(t *testing.T) {
	cart := []models.CartItem{
		{ID: "a", Price: 100, Quantity: 1},
		{ID: "b", Price: 50, Quantity: 2},
	}

	totals := pricing.GetTotals(cart, 0.05, 0)

	assert.Equal(t, 200.0, totals.Subtotal)
	assert.Equal(t, 10.0, totals.Taxes)
	assert.Equal(t, 0.0, totals.Shipping)
	assert.Equal(t, 210.0, totals.Total)
}

func TestGetTotals_Idempotent(t *testing.T) {
	cart := []models.CartItem{{ID: "a", Price: 19.99, Quantity: 3}, {ID: "b", Price: 0.35, Quantity: 1}}
	assert.Equal(t, pricing.DefaultTotals(cart), pricing.DefaultTotals(cart))
}

func TestGetTotals_RoundsTaxesThenTotal(t *testing.T) {
	// 0.35 * 0.05 = 0.0175 -> taxes 0.02, total 0.37
	totals := pricing.GetTotals([]models.CartItem{{ID: "a", Price: 0.35, Quantity: 1}}, 0.05, 0)
	assert.Equal(t, 0.02, totals.Taxes)
	assert.Equal(t, 0.37, totals.Total)

	// shipping is added before the final rounding
	totals = pricing.GetTotals([]models.CartItem{{ID: "a", Price: 90, Quantity: 1}}, 0.05, 4.5)
	assert.Equal(t, 4.5, totals.Taxes)
	assert.Equal(t, 4.5, totals.Shipping)
	assert.Equal(t, 99.0, totals.Total)
}

func TestGetTotals_NegativeQuantityCountsAsZero(t *testing.T) {
	cart := []models.CartItem{{ID: "a", Price: 10, Quantity: -2}, {ID: "b", Price: 5, Quantity: 1}}
	totals := pricing.DefaultTotals(cart)
	assert.Equal(t, 5.0, totals.Subtotal)
	assert.Equal(t, 1, pricing.ItemCount(cart))
}

func TestGetTotals_EmptyCart(t *testing.T) {
	assert.Equal(t, models.Totals{}, pricing.DefaultTotals(nil))
}

func TestRound2_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.13, pricing.Round2(0.125))
	assert.Equal(t, -0.13, pricing.Round2(-0.125))
	assert.Equal(t, 2.0, pricing.Round2(1.999))
}
