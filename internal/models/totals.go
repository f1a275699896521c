package models

// Totals is derived from a cart; it is never stored on its own.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Taxes    float64 `json:"taxes"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}
