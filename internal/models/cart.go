package models

import "encoding/json"

// CartItem represents a single product selected into the basket.
type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// UnmarshalJSON decodes a stored cart row. Rows written by the simple
// toggle flow carry no quantity and count as a single unit.
func (i *CartItem) UnmarshalJSON(data []byte) error {
	type alias CartItem
	raw := struct {
		*alias
		Quantity *int `json:"quantity"`
	}{alias: (*alias)(i)}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	i.Quantity = 1
	if raw.Quantity != nil {
		i.Quantity = *raw.Quantity
	}
	return nil
}

// CloneCart returns an independent copy of the cart. A nil cart becomes empty.
func CloneCart(cart []CartItem) []CartItem {
	out := make([]CartItem, len(cart))
	copy(out, cart)
	return out
}
