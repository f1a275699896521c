package models

// OrderStatus is the lifecycle state of a completed checkout.
type OrderStatus string

// OrderStatusPaid is the only status checkout produces.
const OrderStatusPaid OrderStatus = "Paid"

// Order represents a completed (mock) purchase. Orders are never mutated after creation.
type Order struct {
	ID              string      `json:"id"`
	Items           []CartItem  `json:"items"` // Snapshot of the cart at checkout time
	Total           float64     `json:"total"` // Frozen at checkout, not re-derived
	Status          OrderStatus `json:"status"`
	CreatedAt       string      `json:"createdAt"`
	Email           string      `json:"email"`
	PaymentIntentID string      `json:"paymentIntentId"`
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	o.Items = CloneCart(o.Items)
	return o
}
