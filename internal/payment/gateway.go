// Package payment defines the two-step card payment protocol used at checkout
// and a mocked gateway that simulates it.
package payment

import "context"

// StatusSucceeded is the only confirmation status treated as a successful payment.
const StatusSucceeded = "succeeded"

// IntentRequest asks the gateway to prepare a payment.
type IntentRequest struct {
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	ReceiptEmail string  `json:"receiptEmail"`
}

// PaymentIntent is a prepared payment awaiting confirmation.
type PaymentIntent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	ReceiptEmail string  `json:"receiptEmail"`
}

// BillingDetails identifies the payer.
type BillingDetails struct {
	Email string `json:"email"`
}

// PaymentMethod is the card payment method submitted with a confirmation.
type PaymentMethod struct {
	BillingDetails BillingDetails `json:"billing_details"`
}

// ConfirmedIntent is the gateway's view of the intent after confirmation.
type ConfirmedIntent struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	PaymentMethod PaymentMethod `json:"paymentDetails"`
}

// Confirmation is the result of confirming a card payment.
type Confirmation struct {
	Status        string          `json:"status"`
	PaymentIntent ConfirmedIntent `json:"paymentIntent"`
}

// Succeeded reports whether the payment completed.
func (c *Confirmation) Succeeded() bool {
	return c != nil && c.Status == StatusSucceeded
}

// Gateway is the external payment collaborator.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*PaymentIntent, error)
	ConfirmCardPayment(ctx context.Context, clientSecret string, method PaymentMethod) (*Confirmation, error)
}
