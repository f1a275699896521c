package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed user action.
type ErrorKind int

const (
	// KindValidation is a missing or malformed input; nothing was mutated.
	KindValidation ErrorKind = iota
	// KindLookup is a reference to something that does not exist; nothing was mutated.
	KindLookup
	// KindGateway is a payment the gateway rejected or did not complete.
	KindGateway
	// KindConflict is an action refused because another one is still running.
	KindConflict
)

// User-facing messages.
const (
	ErrMsgCartEmpty          = "Add a kit before checking out."
	ErrMsgReceiptEmail       = "Enter an email for the receipt."
	ErrMsgPaymentFailed      = "Payment failed. Please retry."
	ErrMsgGatewayUnavailable = "Payment gateway is not available."
	ErrMsgCheckoutInProgress = "Payment is already being processed."
	ErrMsgNameEmailRequired  = "Name and email are required."
	ErrMsgLoginEmailRequired = "Enter your email to continue."
	ErrMsgNoOrderForEmail    = "No order found for that email yet."
	ErrMsgClearNotConfirmed  = "Confirm to clear all demo data stored in this browser."
	ErrMsgUnknownGoal        = "Unknown goal."
	ErrMsgProductNotFound    = "Product not found."
	ErrMsgItemNotInBasket    = "Item not in basket."
	ErrMsgQuantityPositive   = "Quantity must be positive."
	ErrMsgQuantityTooLarge   = "Quantity cannot exceed 99."
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindLookup:
		return "LOOKUP"
	case KindGateway:
		return "GATEWAY"
	case KindConflict:
		return "CONFLICT"
	default:
		return "UNKNOWN"
	}
}

// ActionError is returned when a user action is refused. Message is safe to show.
type ActionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Status renders the error as an error status line.
func (e *ActionError) Status() Status {
	return ErrorStatus(e.Message)
}

// NewValidationError creates a validation fault.
func NewValidationError(message string) *ActionError {
	return &ActionError{Kind: KindValidation, Message: message}
}

// NewLookupError creates a lookup fault.
func NewLookupError(message string) *ActionError {
	return &ActionError{Kind: KindLookup, Message: message}
}

// NewGatewayError creates a gateway fault wrapping the gateway's error, if any.
func NewGatewayError(message string, err error) *ActionError {
	return &ActionError{Kind: KindGateway, Message: message, Err: err}
}

// ErrCheckoutInProgress is returned while a checkout for the same client is awaiting the gateway.
var ErrCheckoutInProgress = &ActionError{Kind: KindConflict, Message: ErrMsgCheckoutInProgress}

// AsActionError extracts an ActionError from err.
func AsActionError(err error) (*ActionError, bool) {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
