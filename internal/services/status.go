package services

import "ayuta/internal/store"

// StatusKind is the tone of a status line.
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the inline message shown after an action.
// Unsaved is set when the change is visible but could not be persisted.
type Status struct {
	Message string     `json:"message"`
	Kind    StatusKind `json:"status"`
	Unsaved bool       `json:"unsaved,omitempty"`
}

// SuccessStatus builds a success status for a committed change.
func SuccessStatus(message string, res store.Result) Status {
	return Status{Message: message, Kind: StatusSuccess, Unsaved: res.Unsaved()}
}

// ErrorStatus builds an error status.
func ErrorStatus(message string) Status {
	return Status{Message: message, Kind: StatusError}
}
