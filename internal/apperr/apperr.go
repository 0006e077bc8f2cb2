// Package apperr defines the console's error taxonomy and how each kind maps to HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is returned when no session token is available.
var ErrUnauthorized = errors.New("unauthorized")

// Validation codes.
const (
	CodeMissingField         = "MissingField"
	CodeInvalidThreshold     = "InvalidThreshold"
	CodeInvalidTimeframe     = "InvalidTimeframe"
	CodeMissingTimezone      = "MissingTimezone"
	CodeInvalidField         = "InvalidField"
	CodeUnsupportedCondition = "UnsupportedCondition"
	CodeInvalidMinSpend      = "InvalidMinSpend"
)

// Messages surfaced to the browser.
const (
	MessageUnauthorized  = "Unauthorized"
	MessageRequestFailed = "Request failed"
)

// ValidationError is a client-side form constraint violation. It never reaches the network.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Field, e.Message)
}

func NewValidation(code, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}

// RemoteError means the backend answered but with a non-success payload.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote rejected (status %d): %s", e.Status, e.Message)
}

// TransportError means the backend could not be reached or answered with something unparseable.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError, returning it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Status maps an error to the HTTP status the console answers with.
func Status(err error) int {
	var (
		ve *ValidationError
		re *RemoteError
		te *TransportError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &re):
		if re.Status >= 400 {
			return re.Status
		}
		return http.StatusBadGateway
	case errors.As(err, &te):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message is the user-facing text for err.
func Message(err error) string {
	var (
		ve *ValidationError
		re *RemoteError
		te *TransportError
	)
	switch {
	case errors.Is(err, ErrUnauthorized):
		return MessageUnauthorized
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &re):
		return re.Message
	case errors.As(err, &te):
		return MessageRequestFailed
	default:
		return "Internal server error"
	}
}
