package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates the caller does not hold the role required for the operation.
var ErrUnauthorized = errors.New("unauthorized")

// ErrState indicates the operation is not allowed in the resource's current state.
var ErrState = errors.New("invalid state")

// ErrInsufficientFunds indicates a withdrawal larger than the available balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInternal is returned when the failure should not be exposed to callers.
var ErrInternal = errors.New("internal error")

// AppError carries a status-like code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError. err may be nil.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ErrTransferFailed indicates the payout of a withdrawal could not be handed off.
// The withdrawal is not recorded when this is returned.
var ErrTransferFailed = errors.New("funds transfer failed")

// IsClientError reports whether err was caused by the request rather than by the server.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrState) ||
		errors.Is(err, ErrInsufficientFunds)
}
