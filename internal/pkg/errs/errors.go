// internal/pkg/errs/errors.go
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and logging.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInsufficientStock
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
)

// Error is the application error type carrying a kind and a
// user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInsufficientStock:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a 400 validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a 404 error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Conflict creates a 409 error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected error. The wrapped error is kept for
// logs; the message is what reaches the client.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// StockViolation describes one order line that failed stock
// validation.
type StockViolation struct {
	VariantID uint   `json:"variant_id"`
	SKU       string `json:"sku"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError reports every violating line of a checkout
// attempt, not just the first one.
type InsufficientStockError struct {
	Violations []StockViolation
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d item(s)", len(e.Violations))
}

// HTTPStatus implements the same mapping contract as *Error.
func (e *InsufficientStockError) HTTPStatus() int {
	return http.StatusBadRequest
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	if kind == KindInsufficientStock {
		var stockErr *InsufficientStockError
		return errors.As(err, &stockErr)
	}
	return false
}

// AsError extracts an application error from err's chain.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// AsInsufficientStock extracts a stock validation failure from err's
// chain.
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var stockErr *InsufficientStockError
	ok := errors.As(err, &stockErr)
	return stockErr, ok
}

// IsInsufficientStock reports whether err is a stock validation
// failure.
func IsInsufficientStock(err error) bool {
	var stockErr *InsufficientStockError
	return errors.As(err, &stockErr)
}
