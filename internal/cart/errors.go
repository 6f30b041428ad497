package cart

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidUnit     = errors.New("invalid unit")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineNotFound    = errors.New("cart line not found")
)

// Reason codes carried by ValidationError.
const (
	ReasonEmptyCart            = "EMPTY_CART"
	ReasonInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
	ReasonMissingReference     = "MISSING_REFERENCE"
	ReasonNegativeTotal        = "NEGATIVE_TOTAL"
	ReasonInsufficientTender   = "INSUFFICIENT_TENDER"
)

// ValidationError is a checkout rejection caused by what the cashier entered.
// The cart is never modified when one is returned.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func rejection(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ReasonCode returns the code of a ValidationError anywhere in err's chain,
// or "" when err is not a validation rejection.
func ReasonCode(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
