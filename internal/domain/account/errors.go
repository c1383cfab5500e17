package account

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("account not found")
	ErrInvalidPin        = errors.New("invalid PIN")
	ErrInactiveAccount   = errors.New("account is inactive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrLimitExceeded     = errors.New("limit exceeded")
	ErrAlreadyActive     = errors.New("account is already active")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// ledgerError carries a human readable message and unwraps to one of the
// sentinel errors above.
type ledgerError struct {
	kind error
	msg  string
}

func (e *ledgerError) Error() string { return e.msg }
func (e *ledgerError) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...interface{}) error {
	return &ledgerError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// ValidationError reports which creation field was rejected.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NotFoundError(number int64) error {
	return newError(ErrNotFound, "Account %d not found", number)
}

func NoAccountsError() error {
	return newError(ErrNotFound, "No accounts found")
}

func InvalidPinError() error {
	return newError(ErrInvalidPin, "Invalid PIN")
}

func InactiveError() error {
	return newError(ErrInactiveAccount, "Account is not Active")
}

func AlreadyActiveError() error {
	return newError(ErrAlreadyActive, "Account is already active")
}

// ErrorType returns a short label for err, used for metrics and logs.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidPin):
		return "invalid_pin"
	case errors.Is(err, ErrInactiveAccount):
		return "inactive_account"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, ErrAlreadyActive):
		return "already_active"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "internal"
	}
}

// Result is the (success, message) pair handed back to callers.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewResult folds an operation outcome into a Result. A nil err yields a
// successful result carrying msg; otherwise the error text becomes the message.
func NewResult(msg string, err error) Result {
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	return Result{Success: true, Message: msg}
}
