package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation")              // 400
	ErrInvalidPaymentMethod = errors.New("invalid payment method")  // 400
	ErrProductNotFound      = errors.New("product not found")       // 400
	ErrInsufficientStock    = errors.New("insufficient stock")      // 400
	ErrAlreadyReviewed      = errors.New("already reviewed")        // 400
	ErrCategoryInUse        = errors.New("category has products")   // 400
	ErrConflict             = errors.New("conflict")                // 400
	ErrInvalidCredentials   = errors.New("invalid credentials")     // 401
	ErrUnauthorized         = errors.New("unauthorized")            // 401
	ErrForbidden            = errors.New("forbidden")               // 403
	ErrNotFound             = errors.New("not found")               // 404
)

// Error carries one of the sentinels above together with the message the
// client sees.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%v: %s", e.Kind, e.Msg) }

func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Message returns the client-facing text of err, or "" when err does not
// carry one.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
