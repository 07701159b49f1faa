package paymentmethod

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType     = errors.New("unsupported payment method type")
	ErrTypeDisabled        = errors.New("payment method type is disabled")
	ErrInvalidIBAN         = errors.New("invalid IBAN")
	ErrTokenTypeMismatch   = errors.New("payment method token does not match the requested type")
	ErrSetupIncomplete     = errors.New("setup intent has not succeeded")
	ErrMethodNotActive     = errors.New("payment method is not active")
	ErrMethodRemoved       = errors.New("payment method was removed")
	ErrVerificationRefused = errors.New("verification charge was declined")
)

// ProcessorError is a failure reported by the payments processor.
type ProcessorError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor error %s: %s", e.Code, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}
