// Package errors defines the application's error taxonomy. Services wrap
// their sentinel errors into a DomainError so handlers can map them to a
// status code and a user facing message.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a DomainError.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindConflict          Kind = "conflict"
	KindExternalProcessor Kind = "external_processor"
	KindAuth              Kind = "auth"
	KindTransient         Kind = "transient"
	KindNotFound          Kind = "not_found"
)

// DomainError carries a human readable message for the end user and keeps
// the underlying cause for logging.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

func newError(kind Kind, code, message string, err error) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code, message string, err error) *DomainError {
	return newError(KindValidation, code, message, err)
}

func Conflict(code, message string, err error) *DomainError {
	return newError(KindConflict, code, message, err)
}

func External(code, message string, err error) *DomainError {
	return newError(KindExternalProcessor, code, message, err)
}

func Auth(code, message string, err error) *DomainError {
	return newError(KindAuth, code, message, err)
}

func Transient(code, message string, err error) *DomainError {
	return newError(KindTransient, code, message, err)
}

func NotFound(code, message string, err error) *DomainError {
	return newError(KindNotFound, code, message, err)
}

// KindOf returns the kind of the first DomainError in err's chain.
func KindOf(err error) (Kind, bool) {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// Message returns the user facing message for err. Errors outside the
// taxonomy get a generic message so internal detail never leaks.
func Message(err error) string {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindExternalProcessor:
		return http.StatusPaymentRequired
	case KindAuth:
		return http.StatusUnauthorized
	case KindTransient:
		return http.StatusServiceUnavailable
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
