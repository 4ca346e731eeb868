package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "validation"
	CodeNotFound     Code = "not_found"
	CodeForbidden    Code = "forbidden"
	CodeUnauthorized Code = "unauthorized"
	CodeConflict     Code = "conflict"
)

// Error is a failure the caller is expected to see: bad input, a missing
// reference, or an access problem. Anything else is an internal error.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewValidationError(msg string) error   { return &Error{Code: CodeValidation, Message: msg} }
func NewNotFoundError(msg string) error     { return &Error{Code: CodeNotFound, Message: msg} }
func NewForbiddenError(msg string) error    { return &Error{Code: CodeForbidden, Message: msg} }
func NewUnauthorizedError(msg string) error { return &Error{Code: CodeUnauthorized, Message: msg} }
func NewConflictError(msg string) error     { return &Error{Code: CodeConflict, Message: msg} }

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func Is(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

func IsNotFound(err error) bool   { return Is(err, CodeNotFound) }
func IsValidation(err error) bool { return Is(err, CodeValidation) }

// HTTPStatus maps an error to the response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
