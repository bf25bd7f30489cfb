// Package apperr defines the error taxonomy every handler maps onto the
// wire: ValidationError (400), NotFoundError (404), ServerError (500).
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation = "ValidationError"
	CodeNotFound   = "NotFoundError"
	CodeServer     = "ServerError"
)

type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func Internal(format string, args ...any) *Error {
	return &Error{Code: CodeServer, Status: http.StatusInternalServerError, Message: fmt.Sprintf(format, args...)}
}

// From coerces any error into an *Error, defaulting to ServerError so
// unexpected failures never leak internals with a 2xx-adjacent shape.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("an unexpected error occurred")
}

func IsValidation(err error) bool { return is(err, CodeValidation) }
func IsNotFound(err error) bool   { return is(err, CodeNotFound) }

func is(err error, code string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
