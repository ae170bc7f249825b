// Package apperr carries an HTTP status alongside domain errors so handlers
// can translate service failures without string matching.
package apperr

import (
	"errors"
	"net/http"
)

// Error is a domain error with the status code it maps to.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// New creates an error for the given status. Declare results as package-level
// sentinels and compare them with errors.Is.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }

// Unprocessable is used for requests that are well formed but violate a business rule.
func Unprocessable(message string) *Error { return New(http.StatusUnprocessableEntity, message) }

// StatusOf returns the status code carried by err, or 500 when err is not an *Error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client-facing message for err. Unknown errors are
// reported generically so internal details do not leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
