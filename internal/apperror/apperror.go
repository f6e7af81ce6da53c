// Package apperror is the failure taxonomy of the identity pipeline.
// Every pipeline step returns exactly one of these as data; nothing
// panics across the service boundary.
package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
	ErrUpstreamAuth = errors.New("upstream auth error")
)

type Error struct {
	Kind    error  // one of the sentinels above
	Code    int    // HTTP status the boundary reports
	Message string // single human-readable message, no internal detail
	Field   string // optional: field that caused a validation failure
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func BadRequest(field, message string) *Error {
	return &Error{Kind: ErrBadRequest, Code: http.StatusBadRequest, Message: message, Field: field}
}

func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Code: http.StatusNotFound, Message: message}
}

func Internal(message string) *Error {
	return &Error{Kind: ErrInternal, Code: http.StatusInternalServerError, Message: message}
}

// Upstream marks a third-party provider failure. The boundary maps it to
// 502 rather than folding it into a generic 500.
func Upstream(message string) *Error {
	return &Error{Kind: ErrUpstreamAuth, Code: http.StatusBadGateway, Message: message}
}
