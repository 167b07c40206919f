// Package weberr decorates errors with the HTTP response they should
// produce and with structured fields for logging. Handlers return plain
// errors; the error middleware unwraps the decoration.
package weberr

import (
	"net/http"
)

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (r *RequestError) Unwrap() error { return r.Err }

func NewError(err error, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{Success: false, Message: msg},
		status,
	))

	return Wrap(e, opts...)
}

// NotFound marks a missing course, lecture or user id.
func NotFound(err error, opts ...Opt) error {
	return NewError(
		err,
		"the resource could not be found",
		http.StatusNotFound,
		opts...,
	)
}

// NotAuthorized marks a request without a valid session.
func NotAuthorized(err error, opts ...Opt) error {
	return NewError(
		err,
		"not authorized to access resource",
		http.StatusUnauthorized,
		opts...,
	)
}

// Forbidden marks a role-based denial for an authenticated user.
func Forbidden(err error, opts ...Opt) error {
	return NewError(
		err,
		"the current role does not allow this action",
		http.StatusForbidden,
		opts...,
	)
}

// Validation marks missing or conflicting request fields. The concrete
// message is surfaced to the caller.
func Validation(err error, opts ...Opt) error {
	return NewError(
		err,
		err.Error(),
		http.StatusUnprocessableEntity,
		opts...,
	)
}

// Upstream marks a failed media-host or payment-gateway call.
func Upstream(err error, opts ...Opt) error {
	return NewError(
		err,
		"an upstream service could not process the request",
		http.StatusBadGateway,
		opts...,
	)
}

func InternalError(err error, opts ...Opt) error {
	return NewError(
		err,
		"the server encountered a problem and could not process your request",
		http.StatusInternalServerError,
		opts...,
	)
}

func BadRequest(err error, opts ...Opt) error {
	return NewError(
		err,
		err.Error(),
		http.StatusBadRequest,
		opts...,
	)
}
