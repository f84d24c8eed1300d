// Package apperr is the typed error every domain package returns. The HTTP
// layer reads Kind for the status and Field for the form control to focus.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindForbidden
	KindBadRequest
	KindInternal
	// KindUnavailable means a collaborator (geocoder, marketplace API,
	// storage) failed.
	KindUnavailable
	// KindPrecondition means the wizard is not at a step that allows the
	// action.
	KindPrecondition
)

var kinds = map[Kind]struct {
	code   string
	status int
}{
	KindUnknown:      {"unknown", http.StatusBadRequest},
	KindNotFound:     {"not_found", http.StatusNotFound},
	KindValidation:   {"validation", http.StatusUnprocessableEntity},
	KindConflict:     {"conflict", http.StatusConflict},
	KindForbidden:    {"forbidden", http.StatusForbidden},
	KindBadRequest:   {"bad_request", http.StatusBadRequest},
	KindInternal:     {"internal", http.StatusInternalServerError},
	KindUnavailable:  {"unavailable", http.StatusBadGateway},
	KindPrecondition: {"precondition", http.StatusPreconditionFailed},
}

// String is the machine-readable code sent to clients.
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.code
	}
	return kinds[KindUnknown].code
}

// Status is the HTTP status for k.
func (k Kind) Status() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return kinds[KindUnknown].status
}

// Error is a domain error. Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus is shorthand for e.Kind.Status().
func (e *Error) HTTPStatus() int { return e.Kind.Status() }

// WithField names the offending form control. It mutates and returns e.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithDetails attaches extra response data. It mutates and returns e.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap keeps err in the chain behind a user-facing message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Validation(message string) *Error   { return New(KindValidation, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func BadRequest(message string) *Error   { return New(KindBadRequest, message) }
func Unavailable(message string) *Error  { return New(KindUnavailable, message) }
func Precondition(message string) *Error { return New(KindPrecondition, message) }

// FieldValidation is a validation error on one form control.
func FieldValidation(field, message string) *Error {
	return New(KindValidation, message).WithField(field)
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
