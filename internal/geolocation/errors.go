package geolocation

import (
	"context"
	"errors"
	"fmt"

	"booking_portal_backend/platform/apperr"
)

// ErrorCode mirrors the platform geolocation error classes.
type ErrorCode int

const (
	CodePermissionDenied    ErrorCode = 1
	CodePositionUnavailable ErrorCode = 2
	CodeTimeout             ErrorCode = 3
)

// User-facing denial reasons.
const (
	MsgPermissionDenied    = "Location access was denied. Allow location access in your browser settings to continue."
	MsgPositionUnavailable = "Your position could not be determined. Check that location services are enabled."
	MsgTimeout             = "Locating you took too long. Please try again."
	MsgGeneric             = "Your location could not be retrieved. Please try again."
)

var (
	ErrRequestInFlight   = apperr.Conflict("location request already in progress")
	ErrNoRequestInFlight = apperr.Conflict("no location request in progress")
	ErrAlreadyGranted    = apperr.Conflict("location access already granted")
)

// PositionError is a failure reported by the platform location API.
type PositionError struct {
	Code    ErrorCode
	Message string
}

func (e *PositionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("geolocation error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("geolocation error %d", e.Code)
}

// Reason maps a location failure to the message shown to the user.
func Reason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgTimeout
	}
	var perr *PositionError
	if !errors.As(err, &perr) {
		return MsgGeneric
	}
	switch perr.Code {
	case CodePermissionDenied:
		return MsgPermissionDenied
	case CodePositionUnavailable:
		return MsgPositionUnavailable
	case CodeTimeout:
		return MsgTimeout
	default:
		return MsgGeneric
	}
}
