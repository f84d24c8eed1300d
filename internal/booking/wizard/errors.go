package wizard

import (
	"errors"

	"booking_portal_backend/internal/booking/domain"
	"booking_portal_backend/platform/apperr"
)

var (
	ErrClosed           = apperr.Conflict("booking session is closed")
	ErrInvalidStep      = apperr.Precondition("action not available at this step")
	ErrServiceRequired  = apperr.Precondition("choose a service first")
	ErrLocationRequired = apperr.Precondition(domain.MsgLocationRequired).WithField(domain.FieldLocation)
	ErrSubmitInFlight   = apperr.Conflict("submission already in progress")
	ErrSuggestionIndex  = apperr.BadRequest("unknown address suggestion")
)

// GenericSubmitMessage is shown when a failure carries no messages of its own.
const GenericSubmitMessage = "Your request could not be sent. Please try again."

// MsgAddressNotFound is shown when a granted position has no known address.
const MsgAddressNotFound = "We could not find an address for your position. Please type it in."

type userMessager interface {
	UserMessages() []string
}

func userMessages(err error) []string {
	var m userMessager
	if errors.As(err, &m) {
		if msgs := m.UserMessages(); len(msgs) > 0 {
			return msgs
		}
	}
	return []string{GenericSubmitMessage}
}

func fieldError(field string, err error) error {
	return apperr.Wrap(apperr.KindBadRequest, err.Error(), err).WithField(field)
}
