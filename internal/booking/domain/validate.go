package domain

import (
	"strings"

	"booking_portal_backend/platform/apperr"
	"booking_portal_backend/platform/phone"
)

const (
	MsgPhoneInvalid       = "Enter a Malian phone number in the form +223 XX XX XX XX"
	MsgCityRequired       = "City is required"
	MsgDescriptionMissing = "Describe the work you need done"
	MsgLocationRequired   = "Share your location or pick an address from the suggestions"
)

// ValidateForSubmission checks the form in a fixed order (phone, city,
// description, location) and returns the first failure as a field-scoped
// validation error. Drafts are never validated.
func ValidateForSubmission(form FormState) error {
	if !phone.IsMalian(form.Phone) {
		return apperr.FieldValidation(FieldPhone, MsgPhoneInvalid)
	}
	if strings.TrimSpace(form.City) == "" {
		return apperr.FieldValidation(FieldCity, MsgCityRequired)
	}
	if strings.TrimSpace(form.Description) == "" {
		return apperr.FieldValidation(FieldDescription, MsgDescriptionMissing)
	}
	if !form.HasCoordinates() {
		return apperr.FieldValidation(FieldLocation, MsgLocationRequired)
	}
	return nil
}

// FocusFor returns the input that should receive focus for an error on field.
// Location errors focus the address input.
func FocusFor(field string) string {
	if field == FieldLocation {
		return FieldAddress
	}
	return field
}
