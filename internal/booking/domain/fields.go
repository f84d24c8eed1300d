package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Form field names as used by clients.
const (
	FieldServiceID   = "serviceId"
	FieldAddress     = "address"
	FieldCity        = "city"
	FieldPostalCode  = "postalCode"
	FieldQuartier    = "quartier"
	FieldCommune     = "commune"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldTime        = "time"
	FieldIsUrgent    = "isUrgent"
	FieldPhone       = "phone"
	// FieldLocation scopes errors about missing coordinates.
	FieldLocation = "location"
)

var (
	ErrUnknownField     = errors.New("unknown form field")
	ErrReadOnlyField    = errors.New("form field is read-only")
	ErrInvalidTimeSlot  = errors.New("time must be morning, afternoon or evening")
	ErrInvalidFieldType = errors.New("unsupported value type")
)

// formFields are the names SetField accepts or reports as read-only.
var formFields = map[string]bool{
	FieldServiceID: true, FieldAddress: true, FieldCity: true, FieldPostalCode: true,
	FieldQuartier: true, FieldCommune: true, FieldDescription: true, FieldDate: true,
	FieldTime: true, FieldIsUrgent: true, FieldPhone: true,
}

// IsFormField reports whether name is a form input clients may address.
func IsFormField(name string) bool {
	return formFields[name]
}

// locationFields are the inputs disabled until location access is granted.
var locationFields = map[string]bool{
	FieldAddress:    true,
	FieldCity:       true,
	FieldPostalCode: true,
	FieldQuartier:   true,
	FieldCommune:    true,
}

// IsLocationField reports whether name is one of the address inputs gated on
// location permission.
func IsLocationField(name string) bool {
	return locationFields[name]
}

// SetField updates exactly one named field. The checkbox field coerces to bool,
// every other field to string. Phone and service are not editable here.
func SetField(form *FormState, name string, value any) error {
	switch name {
	case FieldPhone, FieldServiceID:
		return fmt.Errorf("%s: %w", name, ErrReadOnlyField)
	case FieldIsUrgent:
		b, err := coerceBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		form.IsUrgent = b
		return nil
	}

	s, err := coerceString(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	switch name {
	case FieldAddress:
		form.Address = s
	case FieldCity:
		form.City = s
	case FieldPostalCode:
		form.PostalCode = s
	case FieldQuartier:
		form.Quartier = s
	case FieldCommune:
		form.Commune = s
	case FieldDescription:
		form.Description = s
	case FieldDate:
		form.Date = strings.TrimSpace(s)
	case FieldTime:
		slot := TimeSlot(strings.TrimSpace(s))
		if slot != "" && !slot.Valid() {
			return ErrInvalidTimeSlot
		}
		form.Time = slot
	default:
		return fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
	return nil
}

func coerceBool(value any) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "off", "no":
			return false, nil
		case "1", "true", "on", "yes":
			return true, nil
		}
		return false, ErrInvalidFieldType
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	default:
		return false, ErrInvalidFieldType
	}
}

func coerceString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", ErrInvalidFieldType
	}
}
