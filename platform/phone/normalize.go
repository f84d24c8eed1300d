// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "ML"

// malianPattern accepts +223 followed by eight digits, with any run of spaces
// between the country code and each two-digit group.
var malianPattern = regexp.MustCompile(`^\+223(?: *[0-9]{2}){4}$`)

// IsMalian reports whether input is a +223 number in the accepted layout.
func IsMalian(input string) bool {
	return malianPattern.MatchString(strings.TrimSpace(input))
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the
// input with all whitespace removed.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return stripSpaces(trimmed)
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
