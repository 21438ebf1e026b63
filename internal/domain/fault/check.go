package fault

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// CheckLength records field when the trimmed rune length of value falls
// outside [min, max].
func (e *ValidationError) CheckLength(field, value string, min, max int) {
	if n := utf8.RuneCountInString(strings.TrimSpace(value)); n < min || n > max {
		e.Add(field, fmt.Sprintf("must be between %d and %d characters", min, max), value)
	}
}

// CheckPhone records field when a non-empty value is not a valid phone number.
func (e *ValidationError) CheckPhone(field, value string) {
	if value != "" && !ValidPhone(value) {
		e.Add(field, "must contain 10 or 11 digits", value)
	}
}

// ValidPhone reports whether phone holds 10 or 11 digits once formatting
// characters such as spaces, dashes and parentheses are removed.
func ValidPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '+' || r == '.':
		default:
			return false
		}
	}
	return digits == 10 || digits == 11
}
