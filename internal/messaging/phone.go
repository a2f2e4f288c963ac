package messaging

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCountryCode is prepended to bare subscriber numbers.
const DefaultCountryCode = "+91"

// ErrInvalidPhoneNumber is matched by every InvalidPhoneNumberError.
var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// InvalidPhoneNumberError carries the caller's original input.
type InvalidPhoneNumberError struct {
	Input string
}

func (e *InvalidPhoneNumberError) Error() string {
	return fmt.Sprintf("invalid mobile number for E.164: %s", e.Input)
}

func (e *InvalidPhoneNumberError) Is(target error) bool {
	return target == ErrInvalidPhoneNumber
}

// PhoneOptions tunes NormalizeE164.
type PhoneOptions struct {
	// DefaultCountryCode includes the leading +. Empty means DefaultCountryCode.
	DefaultCountryCode string
	// Permissive enables the catch-all rule for any all-digit number longer
	// than seven digits.
	Permissive bool
}

// NormalizeE164 coerces free-text input into +<country><subscriber>.
// Numbers that already start with + are returned without further checks.
func NormalizeE164(raw string, opts PhoneOptions) (string, error) {
	prefix := opts.DefaultCountryCode
	if prefix == "" {
		prefix = DefaultCountryCode
	}
	if !strings.HasPrefix(prefix, "+") {
		prefix = "+" + prefix
	}

	phone := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	if strings.HasPrefix(phone, "+") {
		return phone, nil
	}
	phone = strings.TrimPrefix(phone, "0")

	if isDigits(phone) {
		switch {
		case len(phone) == 10:
			return prefix + phone, nil
		case len(phone) == 12 && strings.HasPrefix(phone, "91"):
			return "+" + phone, nil
		case len(phone) == 11 && strings.HasPrefix(phone, "91"):
			return "+" + phone, nil
		case opts.Permissive && len(phone) > 7:
			return prefix + phone, nil
		}
	}
	return "", &InvalidPhoneNumberError{Input: raw}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
