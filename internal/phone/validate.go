package phone

import (
	"fmt"
	"strings"

	"github.com/wolfman30/harbor-homecare-web/internal/validation"
)

// Digits extracts the national digits from raw input. A leading "+<dial code>"
// typed by the visitor is dropped.
func (r Rule) Digits(raw string) string {
	trimmed := strings.TrimSpace(raw)
	digits := validation.DigitsOnly(trimmed)
	if strings.HasPrefix(trimmed, "+") {
		digits = strings.TrimPrefix(digits, strings.TrimPrefix(r.DialCode, "+"))
	}
	return digits
}

// Validate checks raw input against the rule. Empty input is idle.
func (r Rule) Validate(raw string) validation.Result {
	digits := r.Digits(raw)
	n := len(digits)
	if n == 0 {
		return validation.Result{Status: validation.Idle}
	}
	if n < r.MinDigits || n > r.MaxDigits {
		return validation.Fail(r.lengthMessage(n))
	}
	if !r.Matches(digits) {
		return validation.Fail(fmt.Sprintf("Enter a valid %s phone number", r.Name))
	}
	return validation.Pass()
}

func (r Rule) lengthMessage(n int) string {
	switch {
	case r.MinDigits == r.MaxDigits:
		return fmt.Sprintf("Phone number must be exactly %d digits (got %d)", r.MinDigits, n)
	case n < r.MinDigits:
		return fmt.Sprintf("Phone number must be at least %d digits (got %d)", r.MinDigits, n)
	default:
		return fmt.Sprintf("Phone number must be at most %d digits (got %d)", r.MaxDigits, n)
	}
}

// Validate looks up the country and validates raw against it.
func Validate(raw, countryCode string) validation.Result {
	r, ok := Lookup(countryCode)
	if !ok {
		return validation.Fail("Select a country")
	}
	return r.Validate(raw)
}

// E164 renders a valid number in international form, e.g. +17805550100.
func (r Rule) E164(raw string) (string, error) {
	if res := r.Validate(raw); !res.OK() {
		if res.Message == "" {
			return "", fmt.Errorf("phone: number is empty")
		}
		return "", fmt.Errorf("phone: %s", res.Message)
	}
	return r.DialCode + r.Digits(raw), nil
}
