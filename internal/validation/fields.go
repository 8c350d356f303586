package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)
	emailTLD   = regexp.MustCompile(`\.[A-Za-z]{2,}$`)
)

// Email checks the local@domain shape first and then the top-level domain.
func Email(raw string) Result {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Result{Status: Idle}
	}
	if !emailShape.MatchString(s) {
		return invalid("Please enter a valid email address")
	}
	domain := s[strings.LastIndex(s, "@")+1:]
	if !emailTLD.MatchString(domain) {
		return invalid("Email must end with a valid domain such as .com or .ca")
	}
	return valid()
}

// PostalCodeLength is the only accepted postal code length.
const PostalCodeLength = 5

// PostalCode strips everything but digits and requires exactly five of them.
// This is a shape check only.
func PostalCode(raw string) Result {
	digits := DigitsOnly(raw)
	switch n := len(digits); {
	case n == 0:
		return invalid(fmt.Sprintf("Postal code is required (%d digits)", PostalCodeLength))
	case n < PostalCodeLength:
		return invalid(fmt.Sprintf("Postal code is too short (%d of %d digits)", n, PostalCodeLength))
	case n > PostalCodeLength:
		return invalid(fmt.Sprintf("Postal code is too long (%d of %d digits)", n, PostalCodeLength))
	}
	return valid()
}

// Required fails when the trimmed value is empty.
func Required(raw, label string) Result {
	if strings.TrimSpace(raw) == "" {
		return invalid(label + " is required")
	}
	return valid()
}

// MinLength requires at least n characters after trimming.
func MinLength(raw string, n int, label string) Result {
	s := strings.TrimSpace(raw)
	if s == "" {
		return invalid(label + " is required")
	}
	if utf8.RuneCountInString(s) < n {
		return invalid(fmt.Sprintf("%s must be at least %d characters", label, n))
	}
	return valid()
}

// DigitsOnly drops every non-digit rune.
func DigitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
