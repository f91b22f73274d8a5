package leadform

import (
	"regexp"
	"strings"
)

var (
	emailRegex   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigitExpr = regexp.MustCompile(`\D`)
)

const maxPhoneDigits = 11

// ValidateEmail checks the basic local@domain.tld shape. Exotic RFC 5321
// addresses may be rejected.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePhone accepts Brazilian numbers with area code: 10 digits for
// landlines, 11 for mobiles. Formatting characters are ignored.
func ValidatePhone(phone string) bool {
	n := len(Digits(phone))
	return n >= 10 && n <= 11
}

// Digits strips every non-digit character.
func Digits(s string) string {
	return nonDigitExpr.ReplaceAllString(s, "")
}

// FormatPhone applies the (DD) NNNNN-NNNN display mask to raw input.
// Applying it to its own output returns the same text.
func FormatPhone(value string) string {
	digits := Digits(value)
	if len(digits) > maxPhoneDigits {
		digits = digits[:maxPhoneDigits]
	}

	switch n := len(digits); {
	case n <= 2:
		return digits
	case n <= 7:
		return "(" + digits[:2] + ") " + digits[2:]
	case n <= 10:
		return "(" + digits[:2] + ") " + digits[2:6] + "-" + digits[6:]
	default:
		return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:]
	}
}

// normalize trims the surrounding whitespace the browser sends with inputs.
func normalize(value string) string {
	return strings.TrimSpace(value)
}
