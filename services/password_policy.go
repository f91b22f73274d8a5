package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MinAdminPasswordLength counts characters, not bytes
const MinAdminPasswordLength = 12

// ValidateAdminPassword checks a candidate ADMIN_PASSWORD_HASH password: at
// least MinAdminPasswordLength characters, three of the four character
// classes (upper, lower, digit, symbol) and no copy of the user name.
func ValidateAdminPassword(user, password string) error {
	if len([]rune(password)) < MinAdminPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinAdminPasswordLength)
	}
	if user != "" && strings.Contains(strings.ToLower(password), strings.ToLower(user)) {
		return errors.New("password must not contain the user name")
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsNumber(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			symbol = true
		}
	}

	classes := 0
	for _, ok := range []bool{upper, lower, digit, symbol} {
		if ok {
			classes++
		}
	}
	if classes < 3 {
		return errors.New("password must mix at least three of: uppercase, lowercase, digits, symbols")
	}
	return nil
}
