package auth

import (
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 8

	// WeakPasswordMessage is returned for any password failing ValidatePassword.
	WeakPasswordMessage = "Password must be at least 8 characters long and include at least one uppercase letter, one lowercase letter, one number, and one symbol."
)

// passwordSymbols is the set of characters counted as symbols.
const passwordSymbols = "-#!$@£%^&*()_+|~=`{}[]:\";'<>?,./\\ "

// ValidatePassword reports whether pw has at least 8 characters including an
// uppercase letter, a lowercase letter, a digit and a symbol. Letters and
// digits are counted in the ASCII ranges only.
func ValidatePassword(pw string) bool {
	if utf8.RuneCountInString(pw) < minPasswordLength {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
