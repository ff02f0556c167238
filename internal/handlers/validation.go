package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minFullNameLength = 2
	minPasswordLength = 6
)

// normalizeEmail lowercases and trims an email address, returning false when
// it is not syntactically valid.
func normalizeEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", false
	}
	return email, true
}

// validFullName reports whether the trimmed name has at least two characters.
func validFullName(fullName string) (string, bool) {
	fullName = strings.TrimSpace(fullName)
	return fullName, utf8.RuneCountInString(fullName) >= minFullNameLength
}

// validPassword reports whether the password has at least six characters.
func validPassword(password string) bool {
	return utf8.RuneCountInString(password) >= minPasswordLength
}
