package service

import (
	"strings"

	"github.com/vector-portal/backend/internal/common/constants"
)

const specialChars = `!@#$%^&*(),.?":{}|<>`

type CredentialValidator struct{}

func NewCredentialValidator() CredentialValidator {
	return CredentialValidator{}
}

// Validate checks the password policy rules in order and stops at the first
// violation, so the caller surfaces exactly one rule per attempt. The
// username deliberately carries no charset or length rule here; the store's
// uniqueness constraint is its only guard.
func (cv CredentialValidator) Validate(password string) error {
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < constants.PasswordMinLength {
		return ErrPasswordTooShort
	}

	if !containsClass(password, isUppercase) {
		return ErrPasswordMissingUppercase
	}

	if !containsClass(password, isLowercase) {
		return ErrPasswordMissingLowercase
	}

	if !containsClass(password, isDigit) {
		return ErrPasswordMissingDigit
	}

	if !containsClass(password, isSpecial) {
		return ErrPasswordMissingSpecialChar
	}

	return nil
}

func containsClass(value string, match func(rune) bool) bool {
	for _, r := range value {
		if match(r) {
			return true
		}
	}
	return false
}

func isUppercase(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isLowercase(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpecial(r rune) bool {
	return strings.ContainsRune(specialChars, r)
}
