package service

import (
	"errors"

	commonerrors "github.com/vector-portal/backend/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		401,
		"invalid username or password",
	)

	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_TAKEN",
		commonerrors.CategoryConflict,
		409,
		"username already exists, please choose a different username",
	)
)

// Password policy violations, one per rule. Messages mirror what the
// registration form surfaces to the user.
var (
	ErrPasswordTooShort = commonerrors.NewDomainError(
		"PASSWORD_TOO_SHORT",
		commonerrors.CategoryValidation,
		400,
		"password must be at least 8 characters long",
	)

	ErrPasswordMissingUppercase = commonerrors.NewDomainError(
		"PASSWORD_MISSING_UPPERCASE",
		commonerrors.CategoryValidation,
		400,
		"password must contain at least one uppercase letter",
	)

	ErrPasswordMissingLowercase = commonerrors.NewDomainError(
		"PASSWORD_MISSING_LOWERCASE",
		commonerrors.CategoryValidation,
		400,
		"password must contain at least one lowercase letter",
	)

	ErrPasswordMissingDigit = commonerrors.NewDomainError(
		"PASSWORD_MISSING_DIGIT",
		commonerrors.CategoryValidation,
		400,
		"password must contain at least one digit",
	)

	ErrPasswordMissingSpecialChar = commonerrors.NewDomainError(
		"PASSWORD_MISSING_SPECIAL_CHAR",
		commonerrors.CategoryValidation,
		400,
		"password must contain at least one special character",
	)
)

func IsValidationError(err error) bool {
	var de commonerrors.DomainError
	if !errors.As(err, &de) {
		return false
	}
	return de.Category() == commonerrors.CategoryValidation
}
