package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials covers a wrong password. There is a single admin
	// account, so there is nothing else to distinguish.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when a session token is missing, unknown or expired.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrChallengeInvalid is returned when a pending MFA login challenge is unknown or expired.
	ErrChallengeInvalid = errors.New("login challenge invalid")

	// ErrCodeInvalid means no issued code matched the presented value and purpose.
	ErrCodeInvalid = errors.New("verification code invalid")
	// ErrCodeExpired means the matching code is past its expiry.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrCodeUsed means the matching code was already consumed.
	ErrCodeUsed = errors.New("verification code already used")
	// ErrBackupCodeInvalid means the presented backup code matched no stored hash.
	ErrBackupCodeInvalid = errors.New("backup code invalid")

	// ErrMFANotConfigured is returned when an operation needs a recovery email or an enabled MFA setup.
	ErrMFANotConfigured = errors.New("mfa not configured")
	// ErrDependency wraps failures of outbound collaborators such as the email provider.
	ErrDependency = errors.New("dependency failure")
	// ErrRateLimited is returned when a client exceeded its request budget.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidInput is the umbrella for InputError.
	ErrInvalidInput = errors.New("invalid input")
)

// InputError reports a malformed request field. It matches ErrInvalidInput with errors.Is.
type InputError struct {
	Field   string
	Message string
}

// NewInputError creates an InputError for the given field.
func NewInputError(field, message string) *InputError {
	return &InputError{Field: field, Message: message}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrInvalidInput) hold for every InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IsAuthFailure reports whether err is one of the failures that must reach the
// client as a generic authentication error.
func IsAuthFailure(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrChallengeInvalid),
		errors.Is(err, ErrCodeInvalid),
		errors.Is(err, ErrCodeExpired),
		errors.Is(err, ErrCodeUsed):
		return true
	default:
		return false
	}
}
