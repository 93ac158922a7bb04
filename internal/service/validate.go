package service

import (
	"net/mail"
	"strings"

	"github.com/dtroode/folio-server/internal/model"
)

// MinPasswordLength is the shortest password accepted on change or reset.
const MinPasswordLength = 8

// MaxPasswordLength is the bcrypt input limit in bytes.
const MaxPasswordLength = 72

// ValidateEmail accepts a bare address whose domain contains a dot.
func ValidateEmail(email string) error {
	if email == "" {
		return model.NewInputError("email", "email is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.NewInputError("email", "email is not a valid address")
	}

	at := strings.LastIndex(email, "@")
	if !strings.Contains(email[at+1:], ".") {
		return model.NewInputError("email", "email domain is not valid")
	}

	return nil
}

// ValidateNewPassword checks a proposed password and its confirmation. An
// empty confirm skips the match check.
func ValidateNewPassword(password, confirm string) error {
	if password == "" {
		return model.NewInputError("newPassword", "new password is required")
	}
	if len(password) < MinPasswordLength {
		return model.NewInputError("newPassword", "new password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLength {
		return model.NewInputError("newPassword", "new password must be at most 72 bytes")
	}
	if confirm != "" && confirm != password {
		return model.NewInputError("confirmPassword", "passwords do not match")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
