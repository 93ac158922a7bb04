package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CodeTTL is the lifetime of an emailed one-time code.
const CodeTTL = 10 * time.Minute

// CodePurpose scopes a one-time code to the operation it may authorize.
type CodePurpose string

const (
	// PurposeLogin codes complete an MFA login.
	PurposeLogin CodePurpose = "login"
	// PurposePasswordReset codes authorize a password reset.
	PurposePasswordReset CodePurpose = "password_reset"
	// PurposeSetup codes confirm the recovery email after MFA setup.
	PurposeSetup CodePurpose = "setup"
)

// Valid reports whether p is a known purpose.
func (p CodePurpose) Valid() bool {
	switch p {
	case PurposeLogin, PurposePasswordReset, PurposeSetup:
		return true
	default:
		return false
	}
}

// OneTimeCode is an issued numeric verification code.
type OneTimeCode struct {
	ID        uuid.UUID
	Code      string
	Purpose   CodePurpose
	IssuedAt  time.Time
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	IP        string
	UserAgent string
}

// CodeStore persists one-time codes.
type CodeStore interface {
	Create(ctx context.Context, code OneTimeCode) error
	// Consume marks one unused, unexpired code matching code and purpose as used.
	// At most one concurrent caller can succeed for the same record.
	Consume(ctx context.Context, code string, purpose CodePurpose, now time.Time) (bool, error)
	// Latest returns the most recently issued record for code and purpose, or ErrNotFound.
	Latest(ctx context.Context, code string, purpose CodePurpose) (OneTimeCode, error)
	// DeleteExpiredBefore removes records that expired before cutoff.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
