package model

import (
	"context"
	"time"
)

// AdminCredential is the singleton record holding the administrator's secrets.
type AdminCredential struct {
	PasswordHash  string
	MFAEnabled    bool
	RecoveryEmail string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BackupCodeHash is one unused backup code, stored only as a bcrypt hash.
// Position orders the batch; ID addresses the row for single-use removal.
type BackupCodeHash struct {
	ID       int64
	Position int
	Hash     string
}

// CredentialStore persists the administrator credential and its backup codes.
type CredentialStore interface {
	// Get returns ErrNotFound when the credential was never initialized.
	Get(ctx context.Context) (AdminCredential, error)
	// CreateIfAbsent inserts the credential unless one exists and reports whether it inserted.
	CreateIfAbsent(ctx context.Context, passwordHash string, now time.Time) (bool, error)
	SetPassword(ctx context.Context, passwordHash string, now time.Time) error
	// EnableMFA sets the flag and email and replaces the backup code batch in one transaction.
	EnableMFA(ctx context.Context, email string, hashes []string, now time.Time) error
	// DisableMFA clears the flag, the email and the backup code batch.
	DisableMFA(ctx context.Context, now time.Time) error
	// ReplaceBackupCodes swaps the whole batch; it never appends.
	ReplaceBackupCodes(ctx context.Context, hashes []string, now time.Time) error
	// BackupCodes returns the unused batch ordered by position.
	BackupCodes(ctx context.Context) ([]BackupCodeHash, error)
	// ConsumeBackupCode removes one hash and reports whether this call removed it.
	ConsumeBackupCode(ctx context.Context, id int64) (bool, error)
}

// MFAStatus is the read-only projection of the MFA configuration.
type MFAStatus struct {
	Enabled              bool
	Email                string
	BackupCodesRemaining int
}
