package model

import "context"

// Hasher derives and checks one-way hashes of secrets.
type Hasher interface {
	Hash(secret string) (string, error)
	Compare(hash, secret string) (bool, error)
}

// Auditor records authentication events. It never fails the caller.
type Auditor interface {
	Record(ctx context.Context, typ AuditType, success bool, client ClientInfo, detail string)
}

// SessionRegistry tracks opaque tokens with a fixed lifetime.
type SessionRegistry interface {
	Create() (Session, error)
	Lookup(token string) (Session, bool)
	IsValid(token string) bool
	Revoke(token string)
}

// LoginResult is the outcome of a password check. Exactly one of Session and
// ChallengeID is set.
type LoginResult struct {
	Session     *Session
	MFARequired bool
	ChallengeID string
	// CodeSent is false when the login code could not be emailed; a backup code still works.
	CodeSent bool
}

// SetupResult carries the plaintext backup codes shown to the admin exactly once.
type SetupResult struct {
	BackupCodes      []string
	ConfirmationSent bool
}
