package model

import "time"

const (
	// SessionTTL is the fixed lifetime of an admin session.
	SessionTTL = 4 * time.Hour
	// ChallengeTTL bounds how long a password-verified login may wait for its second factor.
	ChallengeTTL = CodeTTL
)

// Session is an opaque bearer credential held in process memory.
type Session struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Clock returns the current time. Services take one so TTL behavior can be tested.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}
