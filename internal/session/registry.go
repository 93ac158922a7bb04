// Package session keeps the process-local set of opaque admin session tokens.
//
// Tokens are 32 random bytes encoded as unpadded base64url. Expired entries are
// dropped lazily when looked up and swept on every Create, so the map never
// outgrows the number of tokens issued within one TTL.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/dtroode/folio-server/internal/model"
)

const tokenBytes = 32

// Registry holds live tokens and their expiry.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      model.Clock
	sessions map[string]model.Session
}

// NewRegistry creates a registry whose tokens live for ttl.
func NewRegistry(ttl time.Duration, clock model.Clock) *Registry {
	if clock == nil {
		clock = model.SystemClock
	}
	return &Registry{
		ttl:      ttl,
		now:      clock,
		sessions: make(map[string]model.Session),
	}
}

// Create mints a new token.
func (r *Registry) Create() (model.Session, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return model.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := r.now()
	s := model.Session{
		Token:     base64.RawURLEncoding.EncodeToString(buf),
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep(now)
	r.sessions[s.Token] = s

	return s, nil
}

// Lookup returns the session for token if it is present and unexpired.
func (r *Registry) Lookup(token string) (model.Session, bool) {
	if token == "" {
		return model.Session{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok {
		return model.Session{}, false
	}
	if s.Expired(r.now()) {
		delete(r.sessions, token)
		return model.Session{}, false
	}

	return s, true
}

// IsValid reports whether token is present and unexpired.
func (r *Registry) IsValid(token string) bool {
	_, ok := r.Lookup(token)
	return ok
}

// Revoke removes token. Unknown tokens are ignored.
func (r *Registry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, token)
}

// Len returns the number of stored tokens, expired ones included until swept.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

func (r *Registry) sweep(now time.Time) {
	for token, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, token)
		}
	}
}
