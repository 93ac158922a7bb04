package context

import (
	"context"
	"net/http"
	"strings"

	"github.com/dtroode/folio-server/internal/model"
)

type contextKey int

const (
	sessionKey contextKey = iota
	clientKey
)

const bearerPrefix = "Bearer "

var _ model.ContextManager = (*Manager)(nil)

// Manager represents an HTTP request context manager.
// It carries the authenticated session and the client description through
// the handler chain.
type Manager struct{}

// NewManager creates a new HTTP context manager instance.
//
// Returns a pointer to the newly created Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetSessionToContext stores the authenticated session in the request context.
//
// Parameters:
//   - ctx: The request context
//   - session: The session the request was authenticated with
//
// Returns a new context carrying the session.
func (m *Manager) SetSessionToContext(ctx context.Context, session model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSessionFromContext retrieves the authenticated session from the request context.
//
// Parameters:
//   - ctx: The request context
//
// Returns the session and a boolean indicating if a session was found.
func (m *Manager) GetSessionFromContext(ctx context.Context) (model.Session, bool) {
	session, ok := ctx.Value(sessionKey).(model.Session)
	if !ok || session.Token == "" {
		return model.Session{}, false
	}
	return session, true
}

// SetClientToContext stores the caller's IP address and user agent.
//
// Parameters:
//   - ctx: The request context
//   - client: The client description taken from the request
//
// Returns a new context carrying the client description.
func (m *Manager) SetClientToContext(ctx context.Context, client model.ClientInfo) context.Context {
	return context.WithValue(ctx, clientKey, client)
}

// GetClientFromContext retrieves the client description. A zero ClientInfo is
// returned when none was stored.
//
// Parameters:
//   - ctx: The request context
//
// Returns the client description.
func (m *Manager) GetClientFromContext(ctx context.Context) model.ClientInfo {
	client, _ := ctx.Value(clientKey).(model.ClientInfo)
	return client
}

// SessionCookieName is the cookie carrying the admin session token.
const SessionCookieName = "adminSession"

// TokensFromRequest lists every distinct session token the request carries,
// cookie first and Bearer header second. Callers try them in order so a stale
// cookie does not mask a valid header.
//
// Parameters:
//   - r: The incoming HTTP request
//
// Returns the candidate tokens, possibly none.
func TokensFromRequest(r *http.Request) []string {
	var tokens []string
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}

	header := r.Header.Get("Authorization")
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		if token := strings.TrimSpace(header[len(bearerPrefix):]); token != "" && (len(tokens) == 0 || tokens[0] != token) {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
