package middleware

import (
	"context"
	"net/http"

	httpctx "github.com/dtroode/folio-server/internal/api/http/context"
	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
)

// SessionGuard resolves a token to a live session.
type SessionGuard interface {
	RequireSession(ctx context.Context, token string) (model.Session, error)
}

// Authenticate rejects requests without a live session and injects the session
// into the context of those it lets through.
type Authenticate struct {
	guard          SessionGuard
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(guard SessionGuard, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{guard: guard, contextManager: contextManager, logger: logger}
}

// Handle wraps next with the session check.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, token := range httpctx.TokensFromRequest(r) {
			session, err := m.guard.RequireSession(r.Context(), token)
			if err != nil {
				m.logger.Debug("Authenticate middleware: session rejected",
					"path", r.URL.Path,
					"error", err.Error())
				continue
			}

			next.ServeHTTP(w, r.WithContext(m.contextManager.SetSessionToContext(r.Context(), session)))
			return
		}

		writeJSONError(w, http.StatusUnauthorized, "authentication required")
	})
}
