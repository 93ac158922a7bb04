package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
	"github.com/dtroode/folio-server/internal/ratelimit"
)

// ClientGetter reads the client description stored by the Client middleware.
type ClientGetter interface {
	GetClientFromContext(ctx context.Context) model.ClientInfo
}

// RateLimit rejects a client's requests once it exceeds the limiter's budget.
// Rejected requests never reach the wrapped handler.
type RateLimit struct {
	limiter        ratelimit.Limiter
	policy         string
	audit          model.Auditor
	contextManager ClientGetter
	logger         *logger.Logger
}

// NewRateLimit creates a new RateLimit middleware for the named policy.
func NewRateLimit(
	limiter ratelimit.Limiter,
	policy string,
	audit model.Auditor,
	contextManager ClientGetter,
	logger *logger.Logger,
) *RateLimit {
	return &RateLimit{
		limiter:        limiter,
		policy:         policy,
		audit:          audit,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Handle wraps next with per-IP throttling. A limiter failure lets the request
// through so a cache outage does not lock the admin out.
func (m *RateLimit) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := m.contextManager.GetClientFromContext(r.Context())

		decision, err := m.limiter.Allow(r.Context(), client.IP)
		if err != nil {
			m.logger.Error("RateLimit middleware: limiter unavailable",
				"policy", m.policy,
				"error", err.Error())
			next.ServeHTTP(w, r)
			return
		}

		if !decision.Allowed {
			m.audit.Record(r.Context(), model.AuditRateLimited, false, client, "policy="+m.policy+" path="+r.URL.Path)
			m.logger.Warn("RateLimit middleware: request rejected",
				"policy", m.policy,
				"ip", client.IP)

			retry := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeJSONError(w, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}
