package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
)

const defaultAuditLimit = 50

// AuditReader lists recorded audit events, most recent first.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]model.AuditEvent, error)
}

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Admin serves the session status, the audit trail and the health probe.
type Admin struct {
	audit       AuditReader
	db          Pinger
	environment string
	now         model.Clock
	logger      *logger.Logger
}

// NewAdmin creates a new Admin handler.
func NewAdmin(audit AuditReader, db Pinger, environment string, clock model.Clock, logger *logger.Logger) *Admin {
	if clock == nil {
		clock = model.SystemClock
	}
	return &Admin{
		audit:       audit,
		db:          db,
		environment: environment,
		now:         clock,
		logger:      logger,
	}
}

type adminStatusResponse struct {
	Authenticated bool      `json:"authenticated"`
	Timestamp     time.Time `json:"timestamp"`
	Environment   string    `json:"environment"`
}

type auditResponse struct {
	Events []model.AuditEvent `json:"events"`
}

// Status confirms the session is live. The session guard has already run.
func (h *Admin) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, adminStatusResponse{
		Authenticated: true,
		Timestamp:     h.now().UTC(),
		Environment:   h.environment,
	})
}

// Audit lists recent audit events. The limit query parameter is optional.
func (h *Admin) Audit(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			handleError(w, h.logger, model.NewInputError("limit", "limit must be a positive integer"))
			return
		}
		limit = n
	}

	events, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if events == nil {
		events = []model.AuditEvent{}
	}

	writeJSON(w, http.StatusOK, auditResponse{Events: events})
}

// Health reports whether the database answers.
func (h *Admin) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("Admin handler: health check failed",
			"error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
