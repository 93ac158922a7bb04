// Package audit records authentication events to an append-only trail.
package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
)

// MaxRecent caps how many events a single listing returns.
const MaxRecent = 500

// Logger fans recorded events out to its sinks and lists recent ones from the store.
type Logger struct {
	store  model.AuditStore
	sinks  []model.AuditSink
	now    model.Clock
	logger *logger.Logger
}

// NewLogger creates an audit logger. The store is always written first.
func NewLogger(store model.AuditStore, clock model.Clock, logger *logger.Logger, sinks ...model.AuditSink) *Logger {
	if clock == nil {
		clock = model.SystemClock
	}
	return &Logger{
		store:  store,
		sinks:  append([]model.AuditSink{NewStoreSink(store)}, sinks...),
		now:    clock,
		logger: logger,
	}
}

// Record appends one event. Sink failures are logged and never returned, so an
// unavailable trail cannot block authentication.
func (l *Logger) Record(ctx context.Context, typ model.AuditType, success bool, client model.ClientInfo, detail string) {
	event := model.AuditEvent{
		ID:        uuid.New(),
		Type:      typ,
		Success:   success,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		Detail:    detail,
		CreatedAt: l.now(),
	}

	// the request may already be cancelled when a failure is recorded
	ctx = context.WithoutCancel(ctx)

	for _, sink := range l.sinks {
		if err := sink.Write(ctx, event); err != nil {
			l.logger.Error("Audit service: failed to write event",
				"event_id", event.ID,
				"type", string(event.Type),
				"sink", fmt.Sprintf("%T", sink),
				"error", err.Error())
		}
	}
}

// Recent returns up to limit events, newest first.
func (l *Logger) Recent(ctx context.Context, limit int) ([]model.AuditEvent, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}

	events, err := l.store.Recent(ctx, limit)
	if err != nil {
		l.logger.Error("Audit service: failed to list events",
			"limit", limit,
			"error", err.Error())
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}

	return events, nil
}
