package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
)

var (
	_ model.AuditSink = (*StoreSink)(nil)
	_ model.AuditSink = (*LogSink)(nil)
	_ model.AuditSink = (*ArchiveSink)(nil)
)

// StoreSink appends events to the audit table.
type StoreSink struct {
	store model.AuditStore
}

func NewStoreSink(store model.AuditStore) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Write(ctx context.Context, event model.AuditEvent) error {
	return s.store.Append(ctx, event)
}

// LogSink emits one structured log line per event.
type LogSink struct {
	logger *logger.Logger
}

func NewLogSink(logger *logger.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, event model.AuditEvent) error {
	s.logger.InfoContext(ctx, "audit",
		"event_id", event.ID,
		"type", string(event.Type),
		"success", event.Success,
		"ip", event.IP,
		"user_agent", event.UserAgent,
		"detail", event.Detail)
	return nil
}

// ArchiveSink copies each event to object storage as a standalone JSON document
// keyed by day, so the trail survives loss of the database.
type ArchiveSink struct {
	storage model.ObjectStorage
	prefix  string
}

func NewArchiveSink(storage model.ObjectStorage, prefix string) *ArchiveSink {
	return &ArchiveSink{storage: storage, prefix: prefix}
}

func (s *ArchiveSink) Write(ctx context.Context, event model.AuditEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	if err := s.storage.Put(ctx, s.Key(event), body, "application/json"); err != nil {
		return fmt.Errorf("failed to archive audit event: %w", err)
	}

	return nil
}

// Key returns the object key an event is archived under.
func (s *ArchiveSink) Key(event model.AuditEvent) string {
	return fmt.Sprintf("%s/%s/%s.json", s.prefix, event.CreatedAt.UTC().Format("2006/01/02"), event.ID)
}
