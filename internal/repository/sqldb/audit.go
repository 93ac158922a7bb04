package sqldb

import (
	"context"
	"fmt"

	"github.com/dtroode/folio-server/internal/model"
)

var _ model.AuditStore = (*AuditRepository)(nil)

// AuditRepository is append-only; it exposes no update or delete.
type AuditRepository struct {
	db *Connection
}

func NewAuditRepository(db *Connection) *AuditRepository {
	return &AuditRepository{
		db: db,
	}
}

func (r *AuditRepository) Append(ctx context.Context, event model.AuditEvent) error {
	query := `INSERT INTO audit_events (id, type, success, ip, user_agent, detail, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID, string(event.Type), event.Success, event.IP, event.UserAgent, event.Detail, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}

	return nil
}

func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]model.AuditEvent, error) {
	query := `SELECT id, type, success, ip, user_agent, detail, created_at
			  FROM audit_events
			  ORDER BY created_at DESC
			  LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]model.AuditEvent, 0, limit)
	for rows.Next() {
		var (
			event model.AuditEvent
			typ   string
		)
		if err := rows.Scan(&event.ID, &typ, &event.Success, &event.IP, &event.UserAgent, &event.Detail, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		event.Type = model.AuditType(typ)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}

	return events, nil
}
