package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditType names an authentication-relevant event.
type AuditType string

const (
	AuditLoginSucceeded       AuditType = "login_succeeded"
	AuditLoginFailed          AuditType = "login_failed"
	AuditLoginMFARequired     AuditType = "login_mfa_required"
	AuditLogout               AuditType = "logout"
	AuditPasswordChanged      AuditType = "password_changed"
	AuditPasswordChangeFailed AuditType = "password_change_failed"
	AuditPasswordReset        AuditType = "password_reset"
	AuditPasswordResetFailed  AuditType = "password_reset_failed"
	AuditCodeIssued           AuditType = "code_issued"
	AuditCodeSendFailed       AuditType = "code_send_failed"
	AuditCodeVerified         AuditType = "code_verified"
	AuditCodeRejected         AuditType = "code_rejected"
	AuditBackupCodeUsed       AuditType = "backup_code_used"
	AuditBackupCodeRejected   AuditType = "backup_code_rejected"
	AuditBackupCodesGenerated AuditType = "backup_codes_generated"
	AuditMFAEnabled           AuditType = "mfa_enabled"
	AuditMFADisabled          AuditType = "mfa_disabled"
	AuditRateLimited          AuditType = "rate_limited"
)

// AuditEvent is one entry of the append-only audit trail.
type AuditEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      AuditType `json:"type"`
	Success   bool      `json:"success"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditStore appends and lists audit events. There is no update or delete.
type AuditStore interface {
	Append(ctx context.Context, event AuditEvent) error
	Recent(ctx context.Context, limit int) ([]AuditEvent, error)
}

// AuditSink receives recorded audit events.
type AuditSink interface {
	Write(ctx context.Context, event AuditEvent) error
}
