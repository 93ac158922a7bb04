package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/mailer"
	"github.com/dtroode/folio-server/internal/model"
)

// MFA orchestrates recovery email, one-time codes, backup codes and password reset.
type MFA struct {
	creds  *Credentials
	codes  *Codes
	mailer model.Mailer
	hasher model.Hasher
	audit  model.Auditor
	logger *logger.Logger
}

func NewMFA(
	creds *Credentials,
	codes *Codes,
	mailer model.Mailer,
	hasher model.Hasher,
	audit model.Auditor,
	logger *logger.Logger,
) *MFA {
	return &MFA{
		creds:  creds,
		codes:  codes,
		mailer: mailer,
		hasher: hasher,
		audit:  audit,
		logger: logger,
	}
}

// Setup enables MFA for email and returns a fresh batch of plaintext backup
// codes. A setup confirmation code is emailed on a best-effort basis.
func (m *MFA) Setup(ctx context.Context, email string, client model.ClientInfo) (model.SetupResult, error) {
	email = normalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return model.SetupResult{}, err
	}

	codes, hashes, err := m.generateBatch()
	if err != nil {
		m.logger.Error("MFA service: failed to generate backup codes",
			"error", err.Error())
		return model.SetupResult{}, err
	}

	if err := m.creds.EnableMFA(ctx, email, hashes); err != nil {
		return model.SetupResult{}, err
	}

	m.audit.Record(ctx, model.AuditMFAEnabled, true, client, "")
	m.audit.Record(ctx, model.AuditBackupCodesGenerated, true, client, fmt.Sprintf("count=%d", len(codes)))
	m.logger.Info("MFA service: mfa enabled",
		"backup_codes", len(codes))

	sent := true
	if err := m.RequestCode(ctx, model.PurposeSetup, client); err != nil {
		m.logger.Warn("MFA service: setup confirmation not sent",
			"error", err.Error())
		sent = false
	}

	return model.SetupResult{
		BackupCodes:      codes,
		ConfirmationSent: sent,
	}, nil
}

// RequestCode issues a code for purpose and emails it to the recovery address.
// Without a recovery email it returns ErrMFANotConfigured and issues nothing.
// A delivery failure returns an error wrapping ErrDependency.
func (m *MFA) RequestCode(ctx context.Context, purpose model.CodePurpose, client model.ClientInfo) error {
	cred, err := m.creds.Get(ctx)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	if cred.RecoveryEmail == "" {
		m.audit.Record(ctx, model.AuditCodeSendFailed, false, client, "purpose="+string(purpose)+" reason=no_recovery_email")
		return model.ErrMFANotConfigured
	}

	code, err := m.codes.Issue(ctx, purpose, client)
	if err != nil {
		return err
	}

	msg := mailer.CodeMessage(cred.RecoveryEmail, purpose, code, m.codes.TTL())
	if err := m.mailer.Send(ctx, msg); err != nil {
		m.logger.Error("MFA service: failed to send code",
			"purpose", string(purpose),
			"error", err.Error())
		m.audit.Record(ctx, model.AuditCodeSendFailed, false, client, "purpose="+string(purpose))
		if !errors.Is(err, model.ErrDependency) {
			err = fmt.Errorf("%w: %v", model.ErrDependency, err)
		}
		return err
	}

	m.audit.Record(ctx, model.AuditCodeIssued, true, client, "purpose="+string(purpose))
	m.logger.Info("MFA service: code sent",
		"purpose", string(purpose))

	return nil
}

// VerifyCode consumes a live code for purpose.
func (m *MFA) VerifyCode(ctx context.Context, code string, purpose model.CodePurpose, client model.ClientInfo) error {
	err := m.codes.TryConsume(ctx, code, purpose)
	switch {
	case err == nil:
		m.audit.Record(ctx, model.AuditCodeVerified, true, client, "purpose="+string(purpose))
		return nil
	case isCodeRejection(err):
		m.audit.Record(ctx, model.AuditCodeRejected, false, client, "purpose="+string(purpose)+" reason="+err.Error())
		m.logger.Info("MFA service: code rejected",
			"purpose", string(purpose),
			"reason", err.Error())
		return err
	default:
		return err
	}
}

// VerifySetup checks the code emailed after setup.
func (m *MFA) VerifySetup(ctx context.Context, code string, client model.ClientInfo) error {
	return m.VerifyCode(ctx, code, model.PurposeSetup, client)
}

// VerifyBackupCode scans the unused batch in order with bcrypt and removes the
// first match. The batch never exceeds BackupCodeCount entries, so the scan is
// bounded. Any miss, including a code already used, returns ErrBackupCodeInvalid.
func (m *MFA) VerifyBackupCode(ctx context.Context, code string, client model.ClientInfo) error {
	candidate := CanonicalizeBackupCode(code)
	if candidate == "" {
		m.audit.Record(ctx, model.AuditBackupCodeRejected, false, client, "")
		return model.ErrBackupCodeInvalid
	}

	batch, err := m.creds.BackupCodes(ctx)
	if err != nil {
		return err
	}

	for _, entry := range batch {
		ok, err := m.hasher.Compare(entry.Hash, candidate)
		if err != nil {
			return fmt.Errorf("failed to compare backup code: %w", err)
		}
		if !ok {
			continue
		}

		consumed, err := m.creds.ConsumeBackupCodeHash(ctx, entry.ID)
		if err != nil {
			return err
		}
		if !consumed {
			// a concurrent request used it first
			break
		}

		m.audit.Record(ctx, model.AuditBackupCodeUsed, true, client, fmt.Sprintf("remaining=%d", len(batch)-1))
		m.logger.Info("MFA service: backup code used",
			"remaining", len(batch)-1)
		return nil
	}

	m.audit.Record(ctx, model.AuditBackupCodeRejected, false, client, "")
	return model.ErrBackupCodeInvalid
}

// ResetPassword sets newPassword only after consuming a password reset code in
// the same call.
func (m *MFA) ResetPassword(ctx context.Context, code, newPassword string, client model.ClientInfo) error {
	if code == "" {
		return model.NewInputError("code", "code is required")
	}
	if err := ValidateNewPassword(newPassword, ""); err != nil {
		return err
	}

	if err := m.VerifyCode(ctx, code, model.PurposePasswordReset, client); err != nil {
		if isCodeRejection(err) {
			m.audit.Record(ctx, model.AuditPasswordResetFailed, false, client, "reason="+err.Error())
		}
		return err
	}

	if err := m.creds.SetPassword(ctx, newPassword); err != nil {
		return err
	}

	m.audit.Record(ctx, model.AuditPasswordReset, true, client, "")
	return nil
}

// Status reports the MFA configuration without exposing any secret.
func (m *MFA) Status(ctx context.Context) (model.MFAStatus, error) {
	cred, err := m.creds.Get(ctx)
	if err != nil {
		return model.MFAStatus{}, err
	}

	batch, err := m.creds.BackupCodes(ctx)
	if err != nil {
		return model.MFAStatus{}, err
	}

	return model.MFAStatus{
		Enabled:              cred.MFAEnabled,
		Email:                cred.RecoveryEmail,
		BackupCodesRemaining: len(batch),
	}, nil
}

// RegenerateBackupCodes replaces the whole batch. Previously issued one-time
// codes are left alone.
func (m *MFA) RegenerateBackupCodes(ctx context.Context, client model.ClientInfo) ([]string, error) {
	cred, err := m.creds.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !cred.MFAEnabled {
		return nil, model.ErrMFANotConfigured
	}

	codes, hashes, err := m.generateBatch()
	if err != nil {
		return nil, err
	}

	if err := m.creds.ReplaceBackupCodes(ctx, hashes); err != nil {
		return nil, err
	}

	m.audit.Record(ctx, model.AuditBackupCodesGenerated, true, client, fmt.Sprintf("count=%d", len(codes)))
	return codes, nil
}

// Disable turns MFA off after re-checking the password.
func (m *MFA) Disable(ctx context.Context, password string, client model.ClientInfo) error {
	if password == "" {
		return model.NewInputError("password", "password is required")
	}

	ok, err := m.creds.VerifyPassword(ctx, password)
	if err != nil {
		return err
	}
	if !ok {
		m.audit.Record(ctx, model.AuditMFADisabled, false, client, "reason=invalid_password")
		return model.ErrInvalidCredentials
	}

	if err := m.creds.DisableMFA(ctx); err != nil {
		return err
	}

	m.audit.Record(ctx, model.AuditMFADisabled, true, client, "")
	m.logger.Info("MFA service: mfa disabled")
	return nil
}

func (m *MFA) generateBatch() ([]string, []string, error) {
	codes, err := newBackupCodeBatch(BackupCodeCount)
	if err != nil {
		return nil, nil, err
	}

	hashes := make([]string, 0, len(codes))
	for _, code := range codes {
		hash, err := m.hasher.Hash(code)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash backup code: %w", err)
		}
		hashes = append(hashes, hash)
	}

	return codes, hashes, nil
}

func isCodeRejection(err error) bool {
	return errors.Is(err, model.ErrCodeInvalid) ||
		errors.Is(err, model.ErrCodeExpired) ||
		errors.Is(err, model.ErrCodeUsed)
}
