package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
)

// Auth is the checkpoint every admin operation passes through.
//
// A token moves Unauthenticated -> Authenticated on login and back to
// Unauthenticated, for good, on logout or expiry. When MFA is on, a correct
// password only yields a short-lived challenge; the session is minted once the
// second factor is presented against that challenge.
type Auth struct {
	creds      *Credentials
	mfa        *MFA
	sessions   model.SessionRegistry
	challenges model.SessionRegistry
	audit      model.Auditor
	logger     *logger.Logger
}

func NewAuth(
	creds *Credentials,
	mfa *MFA,
	sessions model.SessionRegistry,
	challenges model.SessionRegistry,
	audit model.Auditor,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		creds:      creds,
		mfa:        mfa,
		sessions:   sessions,
		challenges: challenges,
		audit:      audit,
		logger:     logger,
	}
}

// Login checks the password. Without MFA it mints a session; with MFA it opens
// a challenge and emails a login code.
func (a *Auth) Login(ctx context.Context, password string, client model.ClientInfo) (model.LoginResult, error) {
	if password == "" {
		return model.LoginResult{}, model.NewInputError("password", "password is required")
	}

	ok, err := a.creds.VerifyPassword(ctx, password)
	if err != nil {
		a.logger.Error("Auth service: failed to verify password",
			"ip", client.IP,
			"error", err.Error())
		return model.LoginResult{}, err
	}
	if !ok {
		a.audit.Record(ctx, model.AuditLoginFailed, false, client, "reason=invalid_password")
		a.logger.Info("Auth service: login rejected",
			"ip", client.IP)
		return model.LoginResult{}, model.ErrInvalidCredentials
	}

	cred, err := a.creds.Get(ctx)
	if err != nil {
		return model.LoginResult{}, err
	}

	if !cred.MFAEnabled {
		session, err := a.mintSession(ctx, client, "")
		if err != nil {
			return model.LoginResult{}, err
		}
		return model.LoginResult{Session: &session}, nil
	}

	challenge, err := a.challenges.Create()
	if err != nil {
		return model.LoginResult{}, fmt.Errorf("failed to create login challenge: %w", err)
	}

	sent := true
	if err := a.mfa.RequestCode(ctx, model.PurposeLogin, client); err != nil {
		if !errors.Is(err, model.ErrDependency) {
			a.challenges.Revoke(challenge.Token)
			return model.LoginResult{}, err
		}
		a.logger.Warn("Auth service: login code not sent, backup code still accepted",
			"ip", client.IP,
			"error", err.Error())
		sent = false
	}

	a.audit.Record(ctx, model.AuditLoginMFARequired, true, client, "")
	a.logger.Info("Auth service: password accepted, second factor required",
		"ip", client.IP,
		"code_sent", sent)

	return model.LoginResult{
		MFARequired: true,
		ChallengeID: challenge.Token,
		CodeSent:    sent,
	}, nil
}

// CompleteLogin finishes an MFA login with either an emailed code or a backup code.
func (a *Auth) CompleteLogin(ctx context.Context, challengeID, code, backupCode string, client model.ClientInfo) (model.Session, error) {
	if challengeID == "" {
		return model.Session{}, model.NewInputError("challengeId", "challenge id is required")
	}
	if code == "" && backupCode == "" {
		return model.Session{}, model.NewInputError("code", "code or backup code is required")
	}

	if !a.challenges.IsValid(challengeID) {
		a.audit.Record(ctx, model.AuditLoginFailed, false, client, "reason=challenge_invalid")
		return model.Session{}, model.ErrChallengeInvalid
	}

	var err error
	factor := "code"
	if code != "" {
		err = a.mfa.VerifyCode(ctx, code, model.PurposeLogin, client)
	} else {
		factor = "backup_code"
		err = a.mfa.VerifyBackupCode(ctx, backupCode, client)
		if errors.Is(err, model.ErrBackupCodeInvalid) {
			err = model.ErrInvalidCredentials
		}
	}
	if err != nil {
		if model.IsAuthFailure(err) {
			a.audit.Record(ctx, model.AuditLoginFailed, false, client, "factor="+factor+" reason="+err.Error())
		}
		return model.Session{}, err
	}

	a.challenges.Revoke(challengeID)

	return a.mintSession(ctx, client, "factor="+factor)
}

// Logout revokes token. It never fails.
func (a *Auth) Logout(ctx context.Context, token string, client model.ClientInfo) {
	a.sessions.Revoke(token)
	a.audit.Record(ctx, model.AuditLogout, true, client, "")
}

// RequireSession returns the live session for token or ErrUnauthenticated.
func (a *Auth) RequireSession(_ context.Context, token string) (model.Session, error) {
	session, ok := a.sessions.Lookup(token)
	if !ok {
		return model.Session{}, model.ErrUnauthenticated
	}
	return session, nil
}

// ChangePassword needs both a live session and the current password. The new
// hash is written only after both checks pass.
func (a *Auth) ChangePassword(ctx context.Context, token, current, newPassword, confirm string, client model.ClientInfo) error {
	if _, err := a.RequireSession(ctx, token); err != nil {
		return err
	}

	if current == "" {
		return model.NewInputError("currentPassword", "current password is required")
	}
	if err := ValidateNewPassword(newPassword, confirm); err != nil {
		return err
	}

	if err := a.creds.ReplacePassword(ctx, current, newPassword); err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			a.audit.Record(ctx, model.AuditPasswordChangeFailed, false, client, "reason=invalid_password")
		}
		return err
	}

	a.audit.Record(ctx, model.AuditPasswordChanged, true, client, "")
	a.logger.Info("Auth service: password changed",
		"ip", client.IP)

	return nil
}

func (a *Auth) mintSession(ctx context.Context, client model.ClientInfo, detail string) (model.Session, error) {
	session, err := a.sessions.Create()
	if err != nil {
		a.logger.Error("Auth service: failed to create session",
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	a.audit.Record(ctx, model.AuditLoginSucceeded, true, client, detail)
	a.logger.Info("Auth service: login succeeded",
		"ip", client.IP)

	return session, nil
}
