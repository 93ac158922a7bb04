package handler

import (
	"context"
	"net/http"

	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
)

// MFAService defines the second factor and password recovery operations.
type MFAService interface {
	Status(ctx context.Context) (model.MFAStatus, error)
	Setup(ctx context.Context, email string, client model.ClientInfo) (model.SetupResult, error)
	VerifySetup(ctx context.Context, code string, client model.ClientInfo) error
	VerifyBackupCode(ctx context.Context, code string, client model.ClientInfo) error
	RegenerateBackupCodes(ctx context.Context, client model.ClientInfo) ([]string, error)
	Disable(ctx context.Context, password string, client model.ClientInfo) error
	RequestCode(ctx context.Context, purpose model.CodePurpose, client model.ClientInfo) error
	ResetPassword(ctx context.Context, code, newPassword string, client model.ClientInfo) error
}

// MFA handles HTTP endpoints for MFA management and password recovery.
type MFA struct {
	mfaService MFAService
	requests   RequestContext
	logger     *logger.Logger
}

// NewMFA creates a new MFA handler.
func NewMFA(mfaService MFAService, requests RequestContext, logger *logger.Logger) *MFA {
	return &MFA{
		mfaService: mfaService,
		requests:   requests,
		logger:     logger,
	}
}

type setupRequest struct {
	Email string `json:"email"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type resetConfirmRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type statusResponse struct {
	Enabled          bool   `json:"enabled"`
	Email            string `json:"email"`
	HasBackupCodes   bool   `json:"hasBackupCodes"`
	BackupCodesCount int    `json:"backupCodesCount"`
}

type backupCodesResponse struct {
	Success          bool     `json:"success"`
	BackupCodes      []string `json:"backupCodes"`
	ConfirmationSent *bool    `json:"confirmationSent,omitempty"`
}

// Status reports whether MFA is on and how many backup codes remain.
func (h *MFA) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.mfaService.Status(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Enabled:          status.Enabled,
		Email:            status.Email,
		HasBackupCodes:   status.BackupCodesRemaining > 0,
		BackupCodesCount: status.BackupCodesRemaining,
	})
}

// Setup enables MFA and returns the backup codes once.
func (h *MFA) Setup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	result, err := h.mfaService.Setup(r.Context(), req.Email, h.requests.GetClientFromContext(r.Context()))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, backupCodesResponse{
		Success:          true,
		BackupCodes:      result.BackupCodes,
		ConfirmationSent: &result.ConfirmationSent,
	})
}

// VerifySetup checks the confirmation code emailed after setup.
func (h *MFA) VerifySetup(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if req.Code == "" {
		handleError(w, h.logger, model.NewInputError("code", "code is required"))
		return
	}

	if err := h.mfaService.VerifySetup(r.Context(), req.Code, h.requests.GetClientFromContext(r.Context())); err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// VerifyBackup consumes one backup code.
func (h *MFA) VerifyBackup(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if req.Code == "" {
		handleError(w, h.logger, model.NewInputError("code", "code is required"))
		return
	}

	if err := h.mfaService.VerifyBackupCode(r.Context(), req.Code, h.requests.GetClientFromContext(r.Context())); err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// RegenerateBackupCodes replaces the whole batch and returns it once.
func (h *MFA) RegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.mfaService.RegenerateBackupCodes(r.Context(), h.requests.GetClientFromContext(r.Context()))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, backupCodesResponse{Success: true, BackupCodes: codes})
}

// Disable turns MFA off after re-checking the password.
func (h *MFA) Disable(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.mfaService.Disable(r.Context(), req.Password, h.requests.GetClientFromContext(r.Context())); err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// RequestPasswordReset emails a password reset code.
func (h *MFA) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	err := h.mfaService.RequestCode(r.Context(), model.PurposePasswordReset, h.requests.GetClientFromContext(r.Context()))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "a reset code was sent to the recovery email"})
}

// ConfirmPasswordReset sets a new password with a reset code.
func (h *MFA) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	err := h.mfaService.ResetPassword(r.Context(), req.Code, req.NewPassword, h.requests.GetClientFromContext(r.Context()))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "password reset"})
}
