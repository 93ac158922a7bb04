package handler

import (
	"context"
	"net/http"
	"time"

	httpctx "github.com/dtroode/folio-server/internal/api/http/context"
	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
)

// AuthService defines login, logout and password change operations.
type AuthService interface {
	Login(ctx context.Context, password string, client model.ClientInfo) (model.LoginResult, error)
	CompleteLogin(ctx context.Context, challengeID, code, backupCode string, client model.ClientInfo) (model.Session, error)
	Logout(ctx context.Context, token string, client model.ClientInfo)
	ChangePassword(ctx context.Context, token, current, newPassword, confirm string, client model.ClientInfo) error
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService AuthService
	requests    RequestContext
	cookie      CookieConfig
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, requests RequestContext, cookie CookieConfig, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		requests:    requests,
		cookie:      cookie,
		logger:      logger,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type verifyLoginRequest struct {
	ChallengeID string `json:"challengeId"`
	Code        string `json:"code"`
	BackupCode  string `json:"backupCode"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type sessionResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type challengeResponse struct {
	Success     bool   `json:"success"`
	MFARequired bool   `json:"mfaRequired"`
	ChallengeID string `json:"challengeId"`
	CodeSent    bool   `json:"codeSent"`
	Message     string `json:"message"`
}

// Login checks the password and either sets the session cookie or opens an MFA challenge.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	client := h.requests.GetClientFromContext(r.Context())
	result, err := h.authService.Login(r.Context(), req.Password, client)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if result.MFARequired {
		message := "a verification code was sent to the recovery email"
		if !result.CodeSent {
			message = "the verification email could not be sent, use a backup code"
		}
		writeJSON(w, http.StatusOK, challengeResponse{
			Success:     true,
			MFARequired: true,
			ChallengeID: result.ChallengeID,
			CodeSent:    result.CodeSent,
			Message:     message,
		})
		return
	}

	h.writeSession(w, *result.Session)
}

// VerifyLogin completes an MFA login with an emailed code or a backup code.
func (h *Auth) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req verifyLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	client := h.requests.GetClientFromContext(r.Context())
	session, err := h.authService.CompleteLogin(r.Context(), req.ChallengeID, req.Code, req.BackupCode, client)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.writeSession(w, session)
}

// Logout revokes every presented token and clears the cookie. It succeeds
// for unknown or expired tokens too.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	client := h.requests.GetClientFromContext(r.Context())
	for _, token := range httpctx.TokensFromRequest(r) {
		h.authService.Logout(r.Context(), token, client)
	}

	h.cookie.clear(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "logged out"})
}

// ChangePassword replaces the password after re-checking the current one.
func (h *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requests.GetSessionFromContext(r.Context())
	if !ok {
		handleError(w, h.logger, model.ErrUnauthenticated)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	client := h.requests.GetClientFromContext(r.Context())
	err := h.authService.ChangePassword(r.Context(), session.Token, req.CurrentPassword, req.NewPassword, req.ConfirmPassword, client)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "password changed"})
}

func (h *Auth) writeSession(w http.ResponseWriter, session model.Session) {
	h.cookie.set(w, session)
	writeJSON(w, http.StatusOK, sessionResponse{
		Success:   true,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}
