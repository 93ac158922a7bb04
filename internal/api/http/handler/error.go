package handler

import (
	"errors"
	"net/http"

	"github.com/dtroode/folio-server/internal/logger"
	"github.com/dtroode/folio-server/internal/model"
)

const (
	msgAuthFailed    = "authentication failed"
	msgBackupInvalid = "invalid backup code"
	msgNotConfigured = "two-factor authentication is not configured"
	msgDependency    = "could not send the verification email, try again or use a backup code"
	msgRateLimited   = "too many requests, try again later"
	msgInternalError = "internal server error"
)

// handleError writes the response for err. Authentication failures collapse to
// one generic message; the cause stays in the server log and the audit trail.
func handleError(w http.ResponseWriter, log *logger.Logger, err error) {
	var inputErr *model.InputError
	switch {
	case errors.As(err, &inputErr):
		writeJSON(w, http.StatusBadRequest, failureResponse{
			Success: false,
			Message: inputErr.Message,
			Field:   inputErr.Field,
		})
	case model.IsAuthFailure(err):
		writeJSONError(w, http.StatusUnauthorized, msgAuthFailed)
	case errors.Is(err, model.ErrBackupCodeInvalid):
		writeJSONError(w, http.StatusOK, msgBackupInvalid)
	case errors.Is(err, model.ErrMFANotConfigured):
		writeJSONError(w, http.StatusOK, msgNotConfigured)
	case errors.Is(err, model.ErrDependency):
		writeJSONError(w, http.StatusOK, msgDependency)
	case errors.Is(err, model.ErrRateLimited):
		writeJSONError(w, http.StatusTooManyRequests, msgRateLimited)
	default:
		log.Error("HTTP handler: unexpected error",
			"error", err.Error())
		writeJSONError(w, http.StatusInternalServerError, msgInternalError)
	}
}
