package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statusForError maps service errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrState), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrTransferFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes the error body for err. Server-side failures are logged
// at error level and their details are not sent to the client.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, action string) {
	status := statusForError(err)
	switch status {
	case http.StatusInternalServerError:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Failed to " + action})
	case http.StatusBadGateway:
		logger.Error("Payout failed, nothing was recorded", slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Payout could not be sent; the withdrawal was not recorded"})
	default:
		logger.Warn("Request rejected", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

// requireCaller returns the authenticated account or writes a 401.
func requireCaller(c *gin.Context, logger *slog.Logger) (domain.Address, bool) {
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		logger.Error("Caller address not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return caller, true
}

// int64Param parses a numeric path parameter or writes a 400.
func int64Param(c *gin.Context, logger *slog.Logger, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		logger.Warn("Invalid path parameter", slog.String("param", name), slog.String("value", c.Param(name)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + ": must be an integer"})
		return 0, false
	}
	return v, true
}
