package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
)

// respondError translates an application error into an HTTP response. Internal
// details (cause, file, line) never leave the server.
func respondError(c *gin.Context, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if appErr.Details != "" {
		body["details"] = appErr.Details
	}
	c.JSON(statusFor(appErr.Code), body)
}

func statusFor(code string) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrCodeIncompleteProfile:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
