package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/technofest-ar/platform-api/internal/errors"
)

// statusByCode maps application error codes to HTTP statuses
var statusByCode = map[string]int{
	apperrors.ErrCodeNotFound:        http.StatusNotFound,
	apperrors.ErrCodeValidationError: http.StatusBadRequest,
	apperrors.ErrCodeConflict:        http.StatusConflict,
	apperrors.ErrCodeExternalService: http.StatusBadGateway,
	apperrors.ErrCodeUnauthorized:    http.StatusUnauthorized,
	apperrors.ErrCodeForbidden:       http.StatusForbidden,
	apperrors.ErrCodeDatabaseError:   http.StatusInternalServerError,
	apperrors.ErrCodeInternalError:   http.StatusInternalServerError,
}

// respondError translates a service error into a JSON error response.
// Internal causes are not leaked to the client; the message of the AppError
// itself is safe by construction.
func respondError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := "internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		message = appErr.Message
	}

	c.JSON(status, gin.H{
		"error": message,
		"code":  code,
	})
}
