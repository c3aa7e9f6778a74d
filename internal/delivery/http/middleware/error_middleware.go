package middleware

import (
	"errors"
	"net/http"

	"go-courier-booking-backend/internal/auth"
	"go-courier-booking-backend/internal/delivery/http/response"
	"go-courier-booking-backend/pkg/apperror"
	"go-courier-booking-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns errors appended to the context into the standard
// JSON envelope. Internal details are logged, never sent to clients.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		var authErr *auth.Error
		if errors.As(err, &authErr) {
			response.Error(c, statusForKind(authErr.Kind), authErr.Message, gin.H{
				"kind": authErr.Kind.String(),
			})
			return
		}

		logger.Log.Error("unhandled error", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}

func statusForKind(kind auth.Kind) int {
	switch kind {
	case auth.KindUnauthenticated:
		return http.StatusUnauthorized
	case auth.KindInvalidCredentials:
		return http.StatusUnauthorized
	case auth.KindNotFound:
		return http.StatusNotFound
	case auth.KindPartialRegistration:
		return http.StatusConflict
	case auth.KindUnauthorized:
		return http.StatusForbidden
	case auth.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
