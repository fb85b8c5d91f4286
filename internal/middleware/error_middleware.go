package middleware

import (
	"errors"
	"net/http"

	"github.com/emanuuele/girls-chat-api/internal/transport/httpdto"
	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"
	"github.com/emanuuele/girls-chat-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.ErrorfCtx(c.Request.Context(), "request error: %s", err.Error())
		}
		status, code := StatusForError(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
	}
}

// StatusForError maps sentinel errors onto HTTP status and API code.
func StatusForError(err error) (int, string) {
	switch {
	case errors.Is(err, chat_errors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, chat_errors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, chat_errors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, chat_errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, chat_errors.ErrAlreadyExists):
		return http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, chat_errors.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
