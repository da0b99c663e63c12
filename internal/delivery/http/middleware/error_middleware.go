package middleware

import (
	"errors"
	"net/http"

	"go-network-backend/internal/delivery/http/response"
	"go-network-backend/internal/domain"
	"go-network-backend/pkg/apperror"
	"go-network-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed",
					zap.String("path", c.FullPath()),
					zap.String("request_id", c.GetString(string(domain.KeyRequestID))),
					zap.Error(err),
				)
				response.Error(c, appErr.Code, "An unexpected error occurred. Please try again later.", nil)
				return
			}
			var details any
			if len(appErr.Fields) > 0 {
				details = appErr.Fields
			}
			response.Error(c, appErr.Code, appErr.Message, details)
			return
		}

		// Never expose internal error details to clients
		logger.Log.Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(string(domain.KeyRequestID))),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
