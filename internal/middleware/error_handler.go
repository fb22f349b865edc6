package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
	"github.com/guttosm/pack-assistant/internal/logger"
)

// ErrorHandler logs the errors handlers attached with c.Error. Client errors
// log at warn and the rest at error. A handler that attached an error without
// writing a response gets a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError,
				dto.NewError(dto.ErrCodeInternal, dto.MsgInternalError).WithRequestID(GetRequestID(c)))
		}

		console := logger.Logger()
		event := console.WithLevel(statusLevel(c.Writer.Status()))
		event.Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status_code", c.Writer.Status()).
			Strs("errors", c.Errors.Errors()).
			Msg("Request error")
	}
}
