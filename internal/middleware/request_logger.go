package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/logger"
	"github.com/guttosm/pack-assistant/internal/service"
	"github.com/rs/zerolog"
)

const requestLogMessage = "HTTP request"

// RequestLogger writes one console line per request and, when loggingService
// is set, a request log document tagged with the operator and order.
func RequestLogger(loggingService service.LoggingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := &model.LogEntry{
			Timestamp:  time.Now(),
			Message:    requestLogMessage,
			RequestID:  GetRequestID(c),
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			StatusCode: c.Writer.Status(),
			Duration:   time.Since(start).Milliseconds(),
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			OperatorID: GetOperatorID(c),
			OrderID:    c.Param("orderId"),
		}
		level := statusLevel(entry.StatusCode)
		entry.Level = level.String()
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			entry.Error = errs.Last().Error()
		}

		console := logger.Logger()
		event := console.WithLevel(level).
			Str("request_id", entry.RequestID).
			Str("method", entry.Method).
			Str("path", entry.Path).
			Int("status_code", entry.StatusCode).
			Int64("duration_ms", entry.Duration).
			Str("ip", entry.IP)
		if entry.OrderID != "" {
			event = event.Str("order_id", entry.OrderID)
		}
		if entry.OperatorID != "" {
			event = event.Str("operator_id", entry.OperatorID)
		}
		event.Msg(requestLogMessage)

		if loggingService != nil {
			persistEntry(loggingService, entry)
		}
	}
}

func statusLevel(statusCode int) zerolog.Level {
	switch {
	case statusCode >= 500:
		return zerolog.ErrorLevel
	case statusCode >= 400:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
