package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/service"
	"github.com/rs/zerolog"
)

// Audit action types recorded for operator actions.
const (
	ActionOpenSession    = "open_session"
	ActionSetQuantity    = "set_quantity"
	ActionSetBoxNumber   = "set_box_number"
	ActionConnect        = "connect"
	ActionDisconnect     = "disconnect"
	ActionFlushDraft     = "flush_draft"
	ActionResetSession   = "reset_session"
	ActionUpsertCapacity = "upsert_capacity"
	ActionDeleteCapacity = "delete_capacity"
	ActionImportOrder    = "import_order"
)

// AuditLog records a completed operator action. The order comes from the
// orderId route parameter when the route has one.
func AuditLog(loggingService service.LoggingService, c *gin.Context, actionType string, message string, fields map[string]interface{}) {
	audit(loggingService, c, zerolog.InfoLevel, actionType, message, nil, fields)
}

// AuditLogError records an operator action that was rejected or failed.
func AuditLogError(loggingService service.LoggingService, c *gin.Context, actionType string, message string, err error, fields map[string]interface{}) {
	audit(loggingService, c, zerolog.ErrorLevel, actionType, message, err, fields)
}

func audit(loggingService service.LoggingService, c *gin.Context, level zerolog.Level, actionType, message string, err error, fields map[string]interface{}) {
	if loggingService == nil {
		return
	}

	entry := &model.LogEntry{
		Timestamp:  time.Now(),
		Level:      level.String(),
		Message:    message,
		RequestID:  GetRequestID(c),
		Method:     c.Request.Method,
		Path:       c.Request.URL.Path,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		OperatorID: GetOperatorID(c),
		OrderID:    c.Param("orderId"),
		ActionType: actionType,
		Fields:     fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	persistEntry(loggingService, entry)
}

// persistEntry hands entry to the async logger when one is running and
// otherwise writes it from a detached goroutine.
func persistEntry(loggingService service.LoggingService, entry *model.LogEntry) {
	if asyncLogger := GetAsyncLogger(); asyncLogger != nil {
		asyncLogger.Log(entry)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = loggingService.CreateLog(ctx, entry)
	}()
}
