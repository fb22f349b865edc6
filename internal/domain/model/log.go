package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LogEntry is a stored log document. Request logs carry the HTTP fields;
// audit entries additionally name the operator action in ActionType.
type LogEntry struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Timestamp  time.Time              `bson:"timestamp" json:"timestamp"`
	Level      string                 `bson:"level" json:"level" example:"info"`
	Message    string                 `bson:"message" json:"message" example:"Units connected"`
	RequestID  string                 `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Method     string                 `bson:"method,omitempty" json:"method,omitempty" example:"POST"`
	Path       string                 `bson:"path,omitempty" json:"path,omitempty" example:"/api/packing/SO-1001/connections"`
	StatusCode int                    `bson:"status_code,omitempty" json:"status_code,omitempty"`
	Duration   int64                  `bson:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	IP         string                 `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent  string                 `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Error      string                 `bson:"error,omitempty" json:"error,omitempty"`
	OperatorID string                 `bson:"operator_id,omitempty" json:"operator_id,omitempty" example:"operator-7"`
	OrderID    string                 `bson:"order_id,omitempty" json:"order_id,omitempty" example:"SO-1001"`
	ActionType string                 `bson:"action_type,omitempty" json:"action_type,omitempty" example:"connect"`
	Fields     map[string]interface{} `bson:"fields,omitempty" json:"fields,omitempty"`
}

// IsAudit reports whether the entry records an operator action.
func (e *LogEntry) IsAudit() bool {
	return e.ActionType != ""
}

// LogQueryOptions filters log queries. Zero values do not filter.
type LogQueryOptions struct {
	RequestID string
	OrderID   string
	Action    string
	Level     string
	Method    string
	Path      string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Skip      int
	AuditOnly bool
}

// OrderActivity is one page of an order's audit trail, newest first.
type OrderActivity struct {
	OrderID string     `json:"order_id" example:"SO-1001"`
	Total   int64      `json:"total" example:"12"`
	Limit   int        `json:"limit" example:"50"`
	Skip    int        `json:"skip" example:"0"`
	Entries []LogEntry `json:"entries"`
}
