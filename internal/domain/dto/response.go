package dto

import (
	"net/http"
	"time"

	"github.com/guttosm/pack-assistant/internal/domain/model"
)

// Error codes carried in ErrorResponse.Error. Clients branch on these, not
// on messages.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeInternal       = "internal_error"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeForbidden      = "forbidden"
	ErrCodeNotFound       = "not_found"
	ErrCodeRateLimit      = "rate_limit_exceeded"
	ErrCodeConflict       = "conflict"
	ErrCodeTimeout        = "timeout"
	ErrCodeUnavailable    = "service_unavailable"
)

// Messages returned with the error codes above.
const (
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "An unexpected error occurred"
	MsgAPIKeyRequired     = "API key is required"
	MsgInvalidAPIKey      = "Invalid API key"
	MsgTokenRequired      = "Bearer token is required"
	MsgInvalidToken       = "Invalid or expired token"
	MsgRateLimitExceeded  = "Rate limit exceeded, try again later"
	MsgTimeout            = "Request timeout"
	MsgUnavailable        = "Storage is temporarily unavailable"
)

var statusCodes = map[int]string{
	http.StatusBadRequest:          ErrCodeInvalidRequest,
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusForbidden:           ErrCodeForbidden,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusRequestTimeout:      ErrCodeTimeout,
	http.StatusConflict:            ErrCodeConflict,
	http.StatusTooManyRequests:     ErrCodeRateLimit,
	http.StatusServiceUnavailable:  ErrCodeUnavailable,
	http.StatusGatewayTimeout:      ErrCodeTimeout,
	http.StatusUnprocessableEntity: ErrCodeInvalidRequest,
}

// SuccessResponse wraps successful API responses with metadata.
// @Description Successful API response wrapper
type SuccessResponse struct {
	// Data contains the actual response data, e.g. a packing session or its box list.
	Data interface{} `json:"data" swaggertype:"object"`
	// RequestID is the unique request identifier
	RequestID string `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Timestamp is when the response was generated
	Timestamp time.Time `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name SuccessResponse

// ConnectResponse reports the result of linking two units.
// @Description Result of a connect request
type ConnectResponse struct {
	// Connected is false when both ends were the same unit.
	Connected  bool              `json:"connected"`
	Connection *model.Connection `json:"connection,omitempty"`
	Version    int64             `json:"version"`
	Boxes      []model.Box       `json:"boxes"`
} // @name ConnectResponse

// DisconnectResponse reports the result of removing a connection.
// @Description Result of a disconnect request
type DisconnectResponse struct {
	Removed bool        `json:"removed"`
	Version int64       `json:"version"`
	Boxes   []model.Box `json:"boxes"`
} // @name DisconnectResponse

// BoxesResponse lists the derived boxes of an order.
// @Description Derived boxes of an order
type BoxesResponse struct {
	OrderID string      `json:"order_id" example:"SO-1001"`
	Boxes   []model.Box `json:"boxes"`
} // @name BoxesResponse

// ErrorResponse is the body of every non-2xx response.
// @Description Error response
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message,omitempty" example:"max_quantity: must be a positive integer"`
	// Details maps a request field to what is wrong with it.
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time         `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name ErrorResponse

// NewError stamps an error body with the current time.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{Error: code, Message: message, Timestamp: time.Now()}
}

// WithRequestID returns a copy carrying requestID.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// ErrCodeFromStatus maps an HTTP status to its error code. Unlisted statuses
// are reported as internal errors.
func ErrCodeFromStatus(status int) string {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	return ErrCodeInternal
}
