package http

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
	"github.com/guttosm/pack-assistant/internal/middleware"
)

// Envelopes are rendered synchronously by gin, so they can go back to the
// pool as soon as the response is written.
var (
	successPool = sync.Pool{New: func() interface{} { return new(dto.SuccessResponse) }}
	errorPool   = sync.Pool{New: func() interface{} { return new(dto.ErrorResponse) }}
)

// ResponseBuilder writes the uniform success and error envelopes.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a builder for c.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success writes data wrapped in a dto.SuccessResponse.
func (b *ResponseBuilder) Success(statusCode int, data interface{}) {
	resp, _ := successPool.Get().(*dto.SuccessResponse)
	if resp == nil {
		resp = new(dto.SuccessResponse)
	}
	*resp = dto.SuccessResponse{
		Data:      data,
		RequestID: middleware.GetRequestID(b.c),
		Timestamp: time.Now(),
	}

	b.c.JSON(statusCode, resp)

	*resp = dto.SuccessResponse{}
	successPool.Put(resp)
}

// SuccessOK writes a 200 response.
func (b *ResponseBuilder) SuccessOK(data interface{}) {
	b.Success(http.StatusOK, data)
}

// Error aborts the request with an error envelope. A non-nil err is attached
// to the gin context for the error handler middleware.
func (b *ResponseBuilder) Error(statusCode int, message string, err error) {
	b.ErrorWithDetails(statusCode, message, nil, err)
}

// ErrorWithDetails is Error with per-field details.
func (b *ResponseBuilder) ErrorWithDetails(statusCode int, message string, details map[string]string, err error) {
	resp, _ := errorPool.Get().(*dto.ErrorResponse)
	if resp == nil {
		resp = new(dto.ErrorResponse)
	}
	*resp = dto.ErrorResponse{
		Error:     dto.ErrCodeFromStatus(statusCode),
		Message:   message,
		Details:   details,
		RequestID: middleware.GetRequestID(b.c),
		Timestamp: time.Now(),
	}

	if err != nil {
		_ = b.c.Error(err)
	}
	b.c.AbortWithStatusJSON(statusCode, resp)

	*resp = dto.ErrorResponse{}
	errorPool.Put(resp)
}

// ValidationError writes a 400. A *dto.ValidationError names its field in
// the details.
func (b *ResponseBuilder) ValidationError(err error) {
	var vErr *dto.ValidationError
	if errors.As(err, &vErr) {
		b.ErrorWithDetails(http.StatusBadRequest, vErr.Error(), map[string]string{vErr.Field: vErr.Message}, nil)
		return
	}
	b.Error(http.StatusBadRequest, err.Error(), nil)
}
