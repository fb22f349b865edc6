package http

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
)

// Validator is implemented by request bodies that check their own fields.
type Validator interface {
	Validate() error
}

// errEmptyBody is returned by bindJSON for a request without a body.
var errEmptyBody = &dto.ValidationError{Field: "body", Message: "is required"}

// bindJSON decodes the JSON body into a new T and runs its Validate method
// when it has one.
func bindJSON[T any](c *gin.Context) (*T, error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyBody
		}
		return nil, err
	}
	if v, ok := any(&req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &req, nil
}
