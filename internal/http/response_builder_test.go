package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuilderContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/packing/ORD-1/boxes", nil)
	middleware.RequestID()(c)
	return c, w
}

func TestResponseBuilder_SuccessOK(t *testing.T) {
	c, w := newBuilderContext()

	NewResponseBuilder(c).SuccessOK(dto.BoxesResponse{
		OrderID: "ORD-1",
		Boxes:   []model.Box{{BoxNumber: 1, Items: []model.BoxItem{{UnitID: "L1_split_1", CatalogNumber: "X1", Quantity: 10}}}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data      dto.BoxesResponse `json:"data"`
		RequestID string            `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), resp.RequestID)
	require.Len(t, resp.Data.Boxes, 1)
	assert.Equal(t, "L1_split_1", resp.Data.Boxes[0].Items[0].UnitID)
}

func TestResponseBuilder_PooledEnvelopesAreReset(t *testing.T) {
	first, w1 := newBuilderContext()
	NewResponseBuilder(first).ErrorWithDetails(http.StatusBadRequest, "Invalid", map[string]string{"box_number": "must be at least 1"}, nil)

	second, w2 := newBuilderContext()
	NewResponseBuilder(second).Error(http.StatusNotFound, "Session not found", nil)

	var a, b dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w1.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &b))
	assert.Equal(t, "must be at least 1", a.Details["box_number"])
	assert.Empty(t, b.Details)
	assert.NotEqual(t, a.RequestID, b.RequestID)
}

func TestResponseBuilder_Error(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		err      error
		wantCode string
	}{
		{name: "not found", code: http.StatusNotFound, wantCode: dto.ErrCodeNotFound},
		{name: "unavailable keeps the cause", code: http.StatusServiceUnavailable, err: errors.New("circuit open")},
		{name: "internal", code: http.StatusInternalServerError, err: errors.New("boom"), wantCode: dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newBuilderContext()
			NewResponseBuilder(c).Error(tt.code, "message", tt.err)

			assert.Equal(t, tt.code, w.Code)
			assert.True(t, c.IsAborted())
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, dto.ErrCodeFromStatus(tt.code), resp.Error)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, resp.Error)
			}
			if tt.err != nil {
				require.Len(t, c.Errors, 1)
				assert.ErrorIs(t, c.Errors[0].Err, tt.err)
			} else {
				assert.Empty(t, c.Errors)
			}
		})
	}
}

func TestResponseBuilder_ValidationError(t *testing.T) {
	t.Run("field error", func(t *testing.T) {
		c, w := newBuilderContext()
		NewResponseBuilder(c).ValidationError(&dto.ValidationError{Field: "quantity", Message: "is required"})

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "is required", resp.Details["quantity"])
	})

	t.Run("plain error", func(t *testing.T) {
		c, w := newBuilderContext()
		NewResponseBuilder(c).ValidationError(errors.New("bad input"))

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "bad input", resp.Message)
		assert.Empty(t, resp.Details)
	})
}
