package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
)

// GetOrderActivity handles GET /api/orders/{orderId}/activity requests.
//
// @Summary      Order activity
// @Description  Returns the packing actions recorded for an order, newest first. Requires MongoDB request logging.
// @Tags         Orders
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        limit query int false "Page size" default(50) maximum(500)
// @Param        skip query int false "Entries to skip" default(0)
// @Success      200 {object} dto.SuccessResponse{data=model.OrderActivity} "Activity page"
// @Failure      400 {object} dto.ErrorResponse "Invalid paging parameters"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      503 {object} dto.ErrorResponse "Activity log unavailable"
// @Security     BearerAuth
// @Router       /api/orders/{orderId}/activity [get]
func (h *Handler) GetOrderActivity(c *gin.Context) {
	builder := NewResponseBuilder(c)

	limit, err := queryInt(c, "limit")
	if err != nil {
		builder.ErrorWithDetails(http.StatusBadRequest, "Invalid paging parameters", map[string]string{"limit": "must be an integer"}, err)
		return
	}
	skip, err := queryInt(c, "skip")
	if err != nil {
		builder.ErrorWithDetails(http.StatusBadRequest, "Invalid paging parameters", map[string]string{"skip": "must be an integer"}, err)
		return
	}

	ls := loggingServiceFrom(c)
	if ls == nil {
		builder.Error(http.StatusServiceUnavailable, dto.MsgUnavailable, nil)
		return
	}

	activity, err := ls.OrderActivity(c.Request.Context(), c.Param("orderId"), limit, skip)
	if err != nil {
		writeServiceError(builder, err)
		return
	}
	builder.SuccessOK(activity)
}

// queryInt reads an optional integer query parameter. Missing means zero.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
