package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/circuitbreaker"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/middleware"
	"github.com/guttosm/pack-assistant/internal/service"
)

// PackingSessions is the session host the packing routes drive.
type PackingSessions interface {
	Open(ctx context.Context, orderID string) (service.SessionSnapshot, error)
	Get(orderID string) (service.SessionSnapshot, error)
	Boxes(orderID string) ([]model.Box, error)
	SetQuantity(ctx context.Context, orderID, unitID string, qty int) (service.SessionSnapshot, error)
	SetBoxNumber(ctx context.Context, orderID, unitID string, n int) (service.SessionSnapshot, error)
	Connect(ctx context.Context, orderID, from, to string) (model.Connection, bool, service.SessionSnapshot, error)
	Disconnect(ctx context.Context, orderID, connectionID string) (bool, service.SessionSnapshot, error)
	Reset(ctx context.Context, orderID string) (service.SessionSnapshot, error)
	Flush(ctx context.Context, orderID string) error
	Close(ctx context.Context, orderID string) error
}

// DraftBoxes loads the last saved boxes of an order.
type DraftBoxes interface {
	LoadDraftBoxes(ctx context.Context, orderID string) ([]model.Box, error)
}

// Handler provides HTTP handlers for orders, capacity settings, packing
// sessions and packing-list export.
type Handler struct {
	orders     service.OrderService
	capacities service.CapacitySettingsService
	packing    PackingSessions
	drafts     DraftBoxes
}

// NewHandler creates a new Handler instance. capacities and drafts may be nil;
// the routes that need them are then not registered.
func NewHandler(orders service.OrderService, capacities service.CapacitySettingsService, packing PackingSessions, drafts DraftBoxes) *Handler {
	return &Handler{
		orders:     orders,
		capacities: capacities,
		packing:    packing,
		drafts:     drafts,
	}
}

// writeServiceError maps a service error to its HTTP status.
func writeServiceError(builder *ResponseBuilder, err error) {
	var splitErr *service.SplitError
	switch {
	case errors.As(err, &splitErr):
		builder.ErrorWithDetails(http.StatusBadRequest, err.Error(), map[string]string{"item_id": splitErr.ItemID}, err)
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrUnitNotFound),
		errors.Is(err, service.ErrCapacitySettingNotFound):
		builder.Error(http.StatusNotFound, capitalize(err.Error()), err)
	case errors.Is(err, service.ErrInvalidBoxNumber),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrInvalidOrder):
		builder.Error(http.StatusBadRequest, capitalize(err.Error()), err)
	case errors.Is(err, service.ErrNoLineItems):
		builder.Error(http.StatusConflict, capitalize(err.Error()), err)
	case errors.Is(err, service.ErrRepositoryNotConfigured),
		errors.Is(err, circuitbreaker.ErrCircuitOpen):
		builder.Error(http.StatusServiceUnavailable, dto.MsgUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		builder.Error(http.StatusGatewayTimeout, dto.MsgTimeout, err)
	default:
		builder.Error(http.StatusInternalServerError, dto.MsgInternalError, err)
	}
}

// writeBindError reports a body that failed to decode or validate.
func writeBindError(builder *ResponseBuilder, err error) {
	var vErr *dto.ValidationError
	if errors.As(err, &vErr) {
		builder.ValidationError(vErr)
		return
	}
	builder.Error(http.StatusBadRequest, dto.MsgInvalidRequestBody, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// loggingServiceFrom returns the logging service attached by the router, or nil.
func loggingServiceFrom(c *gin.Context) service.LoggingService {
	ls, _ := c.Value(loggingServiceKey).(service.LoggingService)
	return ls
}

func audit(c *gin.Context, actionType, message string, fields map[string]interface{}) {
	middleware.AuditLog(loggingServiceFrom(c), c, actionType, message, fields)
}

// ImportOrder handles PUT /api/orders/{orderId} requests.
//
// @Summary      Import order
// @Description  Stores an order's line items so it can be opened for packing. Replaces an existing order with the same id.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Param        request body dto.ImportOrderRequest true "Order line items"
// @Success      200 {object} dto.SuccessResponse "Stored order"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      429 {object} dto.ErrorResponse "Too many requests - rate limit exceeded"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Security     BearerAuth
// @Router       /api/orders/{orderId} [put]
func (h *Handler) ImportOrder(c *gin.Context) {
	builder := NewResponseBuilder(c)
	orderID := c.Param("orderId")

	req, err := bindJSON[dto.ImportOrderRequest](c)
	if err != nil {
		writeBindError(builder, err)
		return
	}

	order := req.ToOrder(orderID)
	if err := h.orders.Import(c.Request.Context(), order); err != nil {
		writeServiceError(builder, err)
		return
	}

	audit(c, middleware.ActionImportOrder, "Order imported", map[string]interface{}{
		"line_items": len(order.Items),
	})
	builder.SuccessOK(order)
}

// GetOrder handles GET /api/orders/{orderId} requests.
//
// @Summary      Get order
// @Description  Returns an order and its line items
// @Tags         Orders
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      200 {object} dto.SuccessResponse "Order"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "Order not found"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/orders/{orderId} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	builder := NewResponseBuilder(c)

	order, err := h.orders.Get(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		writeServiceError(builder, err)
		return
	}
	builder.SuccessOK(order)
}
