package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
	"github.com/guttosm/pack-assistant/internal/middleware"
)

// OpenSession handles POST /api/packing/{orderId}/open requests.
//
// @Summary      Open packing session
// @Description  Loads the order, splits its line items by capacity and restores the saved draft. Opening an order that is already open returns the running session.
// @Tags         Packing
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      200 {object} dto.SuccessResponse "Session snapshot"
// @Failure      400 {object} dto.ErrorResponse "A line item cannot be split"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "Order not found"
// @Failure      409 {object} dto.ErrorResponse "Order has no line items"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/packing/{orderId}/open [post]
func (h *Handler) OpenSession(c *gin.Context) {
	builder := NewResponseBuilder(c)

	snap, err := h.packing.Open(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		writeServiceError(builder, err)
		return
	}

	audit(c, middleware.ActionOpenSession, "Packing session opened", map[string]interface{}{
		"units": len(snap.Units),
		"boxes": len(snap.Boxes),
	})
	builder.SuccessOK(snap)
}

// GetSession handles GET /api/packing/{orderId} requests.
//
// @Summary      Get packing session
// @Description  Returns the units, packing state, connections and boxes of an open session
// @Tags         Packing
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      200 {object} dto.SuccessResponse "Session snapshot"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "No open session"
// @Security     BearerAuth
// @Router       /api/packing/{orderId} [get]
func (h *Handler) GetSession(c *gin.Context) {
	builder := NewResponseBuilder(c)

	snap, err := h.packing.Get(c.Param("orderId"))
	if err != nil {
		writeServiceError(builder, err)
		return
	}
	builder.SuccessOK(snap)
}

// CloseSession handles DELETE /api/packing/{orderId} requests.
//
// @Summary      Close packing session
// @Description  Saves any pending draft and releases the session
// @Tags         Packing
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      204 "Session closed"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "No open session"
// @Failure      500 {object} dto.ErrorResponse "Draft could not be saved"
// @Security     BearerAuth
// @Router       /api/packing/{orderId} [delete]
func (h *Handler) CloseSession(c *gin.Context) {
	builder := NewResponseBuilder(c)

	if err := h.packing.Close(c.Request.Context(), c.Param("orderId")); err != nil {
		writeServiceError(builder, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetQuantity handles PUT /api/packing/{orderId}/units/{unitId}/quantity requests.
//
// @Summary      Set packed quantity
// @Description  Sets how many pieces of a unit are packed. Values outside [0, unit_quantity] are clamped.
// @Tags         Packing
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        unitId path string true "Unit id"
// @Param        request body dto.SetQuantityRequest true "Packed quantity"
// @Success      200 {object} dto.SuccessResponse "Session snapshot"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "No open session or unknown unit"
// @Security     BearerAuth
// @Router       /api/packing/{orderId}/units/{unitId}/quantity [put]
func (h *Handler) SetQuantity(c *gin.Context) {
	builder := NewResponseBuilder(c)
	unitID := c.Param("unitId")

	req, err := bindJSON[dto.SetQuantityRequest](c)
	if err != nil {
		writeBindError(builder, err)
		return
	}

	snap, err := h.packing.SetQuantity(c.Request.Context(), c.Param("orderId"), unitID, *req.Quantity)
	if err != nil {
		writeServiceError(builder, err)
		return
	}

	audit(c, middleware.ActionSetQuantity, "Packed quantity changed", map[string]interface{}{
		"unit_id":   unitID,
		"requested": *req.Quantity,
		"quantity":  snap.State[unitID].Quantity,
	})
	builder.SuccessOK(snap)
}

// SetBoxNumber handles PUT /api/packing/{orderId}/units/{unitId}/box requests.
//
// @Summary      Move unit to box
// @Description  Detaches the unit from its connections and joins it to the box with the given number, or starts a new box when none exists. Boxes are renumbered afterwards.
// @Tags         Packing
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        unitId path string true "Unit id"
// @Param        request body dto.SetBoxNumberRequest true "Target box"
// @Success      200 {object} dto.SuccessResponse "Session snapshot"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "No open session or unknown unit"
// @Security     BearerAuth
// @Router       /api/packing/{orderId}/units/{unitId}/box [put]
func (h *Handler) SetBoxNumber(c *gin.Context) {
	builder := NewResponseBuilder(c)
	unitID := c.Param("unitId")

	var req dto.SetBoxNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		builder.ValidationError(dto.ErrInvalidBoxNumber)
		return
	}
	if err := req.Validate(); err != nil {
		builder.ValidationError(err)
		return
	}

	snap, err := h.packing.SetBoxNumber(c.Request.Context(), c.Param("orderId"), unitID, req.BoxNumber)
	if err != nil {
		writeServiceError(builder, err)
		return
	}

	audit(c, middleware.ActionSetBoxNumber, "Unit moved to box", map[string]interface{}{
		"unit_id":    unitID,
		"requested":  req.BoxNumber,
		"box_number": snap.State[unitID].BoxNumber,
	})
	builder.SuccessOK(snap)
}

// Connect handles POST /api/packing/{orderId}/connections requests.
//
// @Summary      Connect units
// @Description  Links two units so they are packed in the same box. Connecting an existing pair returns the existing connection; connecting a unit to itself is a no-op.
// @Tags         Packing
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Param        request body dto.ConnectRequest true "Units to connect"
// @Success      200 {object} dto.SuccessResponse{data=dto.ConnectResponse} "Connection result"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "No open session or unknown unit"
// @Security     BearerAuth
// @Router       /api/packing/{orderId}/connections [post]
func (h *Handler) Connect(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := bindJSON[dto.ConnectRequest](c)
	if err != nil {
		writeBindError(builder, err)
		return
	}

	conn, ok, snap, err := h.packing.Connect(c.Request.Context(), c.Param("orderId"), req.From, req.To)
	if err != nil {
		writeServiceError(builder, err)
		return
	}

	resp := dto.ConnectResponse{
		Connected: ok,
		Version:   snap.Version,
		Boxes:     snap.Boxes,
	}
	if ok {
		resp.Connection = &conn
		audit(c, middleware.ActionConnect, "Units connected", map[string]interface{}{
			"connection_id": conn.ID,
			"from":          conn.From,
			"to":            conn.To,
		})
	}
	builder.SuccessOK(resp)
}

// Disconnect handles DELETE /api/packing/{orderId}/connections/{connectionId} requests.
//
// @Summary      Disconnect units
// @Description  Removes a connection. Removing an unknown connection is not an error.
// @Tags         Packing
// @Produce      json
// @Param        orderId path string true "Order id"
// @Param        connectionId path string true "Connection id"
// @Success      200 {object} dto.SuccessResponse{data=dto.DisconnectResponse} "Disconnect result"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "No open session"
// @Security     BearerAuth
// @Router       /api/packing/{orderId}/connections/{connectionId} [delete]
func (h *Handler) Disconnect(c *gin.Context) {
	builder := NewResponseBuilder(c)
	connectionID := c.Param("connectionId")

	removed, snap, err := h.packing.Disconnect(c.Request.Context(), c.Param("orderId"), connectionID)
	if err != nil {
		writeServiceError(builder, err)
		return
	}

	if removed {
		audit(c, middleware.ActionDisconnect, "Units disconnected", map[string]interface{}{
			"connection_id": connectionID,
		})
	}
	builder.SuccessOK(dto.DisconnectResponse{
		Removed: removed,
		Version: snap.Version,
		Boxes:   snap.Boxes,
	})
}

// GetBoxes handles GET /api/packing/{orderId}/boxes requests.
//
// @Summary      Get boxes
// @Description  Returns the boxes derived from the session's current packing state
// @Tags         Packing
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      200 {object} dto.SuccessResponse{data=dto.BoxesResponse} "Boxes"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "No open session"
// @Security     BearerAuth
// @Router       /api/packing/{orderId}/boxes [get]
func (h *Handler) GetBoxes(c *gin.Context) {
	builder := NewResponseBuilder(c)
	orderID := c.Param("orderId")

	boxes, err := h.packing.Boxes(orderID)
	if err != nil {
		writeServiceError(builder, err)
		return
	}
	builder.SuccessOK(dto.BoxesResponse{OrderID: orderID, Boxes: boxes})
}

// FlushDraft handles POST /api/packing/{orderId}/flush requests.
//
// @Summary      Save draft now
// @Description  Persists the session's draft without waiting for the debounce window
// @Tags         Packing
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      204 "Draft saved"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "No open session"
// @Failure      500 {object} dto.ErrorResponse "Draft could not be saved"
// @Security     BearerAuth
// @Router       /api/packing/{orderId}/flush [post]
func (h *Handler) FlushDraft(c *gin.Context) {
	builder := NewResponseBuilder(c)

	if err := h.packing.Flush(c.Request.Context(), c.Param("orderId")); err != nil {
		middleware.AuditLogError(loggingServiceFrom(c), c, middleware.ActionFlushDraft, "Draft save failed", err, nil)
		writeServiceError(builder, err)
		return
	}

	audit(c, middleware.ActionFlushDraft, "Draft saved", nil)
	c.Status(http.StatusNoContent)
}

// ResetSession handles POST /api/packing/{orderId}/reset requests.
//
// @Summary      Reset session
// @Description  Drops all connections and quantity edits; every unit returns to its own box fully packed
// @Tags         Packing
// @Produce      json
// @Param        orderId path string true "Order id"
// @Success      200 {object} dto.SuccessResponse "Session snapshot"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "No open session"
// @Security     BearerAuth
// @Router       /api/packing/{orderId}/reset [post]
func (h *Handler) ResetSession(c *gin.Context) {
	builder := NewResponseBuilder(c)

	snap, err := h.packing.Reset(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		writeServiceError(builder, err)
		return
	}

	audit(c, middleware.ActionResetSession, "Packing session reset", map[string]interface{}{
		"boxes": len(snap.Boxes),
	})
	builder.SuccessOK(snap)
}
