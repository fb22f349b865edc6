package http

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/guttosm/pack-assistant/internal/domain/dto"
	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/export"
	"github.com/guttosm/pack-assistant/internal/metrics"
	"github.com/guttosm/pack-assistant/internal/service"
)

// ExportPackingList handles GET /api/orders/{orderId}/packing-list requests.
//
// @Summary      Export packing list
// @Description  Writes one row per packed item with its box number and box weight. Uses the open session when there is one, otherwise the last saved draft.
// @Tags         Export
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        orderId path string true "Order id"
// @Param        format query string false "Output format" Enums(csv, xlsx) default(csv)
// @Success      200 {file} file "Packing list"
// @Failure      400 {object} dto.ErrorResponse "Unsupported format"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "No session or saved boxes for the order"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/orders/{orderId}/packing-list [get]
func (h *Handler) ExportPackingList(c *gin.Context) {
	builder := NewResponseBuilder(c)
	orderID := c.Param("orderId")

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		metrics.RecordPackingListExport(c.Query("format"), "invalid_format")
		builder.ErrorWithDetails(http.StatusBadRequest, err.Error(), map[string]string{"format": "must be csv or xlsx"}, nil)
		return
	}

	boxes, err := h.exportBoxes(c, orderID)
	if err != nil {
		metrics.RecordPackingListExport(string(format), "error")
		writeServiceError(builder, err)
		return
	}
	if len(boxes) == 0 {
		metrics.RecordPackingListExport(string(format), "not_found")
		builder.Error(http.StatusNotFound, "No boxes to export for order "+orderID, nil)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, boxes); err != nil {
		metrics.RecordPackingListExport(string(format), "error")
		builder.Error(http.StatusInternalServerError, dto.MsgInternalError, err)
		return
	}

	metrics.RecordPackingListExport(string(format), "success")
	log.Debug().
		Str("order_id", orderID).
		Str("format", string(format)).
		Int("boxes", len(boxes)).
		Msg("Packing list exported")

	c.Header("Content-Disposition", `attachment; filename="`+format.Filename(orderID)+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// exportBoxes returns the open session's boxes, falling back to the saved draft.
func (h *Handler) exportBoxes(c *gin.Context, orderID string) ([]model.Box, error) {
	boxes, err := h.packing.Boxes(orderID)
	if err == nil {
		return boxes, nil
	}
	if !errors.Is(err, service.ErrSessionNotFound) || h.drafts == nil {
		return nil, err
	}
	return h.drafts.LoadDraftBoxes(c.Request.Context(), orderID)
}
