package http

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
	"github.com/guttosm/pack-assistant/internal/middleware"
)

// ListCapacitySettings handles GET /api/capacity-settings requests.
//
// @Summary      List capacity settings
// @Description  Returns every max-per-box setting ordered by catalog number
// @Tags         Capacity Settings
// @Produce      json
// @Success      200 {object} dto.SuccessResponse "Capacity settings"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Security     BearerAuth
// @Router       /api/capacity-settings [get]
func (h *Handler) ListCapacitySettings(c *gin.Context) {
	builder := NewResponseBuilder(c)

	settings, err := h.capacities.GetAll(c.Request.Context())
	if err != nil {
		writeServiceError(builder, err)
		return
	}
	sort.Slice(settings, func(i, j int) bool {
		return settings[i].CatalogNumber < settings[j].CatalogNumber
	})
	builder.SuccessOK(settings)
}

// UpsertCapacitySetting handles PUT /api/capacity-settings/{catalogNumber} requests.
//
// @Summary      Set capacity
// @Description  Creates or replaces the max units per box of a catalog number. Sessions opened afterwards split with the new value.
// @Tags         Capacity Settings
// @Accept       json
// @Produce      json
// @Param        catalogNumber path string true "Catalog number"
// @Param        request body dto.UpsertCapacityRequest true "Max quantity per box"
// @Success      200 {object} dto.SuccessResponse "Stored setting"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Security     BearerAuth
// @Router       /api/capacity-settings/{catalogNumber} [put]
func (h *Handler) UpsertCapacitySetting(c *gin.Context) {
	builder := NewResponseBuilder(c)
	catalogNumber := c.Param("catalogNumber")

	var req dto.UpsertCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		builder.ValidationError(dto.ErrInvalidMaxQuantity)
		return
	}
	if err := req.Validate(); err != nil {
		builder.ValidationError(err)
		return
	}

	setting, err := h.capacities.Upsert(c.Request.Context(), catalogNumber, req.MaxQuantity, middleware.GetOperatorID(c))
	if err != nil {
		writeServiceError(builder, err)
		return
	}

	audit(c, middleware.ActionUpsertCapacity, "Capacity setting updated", map[string]interface{}{
		"catalog_number": setting.CatalogNumber,
		"max_quantity":   setting.MaxQuantity,
	})
	builder.SuccessOK(setting)
}

// DeleteCapacitySetting handles DELETE /api/capacity-settings/{catalogNumber} requests.
//
// @Summary      Remove capacity
// @Description  Removes the setting of a catalog number, which then packs unbounded
// @Tags         Capacity Settings
// @Produce      json
// @Param        catalogNumber path string true "Catalog number"
// @Success      204 "Setting removed"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized"
// @Failure      404 {object} dto.ErrorResponse "No setting for the catalog number"
// @Failure      500 {object} dto.ErrorResponse "Internal server error"
// @Security     BearerAuth
// @Router       /api/capacity-settings/{catalogNumber} [delete]
func (h *Handler) DeleteCapacitySetting(c *gin.Context) {
	builder := NewResponseBuilder(c)
	catalogNumber := c.Param("catalogNumber")

	if err := h.capacities.Delete(c.Request.Context(), catalogNumber); err != nil {
		writeServiceError(builder, err)
		return
	}

	audit(c, middleware.ActionDeleteCapacity, "Capacity setting removed", map[string]interface{}{
		"catalog_number": catalogNumber,
	})
	c.Status(http.StatusNoContent)
}
