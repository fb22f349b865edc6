package http

import (
	"github.com/gin-gonic/gin"
)

// RouteGroup defines a group of routes that can be registered.
type RouteGroup interface {
	// RegisterRoutes registers routes to the given router group.
	RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig)
}

// routeGroups returns the API route groups backed by handler. Groups whose
// service is not configured are left out.
func routeGroups(handler *Handler) []RouteGroup {
	groups := []RouteGroup{
		&OrderRoutes{handler: handler},
		&PackingRoutes{handler: handler},
	}
	if handler.capacities != nil {
		groups = append(groups, &CapacityRoutes{handler: handler})
	}
	return groups
}

// OrderRoutes registers order import and packing-list export routes.
type OrderRoutes struct {
	handler *Handler
}

// RegisterRoutes registers the order routes.
func (r *OrderRoutes) RegisterRoutes(rg *gin.RouterGroup, _ *RouterConfig) {
	orders := rg.Group("/orders")
	orders.PUT("/:orderId", r.handler.ImportOrder)
	orders.GET("/:orderId", r.handler.GetOrder)
	orders.GET("/:orderId/packing-list", r.handler.ExportPackingList)
	orders.GET("/:orderId/activity", r.handler.GetOrderActivity)
}

// CapacityRoutes registers max-per-box settings routes.
type CapacityRoutes struct {
	handler *Handler
}

// RegisterRoutes registers the capacity settings routes.
func (r *CapacityRoutes) RegisterRoutes(rg *gin.RouterGroup, _ *RouterConfig) {
	settings := rg.Group("/capacity-settings")
	settings.GET("", r.handler.ListCapacitySettings)
	settings.PUT("/:catalogNumber", r.handler.UpsertCapacitySetting)
	settings.DELETE("/:catalogNumber", r.handler.DeleteCapacitySetting)
}

// PackingRoutes registers packing session routes.
type PackingRoutes struct {
	handler *Handler
}

// RegisterRoutes registers the packing session routes.
func (r *PackingRoutes) RegisterRoutes(rg *gin.RouterGroup, _ *RouterConfig) {
	packing := rg.Group("/packing/:orderId")
	packing.POST("/open", r.handler.OpenSession)
	packing.GET("", r.handler.GetSession)
	packing.DELETE("", r.handler.CloseSession)
	packing.PUT("/units/:unitId/quantity", r.handler.SetQuantity)
	packing.PUT("/units/:unitId/box", r.handler.SetBoxNumber)
	packing.POST("/connections", r.handler.Connect)
	packing.DELETE("/connections/:connectionId", r.handler.Disconnect)
	packing.GET("/boxes", r.handler.GetBoxes)
	packing.POST("/flush", r.handler.FlushDraft)
	packing.POST("/reset", r.handler.ResetSession)
}
