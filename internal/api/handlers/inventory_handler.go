package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/salesops/internal/services"
	"example.com/salesops/internal/tracing"
)

// InventoryHandler handles SKU and stock movement HTTP requests
type InventoryHandler struct {
	inventory *services.InventoryService
	tracer    tracing.Tracer
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventory *services.InventoryService, tracer tracing.Tracer) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
		tracer:    tracer,
	}
}

// RegisterRoutes registers the inventory routes
func (h *InventoryHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/v1/skus")
	group.POST("", h.HandleRegisterSKU)
	group.GET("", h.HandleListSKUs)
	group.GET("/:code", h.HandleGetSKU)

	router.GET("/api/v1/orders/:id/movements", h.HandleOrderMovements)
}

// HandleRegisterSKU registers a purchased lot as a new SKU
func (h *InventoryHandler) HandleRegisterSKU(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-register-sku")
	defer h.tracer.EndTransaction(txn)

	var req services.SKUInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sku, err := h.inventory.RegisterSKU(c.Request.Context(), req)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sku)
}

// HandleListSKUs lists all SKUs
func (h *InventoryHandler) HandleListSKUs(c *gin.Context) {
	skus, err := h.inventory.ListSKUs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, skus)
}

// HandleGetSKU gets one SKU together with its movement history
func (h *InventoryHandler) HandleGetSKU(c *gin.Context) {
	sku, movements, err := h.inventory.GetSKU(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sku": sku, "movements": movements})
}

// HandleOrderMovements lists the ledger entries recorded for an order
func (h *InventoryHandler) HandleOrderMovements(c *gin.Context) {
	movements, err := h.inventory.OrderMovements(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}
