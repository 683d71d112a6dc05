package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/salesops/internal/models"
	"example.com/salesops/internal/services"
	"example.com/salesops/internal/tracing"
)

// OrdersHandler handles order-related HTTP requests
type OrdersHandler struct {
	orderService *services.OrderService
	allocation   *services.AllocationService
	orders       services.OrderStore
	tracer       tracing.Tracer
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(orderService *services.OrderService, allocation *services.AllocationService, orders services.OrderStore, tracer tracing.Tracer) *OrdersHandler {
	return &OrdersHandler{
		orderService: orderService,
		allocation:   allocation,
		orders:       orders,
		tracer:       tracer,
	}
}

// RegisterRoutes registers the order routes
func (h *OrdersHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/v1/orders")
	group.POST("", h.HandleCreateOrder)
	group.GET("", h.HandleListOrders)
	group.GET("/:id", h.HandleGetOrder)
	group.PUT("/:id/lines", h.HandleImportLines)
	group.PUT("/:id/status", h.HandleUpdateStatus)
	group.POST("/:id/allocate", h.HandleAllocate)
	group.POST("/:id/ship", h.HandleShip)
}

// CreateOrderRequest opens a new order for a customer
type CreateOrderRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
}

// HandleCreateOrder creates a new order
func (h *OrdersHandler) HandleCreateOrder(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-create-order")
	defer h.tracer.EndTransaction(txn)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.tracer.AddAttribute(txn, "customer_id", req.CustomerID)

	order, err := h.orderService.CreateOrder(c.Request.Context(), req.CustomerID)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// HandleListOrders lists all order headers
func (h *OrdersHandler) HandleListOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// HandleGetOrder gets one order with its lines
func (h *OrdersHandler) HandleGetOrder(c *gin.Context) {
	order, err := h.orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ImportLinesRequest carries order lines as structured rows or as the pasted
// tab-separated block the operators work with. Exactly one must be set.
type ImportLinesRequest struct {
	Lines []services.LineInput `json:"lines"`
	TSV   string               `json:"tsv"`
}

// HandleImportLines replaces the order's lines
func (h *OrdersHandler) HandleImportLines(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-import-lines")
	defer h.tracer.EndTransaction(txn)

	var req ImportLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := req.Lines
	if len(inputs) == 0 && req.TSV != "" {
		parsed, err := ParseTSVLines(req.TSV)
		if err != nil {
			respondError(c, err)
			return
		}
		inputs = parsed
	}

	order, err := h.orderService.ImportLines(c.Request.Context(), c.Param("id"), inputs)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateStatusRequest selects the new status either by its label or by its
// 1-based position in the status list.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Index  int    `json:"index"`
}

// HandleUpdateStatus transitions an order to a new status
func (h *OrdersHandler) HandleUpdateStatus(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-update-order-status")
	defer h.tracer.EndTransaction(txn)

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var result *services.StatusUpdateResult
	var err error
	if req.Status != "" {
		result, err = h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), models.OrderStatus(req.Status))
	} else {
		result, err = h.orderService.UpdateStatusByIndex(c.Request.Context(), c.Param("id"), req.Index)
	}
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleAllocate reserves stock for an order's lines
func (h *OrdersHandler) HandleAllocate(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-allocate-order")
	defer h.tracer.EndTransaction(txn)

	result, err := h.allocation.AllocateOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ShipOrderRequest carries the shipping details
type ShipOrderRequest struct {
	Carrier        string `json:"carrier" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

// HandleShip marks an order shipped and runs fulfillment
func (h *OrdersHandler) HandleShip(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-ship-order")
	defer h.tracer.EndTransaction(txn)

	var req ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.orderService.Ship(c.Request.Context(), c.Param("id"), req.Carrier, req.TrackingNumber)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
