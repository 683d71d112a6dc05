package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/salesops/internal/services"
	"example.com/salesops/internal/tracing"
)

// CustomersHandler handles customer-related HTTP requests
type CustomersHandler struct {
	orderService *services.OrderService
	aggregates   *services.AggregateService
	customers    services.CustomerStore
	tracer       tracing.Tracer
}

// NewCustomersHandler creates a new customers handler
func NewCustomersHandler(orderService *services.OrderService, aggregates *services.AggregateService, customers services.CustomerStore, tracer tracing.Tracer) *CustomersHandler {
	return &CustomersHandler{
		orderService: orderService,
		aggregates:   aggregates,
		customers:    customers,
		tracer:       tracer,
	}
}

// RegisterRoutes registers the customer routes
func (h *CustomersHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/v1/customers")
	group.POST("", h.HandleCreateCustomer)
	group.GET("", h.HandleListCustomers)
	group.GET("/:id", h.HandleGetCustomer)
	group.GET("/:id/aggregate", h.HandleGetCustomerAggregate)
}

// HandleCreateCustomer registers a new customer
func (h *CustomersHandler) HandleCreateCustomer(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-create-customer")
	defer h.tracer.EndTransaction(txn)

	var req services.CreateCustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.orderService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// HandleListCustomers lists all customers
func (h *CustomersHandler) HandleListCustomers(c *gin.Context) {
	customers, err := h.customers.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// HandleGetCustomer gets one customer
func (h *CustomersHandler) HandleGetCustomer(c *gin.Context) {
	customer, err := h.customers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// HandleGetCustomerAggregate serves a customer's purchase rollups
func (h *CustomersHandler) HandleGetCustomerAggregate(c *gin.Context) {
	agg, err := h.aggregates.GetCustomerAggregate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}
