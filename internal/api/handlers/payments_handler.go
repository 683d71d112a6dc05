package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PaymentsHandler reserves the payment reconciliation endpoints. CSV import
// and automatic matching are not implemented yet; the routes exist so
// clients can discover them and so the API surface is stable.
type PaymentsHandler struct{}

// NewPaymentsHandler creates a new payments handler
func NewPaymentsHandler() *PaymentsHandler {
	return &PaymentsHandler{}
}

// RegisterRoutes registers the payment routes
func (h *PaymentsHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/v1/payments")
	group.POST("/import", h.HandleImport)
	group.POST("/match", h.HandleMatch)
}

// HandleImport accepts a provider CSV for reconciliation
func (h *PaymentsHandler) HandleImport(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "payment import is not implemented"})
}

// HandleMatch matches imported payments against open orders
func (h *PaymentsHandler) HandleMatch(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "payment matching is not implemented"})
}
