package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/salesops/internal/metrics"
)

// MetricsHandler exposes the in-process metrics snapshot
type MetricsHandler struct {
	metrics *metrics.Metrics
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(m *metrics.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// RegisterRoutes registers the metrics routes
func (h *MetricsHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/metrics", h.HandleGetMetrics)
}

// HandleGetMetrics returns the current metrics snapshot
func (h *MetricsHandler) HandleGetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.GetSnapshot())
}
