package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/salesops/internal/services"
	"example.com/salesops/internal/tracing"
)

// OpsHandler exposes the batch operations normally run by the worker so
// operators can trigger them on demand.
type OpsHandler struct {
	aggregates *services.AggregateService
	export     *services.ExportService
	tracer     tracing.Tracer
}

// NewOpsHandler creates a new ops handler
func NewOpsHandler(aggregates *services.AggregateService, export *services.ExportService, tracer tracing.Tracer) *OpsHandler {
	return &OpsHandler{
		aggregates: aggregates,
		export:     export,
		tracer:     tracer,
	}
}

// RegisterRoutes registers the ops routes
func (h *OpsHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/v1/ops")
	group.POST("/aggregates/refresh", h.HandleRefreshAggregates)
	group.POST("/export/rebuild", h.HandleRebuildExport)
}

// HandleRefreshAggregates recomputes every customer's purchase aggregates
func (h *OpsHandler) HandleRefreshAggregates(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-refresh-aggregates")
	defer h.tracer.EndTransaction(txn)

	updated, err := h.aggregates.RefreshAll(c.Request.Context())
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers_updated": updated})
}

// HandleRebuildExport regenerates the analysis feed and reindexes it
func (h *OpsHandler) HandleRebuildExport(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-rebuild-export")
	defer h.tracer.EndTransaction(txn)

	rows, err := h.export.Rebuild(c.Request.Context())
	if err != nil {
		h.tracer.RecordError(txn, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": len(rows)})
}
