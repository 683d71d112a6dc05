package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/salesops/config"
	"example.com/salesops/internal/api/handlers"
	"example.com/salesops/internal/api/middleware"
	"example.com/salesops/internal/metrics"
	"example.com/salesops/internal/services"
	"example.com/salesops/internal/tracing"
)

// Services bundles everything the HTTP layer needs
type Services struct {
	Orders     *services.OrderService
	Allocation *services.AllocationService
	Inventory  *services.InventoryService
	Aggregates *services.AggregateService
	Export     *services.ExportService
	Customers  services.CustomerStore
	OrderStore services.OrderStore
	Metrics    *metrics.Metrics
}

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server
	svc        Services
	tracer     tracing.Tracer
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, svc Services, tracer tracing.Tracer) *Server {
	server := &Server{
		config: cfg,
		svc:    svc,
		tracer: tracer,
	}

	router := server.setupRouter()
	server.router = router

	httpServer := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
	}
	server.httpServer = httpServer

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	// Register handlers
	handlers.NewCustomersHandler(s.svc.Orders, s.svc.Aggregates, s.svc.Customers, s.tracer).RegisterRoutes(router)
	handlers.NewOrdersHandler(s.svc.Orders, s.svc.Allocation, s.svc.OrderStore, s.tracer).RegisterRoutes(router)
	handlers.NewInventoryHandler(s.svc.Inventory, s.tracer).RegisterRoutes(router)
	handlers.NewOpsHandler(s.svc.Aggregates, s.svc.Export, s.tracer).RegisterRoutes(router)
	handlers.NewPaymentsHandler().RegisterRoutes(router)
	handlers.NewMetricsHandler(s.svc.Metrics).RegisterRoutes(router)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
