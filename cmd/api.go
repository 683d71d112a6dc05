package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"example.com/salesops/config"
	"example.com/salesops/internal/api"
	"example.com/salesops/internal/cache"
	"example.com/salesops/internal/database"
	"example.com/salesops/internal/messaging"
	"example.com/salesops/internal/metrics"
	"example.com/salesops/internal/repositories"
	"example.com/salesops/internal/search"
	"example.com/salesops/internal/services"
	"example.com/salesops/internal/tracing"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server for customers, orders and inventory`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, readOnlyDB, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		tracer = &tracing.NewRelicTracer{}
	}

	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search")
	}

	bus, err := messaging.NewServiceBusPublisher(cfg.Azure, "salesops-api")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Service Bus publisher, continuing without events")
	}
	if bus != nil {
		defer bus.Close()
	}

	metricsCollector := metrics.NewMetrics()

	svc, err := buildServices(cfg, db, readOnlyDB, redisCache, elasticClient, bus, metricsCollector)
	if err != nil {
		return err
	}

	server := api.NewServer(cfg, svc, tracer)

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()

	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutting down API server")
	return nil
}

// buildServices wires repositories and services onto the shared
// infrastructure. Both the API and the worker use it.
func buildServices(
	cfg config.Config,
	db, readOnlyDB *gorm.DB,
	redisCache *cache.RedisCache,
	elasticClient *search.ElasticClient,
	bus messaging.Publisher,
	metricsCollector *metrics.Metrics,
) (api.Services, error) {
	customerRepo := repositories.NewCustomerRepository(db, readOnlyDB)
	orderRepo := repositories.NewOrderRepository(db, readOnlyDB)
	skuRepo := repositories.NewSKURepository(db, readOnlyDB)
	ledgerRepo := repositories.NewLedgerRepository(db, readOnlyDB)
	counterRepo := repositories.NewCounterRepository(db)

	ids, err := services.NewIDGenerator(cfg.Ops, counterRepo)
	if err != nil {
		return api.Services{}, err
	}

	locks := services.NewOrderLocker()

	var indexer services.ExportIndexer
	if elasticClient != nil {
		indexer = elasticClient
	}

	fulfillment := services.NewFulfillmentService(orderRepo, skuRepo, ledgerRepo, metricsCollector)
	aggregates := services.NewAggregateService(customerRepo, orderRepo, redisCache)
	orders := services.NewOrderService(customerRepo, orderRepo, ids, fulfillment, aggregates, bus, metricsCollector, locks)
	allocation := services.NewAllocationService(orderRepo, skuRepo, ledgerRepo, locks, metricsCollector)
	inventory := services.NewInventoryService(skuRepo, ledgerRepo, ids, metricsCollector)
	export := services.NewExportService(customerRepo, orderRepo, indexer)

	return api.Services{
		Orders:     orders,
		Allocation: allocation,
		Inventory:  inventory,
		Aggregates: aggregates,
		Export:     export,
		Customers:  customerRepo,
		OrderStore: orderRepo,
		Metrics:    metricsCollector,
	}, nil
}
