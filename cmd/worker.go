package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/salesops/config"
	"example.com/salesops/internal/cache"
	"example.com/salesops/internal/database"
	"example.com/salesops/internal/messaging"
	"example.com/salesops/internal/metrics"
	"example.com/salesops/internal/search"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker that refreshes customer aggregates and rebuilds the analysis export feed on a schedule`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
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

	g, ctx := errgroup.WithContext(ctx)

	db, readOnlyDB, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search")
	}

	bus, err := messaging.NewServiceBusPublisher(cfg.Azure, "salesops-worker")
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

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return errors.Wrap(err, "failed to create scheduler")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Worker.AggregateInterval),
		gocron.NewTask(func() {
			updated, err := svc.Aggregates.RefreshAll(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Aggregate refresh failed")
				metricsCollector.IncrementCounter("worker.aggregate_refresh.errors")
				return
			}
			metricsCollector.IncrementCounter("worker.aggregate_refresh.runs")
			metricsCollector.SetGauge("worker.aggregate_refresh.customers", int64(updated))
			log.Info().Int("customers", updated).Msg("Customer aggregates refreshed")
		}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to schedule aggregate refresh")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Worker.ExportInterval),
		gocron.NewTask(func() {
			rows, err := svc.Export.Rebuild(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Export rebuild failed")
				metricsCollector.IncrementCounter("worker.export_rebuild.errors")
				return
			}
			metricsCollector.IncrementCounter("worker.export_rebuild.runs")
			metricsCollector.SetGauge("worker.export_rebuild.rows", int64(len(rows)))
			log.Info().Int("rows", len(rows)).Msg("Export feed rebuilt")
		}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to schedule export rebuild")
	}

	scheduler.Start()
	log.Info().
		Dur("aggregate_interval", cfg.Worker.AggregateInterval).
		Dur("export_interval", cfg.Worker.ExportInterval).
		Msg("Worker started")

	g.Go(func() error {
		<-ctx.Done()
		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker stopped with error")
		return err
	}

	log.Info().Msg("Worker shut down successfully")
	return nil
}
