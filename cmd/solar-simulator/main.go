package main

import (
	"context"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/solar-farm-simulator/internal/api/http"
	"github.com/i474232898/solar-farm-simulator/internal/config"
	"github.com/i474232898/solar-farm-simulator/internal/dataset"
	"github.com/i474232898/solar-farm-simulator/internal/exporter"
	"github.com/i474232898/solar-farm-simulator/internal/publisher"
	"github.com/i474232898/solar-farm-simulator/internal/scheduler"
	"github.com/i474232898/solar-farm-simulator/internal/solar"
	"github.com/i474232898/solar-farm-simulator/internal/store"
)

func main() {
	boot, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	if err := godotenv.Load(); err != nil {
		boot.Info("no .env file found or error loading it", zap.Error(err))
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("failed to load config", zap.Error(err))
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	log, err := logCfg.Build()
	if err != nil {
		boot.Fatal("failed to build logger", zap.Error(err))
	}
	defer log.Sync() //nolint:errcheck

	registry, err := loadRegistry(cfg)
	if err != nil {
		log.Fatal("failed to load site registry", zap.Error(err))
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	metrics := exporter.NewMetrics(memStore)

	seed := cfg.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	engine := solar.NewEngine(registry,
		solar.WithRandom(rand.New(rand.NewSource(seed))),
		solar.WithLocation(cfg.Location),
		solar.WithNotifier(solar.NewLogNotifier(log.Named("alerts"), metrics)),
		solar.WithLogger(log.Named("engine")),
	)

	opts := []solar.ServiceOption{solar.WithTickRecorder(metrics)}
	if len(cfg.KafkaBrokers) > 0 {
		pub := publisher.NewKafkaPublisher(publisher.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic), log.Named("kafka"))
		defer pub.Close()
		opts = append(opts, solar.WithPublisher(pub))
		log.Info("kafka publishing enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	// Core service orchestrating engine, store and publisher.
	service := solar.NewService(engine, memStore, log.Named("service"), opts...)

	// Datasets are fully loaded before the first tick.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Minute)
	service.LoadDatasets(loadCtx, newLoader(cfg, log.Named("dataset")))
	cancelLoad()

	sched := scheduler.New(cfg.TickInterval, service, log.Named("scheduler"))
	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "solar-farm-simulator",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "solar-farm-simulator",
		})
	})

	httpapi.RegisterRoutes(app, service, metrics)

	go func() {
		log.Info("http server listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Info("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
}

func loadRegistry(cfg *config.AppConfig) (*solar.Registry, error) {
	if cfg.SitesFile != "" {
		return solar.LoadRegistryFile(cfg.SitesFile)
	}
	return solar.NewRegistry(solar.DefaultSites())
}

func newLoader(cfg *config.AppConfig, log *zap.Logger) solar.Loader {
	if cfg.DatasetBaseURL != "" {
		// Shared HTTP client for outbound dataset fetches.
		client := &http.Client{Timeout: cfg.HTTPTimeout}
		return dataset.NewHTTPLoader(client, cfg.DatasetBaseURL, log)
	}
	return dataset.NewFileLoader(cfg.DataDir, log)
}
