package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fueleu-compliance-ledger/internal/api_gateway"
	"github.com/fueleu-compliance-ledger/internal/api_gateway/service"
	"github.com/fueleu-compliance-ledger/internal/config"
	"github.com/fueleu-compliance-ledger/internal/data/mongo"
	"github.com/fueleu-compliance-ledger/internal/data/postgres"
	"github.com/fueleu-compliance-ledger/internal/domain/compliance"
	"github.com/fueleu-compliance-ledger/internal/logger"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
	"github.com/fueleu-compliance-ledger/internal/platform/persistence"
	"github.com/shopspring/decimal"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	if cfg.Source != "" {
		log.Info("Configuration loaded", "file", cfg.Source)
	} else {
		log.Info("No configuration file found, using environment and defaults")
	}

	// Amounts go out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	// Migrations run here, before the pool is opened
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	routeRepo := postgres.NewRouteRepository(log, postgresDB)
	complianceRepo := postgres.NewComplianceRepository(log, postgresDB)
	bankRepo := postgres.NewBankEntryRepository(log, postgresDB)
	poolRepo := postgres.NewPoolRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	journalRepo := mongo.NewJournalRepository(log, mongoDB.Database())
	locker := postgres.NewShipLocker(log)

	targets := compliance.YearlyTargets{
		Default:   cfg.Compliance.TargetIntensity,
		Overrides: cfg.Compliance.TargetOverrides,
	}
	m := metrics.New()

	services := api_gateway.Services{
		Routes:     service.NewRouteService(log, routeRepo),
		Compliance: service.NewComplianceService(log, postgresDB, routeRepo, complianceRepo, bankRepo, outboxRepo, targets, m),
		Banking:    service.NewBankingService(log, postgresDB, locker, complianceRepo, bankRepo, outboxRepo, m),
		Pooling:    service.NewPoolingService(log, postgresDB, locker, complianceRepo, poolRepo, outboxRepo, m),
		Journal:    service.NewJournalService(log, journalRepo),
	}

	server := api_gateway.NewServer(log, cfg, services, m, map[string]api_gateway.HealthChecker{
		"postgres": postgresDB,
		"mongodb":  mongoDB,
	})
	log.Info("REST server initialized", "target_intensity", targets.Default.String())

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Drain in-flight requests before closing the pools they use
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
