package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fueleu-compliance-ledger/internal/config"
	"github.com/fueleu-compliance-ledger/internal/data/mongo"
	"github.com/fueleu-compliance-ledger/internal/data/postgres"
	"github.com/fueleu-compliance-ledger/internal/event_processor/consumer"
	"github.com/fueleu-compliance-ledger/internal/event_processor/outbox_poller"
	"github.com/fueleu-compliance-ledger/internal/event_processor/service"
	"github.com/fueleu-compliance-ledger/internal/logger"
	"github.com/fueleu-compliance-ledger/internal/platform/messaging/consumers"
	"github.com/fueleu-compliance-ledger/internal/platform/messaging/producers"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
	"github.com/fueleu-compliance-ledger/internal/platform/persistence"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("event_processor")
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

	log.Info("Starting Event Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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

	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	journalRepo := mongo.NewJournalRepository(log, mongoDB.Database())
	if err := journalRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create journal indexes", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	eventProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize compliance event producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	projectionService, err := service.NewWorkerPoolProjectionService(
		service.NewJournalProjectionService(journalRepo, m, log),
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	journalEventHandler := consumer.NewJournalEventHandler(log, projectionService, deadLetters, m)
	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)

	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		outboxRepo,
		outbox_poller.NewKafkaEventPublisher(eventProducer, log),
		m,
		log,
	)

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	if err := kafkaConsumer.Subscribe(appCtx, journalEventHandler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to compliance events", "error", err)
		os.Exit(1)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	go func() {
		log.Info("Serving metrics", "port", cfg.Server.Port)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	stopped := make(chan struct{})
	go func() {
		wg.Wait()
		<-kafkaConsumer.Done()
		close(stopped)
	}()

	select {
	case <-stopped:
		log.Info("Poller and consumer stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	projectionService.Shutdown()

	if err = metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping metrics server", "error", err)
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing event producer", "error", err)
	}

	if err = dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serviceErr != nil {
		log.Error("Event Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Event Processor shutdown completed with errors")
	} else {
		log.Info("Event Processor shutdown completed successfully")
	}
}
