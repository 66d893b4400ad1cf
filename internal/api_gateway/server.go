package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fueleu-compliance-ledger/internal/api_gateway/handler"
	"github.com/fueleu-compliance-ledger/internal/api_gateway/service"
	"github.com/fueleu-compliance-ledger/internal/config"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// Services bundles the ledger services the HTTP layer exposes
type Services struct {
	Routes     service.RouteService
	Compliance service.ComplianceService
	Banking    service.BankingService
	Pooling    service.PoolingService
	Journal    service.JournalService
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
	shutdown   func(context.Context) error
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	services Services,
	m *metrics.Metrics,
	checks map[string]HealthChecker,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	setupRouter(log, httpRouter, handlers{
		route:      handler.NewRouteHandler(log, services.Routes),
		compliance: handler.NewComplianceHandler(log, services.Compliance),
		banking:    handler.NewBankingHandler(log, services.Banking),
		pool:       handler.NewPoolHandler(log, services.Pooling),
		journal:    handler.NewJournalHandler(log, services.Journal),
	}, m, checks)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
		shutdown:   httpServer.Shutdown,
	}
}

// Handler exposes the configured router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop waits for in-flight requests until ctx expires, then closes the listener
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	if err := s.shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
