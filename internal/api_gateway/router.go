package api_gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fueleu-compliance-ledger/internal/api_gateway/handler"
	"github.com/fueleu-compliance-ledger/internal/api_gateway/middleware"
	"github.com/fueleu-compliance-ledger/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker is a dependency the gateway cannot serve without
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type handlers struct {
	route      *handler.RouteHandler
	compliance *handler.ComplianceHandler
	banking    *handler.BankingHandler
	pool       *handler.PoolHandler
	journal    *handler.JournalHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	h handlers,
	m *metrics.Metrics,
	checks map[string]HealthChecker,
) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))

	v1 := r.Group("/api/v1")
	{
		routes := v1.Group("/routes")
		{
			routes.GET("", h.route.List)
			routes.GET("/:routeId", h.route.GetByID)
		}

		compliance := v1.Group("/compliance")
		{
			compliance.GET("/cb", h.compliance.GetBalance)
			compliance.GET("/adjusted-cb", h.compliance.GetAdjusted)
		}

		banking := v1.Group("/banking")
		{
			banking.GET("/records", h.banking.GetRecords)
			banking.GET("/balance", h.banking.GetBalance)
			banking.POST("/bank", h.banking.Bank)
			banking.POST("/apply", h.banking.Apply)
		}

		pools := v1.Group("/pools")
		{
			pools.POST("/validate", h.pool.Validate)
			pools.POST("", h.pool.Create)
			pools.GET("", h.pool.List)
			pools.GET("/:id", h.pool.GetByID)
		}

		v1.GET("/journal", h.journal.GetHistory)
	}

	r.GET("/health", healthHandler(logger, checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthHandler reports 503 when any dependency fails to answer a ping
func healthHandler(logger *slog.Logger, checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		components := make(gin.H, len(checks))
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				logger.Warn("Health check failed", "component", name, "error", err)
				components[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{
			"status":     overall,
			"components": components,
			"timestamp":  time.Now().UTC(),
		})
	}
}
