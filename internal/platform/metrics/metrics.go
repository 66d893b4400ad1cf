package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Outcome labels shared by every ledger operation counter
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the ledger and relay collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Ledger operations by operation and outcome
	Operations *prometheus.CounterVec

	// Latency of ledger operations, including lock waits
	OperationLatency *prometheus.HistogramVec

	// Compliance balance moved by banking, in gCO2e
	BankedAmount  prometheus.Counter
	AppliedAmount prometheus.Counter

	ConsistencyErrors prometheus.Counter

	// Outbox relay and journal projection outcomes
	OutboxPublished  *prometheus.CounterVec
	JournalProjected *prometheus.CounterVec

	// HTTP requests by method, route template and status
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// New registers all collectors with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers all collectors with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fueleu_ledger_operations_total",
			Help: "Ledger operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fueleu_ledger_operation_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		BankedAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "fueleu_banked_gco2eq_total",
			Help: "Total surplus banked, in gCO2e",
		}),

		AppliedAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "fueleu_applied_gco2eq_total",
			Help: "Total banked surplus applied to deficit years, in gCO2e",
		}),

		ConsistencyErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "fueleu_ledger_consistency_errors_total",
			Help: "Bank entry queues found exhausted after the availability check passed",
		}),

		OutboxPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fueleu_outbox_published_total",
			Help: "Outbox messages handled by the relay, by outcome",
		}, []string{"outcome"}),

		JournalProjected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fueleu_journal_projected_total",
			Help: "Compliance events projected into the journal, by outcome",
		}, []string{"outcome"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fueleu_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fueleu_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveOperation records one ledger operation with its outcome and duration.
func (m *Metrics) ObserveOperation(operation, outcome string, d time.Duration) {
	if m != nil {
		m.Operations.WithLabelValues(operation, outcome).Inc()
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) AddBanked(amount decimal.Decimal) {
	if m != nil {
		m.BankedAmount.Add(amount.InexactFloat64())
	}
}

func (m *Metrics) AddApplied(amount decimal.Decimal) {
	if m != nil {
		m.AppliedAmount.Add(amount.InexactFloat64())
	}
}

func (m *Metrics) IncConsistencyError() {
	if m != nil {
		m.ConsistencyErrors.Inc()
	}
}

func (m *Metrics) IncOutboxPublished(outcome string) {
	if m != nil {
		m.OutboxPublished.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncJournalProjected(outcome string) {
	if m != nil {
		m.JournalProjected.WithLabelValues(outcome).Inc()
	}
}

// ObserveHTTPRequest records one served request. route is the template, not the raw path.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.HTTPLatency.WithLabelValues(method, route).Observe(d.Seconds())
	}
}
