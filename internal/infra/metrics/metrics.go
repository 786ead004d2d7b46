// Package metrics exposes Prometheus collectors for imports and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finance-tracker/budget-sync/internal/application/adapter"
)

// Metrics owns a private registry so tests can create as many instances as they need.
type Metrics struct {
	registry *prometheus.Registry

	batches            *prometheus.CounterVec
	rows               *prometheus.CounterVec
	accountsCreated    prometheus.Counter
	budgetsMaterialize prometheus.Counter
	unrecognized       *prometheus.CounterVec
	batchDuration      *prometheus.HistogramVec

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ adapter.ImportMetrics = (*Metrics)(nil)

// New creates and registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_batches_total",
				Help: "Import batches processed, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_rows_total",
				Help: "Rows of committed import batches, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		accountsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "import_accounts_created_total",
			Help: "Accounts created while importing transactions.",
		}),
		budgetsMaterialize: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "import_budgets_materialized_total",
			Help: "Monthly budgets cloned from a default template.",
		}),
		unrecognized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_unrecognized_total",
				Help: "Unrecognized categorizations, partitioned by reason.",
			},
			[]string{"reason"},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "import_batch_duration_seconds",
				Help:    "Time spent processing an import batch.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"outcome"},
		),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "requests_total",
				Help: "How many HTTP requests processed, partitioned by status code and HTTP method.",
			},
			[]string{"code", "method", "url"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "request_duration_seconds",
				Help: "The HTTP request latencies in seconds.",
			},
			[]string{"code", "method", "url"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.batches,
		m.rows,
		m.accountsCreated,
		m.budgetsMaterialize,
		m.unrecognized,
		m.batchDuration,
		m.requestCount,
		m.requestDuration,
	)

	return m
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) BatchFinished(outcome string, duration time.Duration) {
	m.batches.WithLabelValues(outcome).Inc()
	m.batchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *Metrics) RowFinished(outcome string) {
	m.rows.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AccountCreated() {
	m.accountsCreated.Inc()
}

func (m *Metrics) BudgetMaterialized() {
	m.budgetsMaterialize.Inc()
}

func (m *Metrics) Unrecognized(reason string) {
	m.unrecognized.WithLabelValues(reason).Inc()
}

// Middleware records request counts and latencies per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requestCount.WithLabelValues(status, c.Request.Method, route).Inc()
		m.requestDuration.WithLabelValues(status, c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
