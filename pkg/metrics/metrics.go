package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// Catalog load metrics
	LoadRecordsTotal    *prometheus.CounterVec
	LoadRejectedTotal   *prometheus.CounterVec
	LoadDiagnosticTotal *prometheus.CounterVec
	LoadDuration        *prometheus.HistogramVec
	CatalogSize         *prometheus.GaugeVec

	// Export metrics
	ExportRecordsTotal *prometheus.CounterVec
	ExportDuration     *prometheus.HistogramVec
	ExportErrorsTotal  *prometheus.CounterVec

	// API metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Database metrics
	DBQueryDuration  *prometheus.HistogramVec
	DBConnectionPool *prometheus.GaugeVec
	DBErrorsTotal    *prometheus.CounterVec
	IngestBatchSize  prometheus.Histogram
}

// NewCollector creates a collector registered on reg
// Passing nil registers on the process-wide default registry.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		LoadRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_records_total",
				Help:      "Catalog records read by source file kind (neo, cad)",
			},
			[]string{"kind"},
		),

		LoadRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_rejected_total",
				Help:      "Catalog records rejected for a missing or unparseable required field",
			},
			[]string{"kind", "field"},
		),

		LoadDiagnosticTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_diagnostics_total",
				Help:      "Optional fields degraded to unknown during catalog load",
			},
			[]string{"kind", "field"},
		),

		LoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Duration of catalog file loads in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"kind"},
		),

		CatalogSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_entities",
				Help:      "Entities held by the most recently linked catalog",
			},
			[]string{"entity"},
		),

		ExportRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "export_records_total",
				Help:      "Close approaches written by output format",
			},
			[]string{"format"},
		),

		ExportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_duration_seconds",
				Help:      "Duration of export writes in seconds",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"format"},
		),

		ExportErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "export_errors_total",
				Help:      "Failed exports by format and error type",
			},
			[]string{"format", "error_type"},
		),

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds by query type",
				Buckets:   []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
			},
			[]string{"query_type"},
		),

		DBConnectionPool: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"state"}, // "in_use", "idle", "total"
		),

		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_errors_total",
				Help:      "Total number of database errors by type",
			},
			[]string{"error_type"},
		),

		IngestBatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_batch_size",
				Help:      "Rows written per ingestion transaction",
				Buckets:   []float64{10, 100, 1000, 10000, 50000, 100000, 500000},
			},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// RecordLoad adds read records for a source kind
func (c *Collector) RecordLoad(kind string, n int) {
	c.LoadRecordsTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordRejected counts a record dropped because a required field failed
func (c *Collector) RecordRejected(kind, field string) {
	c.LoadRejectedTotal.WithLabelValues(kind, field).Inc()
}

// RecordDiagnostic counts an optional field degraded to unknown
func (c *Collector) RecordDiagnostic(kind, field string) {
	c.LoadDiagnosticTotal.WithLabelValues(kind, field).Inc()
}

// UpdateCatalogSize records the entity counts of a linked catalog
func (c *Collector) UpdateCatalogSize(neos, approaches int) {
	c.CatalogSize.WithLabelValues("neo").Set(float64(neos))
	c.CatalogSize.WithLabelValues("close_approach").Set(float64(approaches))
}

// RecordExport adds written rows for an output format
func (c *Collector) RecordExport(format string, n int) {
	c.ExportRecordsTotal.WithLabelValues(format).Add(float64(n))
}

// RecordExportError increments export error counter
func (c *Collector) RecordExportError(format, errorType string) {
	c.ExportErrorsTotal.WithLabelValues(format, errorType).Inc()
}

// RecordAPIRequest increments API request counter
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments API error counter
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordDBError increments database error counter
func (c *Collector) RecordDBError(errorType string) {
	c.DBErrorsTotal.WithLabelValues(errorType).Inc()
}

// UpdateDBConnectionPool updates database connection pool metrics
func (c *Collector) UpdateDBConnectionPool(inUse, idle, total int) {
	c.DBConnectionPool.WithLabelValues("in_use").Set(float64(inUse))
	c.DBConnectionPool.WithLabelValues("idle").Set(float64(idle))
	c.DBConnectionPool.WithLabelValues("total").Set(float64(total))
}
