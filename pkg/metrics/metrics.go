package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Ingestion metrics
	FilesProcessed    *prometheus.CounterVec
	RowsParsed        *prometheus.CounterVec
	RecordsBuilt      *prometheus.CounterVec
	BatchDuration     prometheus.Histogram
	BatchesInProgress prometheus.Gauge

	// Dataset metrics
	DatasetReplacements prometheus.Counter
	CacheOperations     *prometheus.CounterVec
	QueriesServed       *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		FilesProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_files_processed_total",
				Help: "Total number of report files processed",
			},
			[]string{"file_type", "status"},
		),

		RowsParsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_rows_parsed_total",
				Help: "Total number of data rows parsed from report files",
			},
			[]string{"file_type"},
		),

		RecordsBuilt: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_records_built_total",
				Help: "Total number of records built from report rows",
			},
			[]string{"kind"},
		),

		BatchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_batch_duration_seconds",
				Help:    "Upload batch processing duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),

		BatchesInProgress: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ingest_batches_in_progress",
				Help: "Number of upload batches currently being processed",
			},
		),

		DatasetReplacements: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dataset_replacements_total",
				Help: "Total number of wholesale dataset replacements",
			},
		),

		CacheOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataset_cache_operations_total",
				Help: "Total number of dataset cache operations",
			},
			[]string{"operation", "status"},
		),

		QueriesServed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataset_queries_total",
				Help: "Total number of dataset queries served",
			},
			[]string{"collection"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Per-file processing outcome
func (m *Metrics) RecordFile(fileType, status string) {
	m.FilesProcessed.WithLabelValues(fileType, status).Inc()
}

// Parsed row volume
func (m *Metrics) RecordRows(fileType string, count int) {
	m.RowsParsed.WithLabelValues(fileType).Add(float64(count))
}

// Built record volume
func (m *Metrics) RecordRecords(kind string, count int) {
	m.RecordsBuilt.WithLabelValues(kind).Add(float64(count))
}

// Batch processing duration
func (m *Metrics) RecordBatch(duration time.Duration) {
	m.BatchDuration.Observe(duration.Seconds())
}

// Dataset replacement counter
func (m *Metrics) RecordDatasetReplacement() {
	m.DatasetReplacements.Inc()
}

// Cache operation outcome
func (m *Metrics) RecordCacheOperation(operation, status string) {
	m.CacheOperations.WithLabelValues(operation, status).Inc()
}

// Query counter per collection
func (m *Metrics) RecordQuery(collection string) {
	m.QueriesServed.WithLabelValues(collection).Inc()
}

// Batches in progress counter
func (m *Metrics) IncBatchesInProgress() {
	m.BatchesInProgress.Inc()
}

// Batches in progress counter
func (m *Metrics) DecBatchesInProgress() {
	m.BatchesInProgress.Dec()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
