package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "alarm_report_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	queryTotal   *prometheus.CounterVec
	queryLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	rejectedEvents prometheus.Counter

	partitionsQueried prometheus.Histogram
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		queryTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "queries_total",
				Help: "Total report queries by kind and result",
			},
			[]string{"kind", "result"},
		)
		queryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "query_latency_seconds",
				Help:    "Report query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		rejectedEvents = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "rejected_events_total",
				Help: "Alarm events rejected as malformed during consolidation",
			},
		)

		partitionsQueried = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "partitions_per_query",
				Help:    "Partition tables read per report query",
				Buckets: []float64{0, 1, 2, 3},
			},
		)

		prometheus.MustRegister(
			queryTotal,
			queryLatency,
			exportTotal,
			exportLatency,
			rejectedEvents,
			partitionsQueried,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveQuery records report query duration and result.
func ObserveQuery(kind, result string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if queryTotal != nil {
		queryTotal.WithLabelValues(kind, result).Inc()
	}
	if queryLatency != nil {
		queryLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// AddRejectedEvents increments the malformed event counter.
func AddRejectedEvents(count int) {
	if count <= 0 {
		return
	}
	if rejectedEvents != nil {
		rejectedEvents.Add(float64(count))
	}
}

// ObservePartitionsQueried records how many partitions a query read.
func ObservePartitionsQueried(count int) {
	if count < 0 {
		return
	}
	if partitionsQueried != nil {
		partitionsQueried.Observe(float64(count))
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
