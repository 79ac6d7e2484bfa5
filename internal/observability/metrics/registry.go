// Package metrics provides the Prometheus metrics of the text preparation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cleaning metrics
var (
	// RowsCleanedTotal counts rows passed through a refinery
	RowsCleanedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textprep_rows_cleaned_total",
			Help: "Total number of rows cleaned",
		},
		[]string{"refinery", "column"},
	)

	// CleanDuration measures cleaning time per operation (text, column)
	CleanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "textprep_clean_duration_seconds",
			Help:    "Time taken to clean a text or a column",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"operation"},
	)

	// CleanCacheTotal counts clean-cache lookups by result
	CleanCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textprep_clean_cache_total",
			Help: "Clean cache lookups",
		},
		[]string{"result"}, // result: hit, miss, error
	)
)

// Dataset preparation metrics
var (
	// RunsTotal counts preparation runs by terminal status
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textprep_runs_total",
			Help: "Total number of dataset preparation runs",
		},
		[]string{"status"},
	)

	// RunDuration measures end-to-end preparation time
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "textprep_run_duration_seconds",
			Help:    "Time taken to prepare a dataset",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	// DuplicatesTotal counts duplicate rows found during preparation
	DuplicatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "textprep_duplicates_total",
			Help: "Total number of duplicate rows detected",
		},
	)
)

// RecordRowsCleaned adds n cleaned rows for a refinery version and column.
func RecordRowsCleaned(refinery, column string, n int) {
	if n <= 0 {
		return
	}
	RowsCleanedTotal.WithLabelValues(refinery, column).Add(float64(n))
}

// RecordCleanDuration records the duration of a cleaning operation
func RecordCleanDuration(operation string, duration time.Duration) {
	CleanDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheLookup records hits and misses of one batched lookup.
func RecordCacheLookup(hits, misses int) {
	if hits > 0 {
		CleanCacheTotal.WithLabelValues("hit").Add(float64(hits))
	}
	if misses > 0 {
		CleanCacheTotal.WithLabelValues("miss").Add(float64(misses))
	}
}

// RecordCacheError records a failed cache round trip.
func RecordCacheError() {
	CleanCacheTotal.WithLabelValues("error").Inc()
}

// RecordRun records a finished run.
func RecordRun(status string, duration time.Duration) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration.Seconds())
}

// RecordDuplicates adds n detected duplicates.
func RecordDuplicates(n int) {
	if n > 0 {
		DuplicatesTotal.Add(float64(n))
	}
}
