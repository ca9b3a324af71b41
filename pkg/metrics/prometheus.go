// Package metrics provides Prometheus metrics for the apexrank pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	enabled   bool
	registry  prometheus.Registerer

	// Ranking pipeline
	racesRanked   prometheus.Counter
	entriesScored prometheus.Counter
	parseFailures prometheus.Counter

	// Telemetry pipeline
	lapsSegmented       prometheus.Counter
	lapsSkipped         *prometheus.CounterVec
	telemetryFetch      prometheus.Histogram
	segmentationLatency prometheus.Histogram
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter

	// Batch pool
	poolWorkers   prometheus.Gauge
	poolJobs      prometheus.Counter
	poolJobErrors prometheus.Counter

	// Input/output tables
	datasetRows *prometheus.GaugeVec
	exportRows  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Registry returns the registry holding the pipeline metrics,
// for exposure via promhttp.
func Registry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "apexrank",
		subsystem: "pipeline",
		buckets:   prometheus.DefBuckets,
		enabled:   true,
		registry:  prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}

	m.racesRanked = prometheus.NewCounter(factory(
		"races_ranked_total", "Race entries that went through gap+score ranking."))
	m.entriesScored = prometheus.NewCounter(factory(
		"entries_scored_total", "Scored race entries produced by the ranking engine."))
	m.parseFailures = prometheus.NewCounter(factory(
		"time_parse_failures_total", "Lap/gap time strings that failed to parse."))
	m.lapsSegmented = prometheus.NewCounter(factory(
		"laps_segmented_total", "Laps successfully classified by the segmenter."))
	m.lapsSkipped = prometheus.NewCounterVec(factory(
		"laps_skipped_total", "Laps skipped per reason (pre_cutoff, no_data, fetch_error)."),
		[]string{"reason"})
	m.cacheHits = prometheus.NewCounter(factory(
		"telemetry_cache_hits_total", "Telemetry cache hits."))
	m.cacheMisses = prometheus.NewCounter(factory(
		"telemetry_cache_misses_total", "Telemetry cache misses."))
	m.poolJobs = prometheus.NewCounter(factory(
		"pool_jobs_total", "Jobs submitted to the batch worker pool."))
	m.poolJobErrors = prometheus.NewCounter(factory(
		"pool_job_errors_total", "Jobs that returned an error."))

	m.telemetryFetch = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "telemetry_fetch_seconds",
		Help:      "Latency of telemetry provider fetches.",
		Buckets:   m.buckets,
	})
	m.segmentationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "segmentation_seconds",
		Help:      "Latency of single-lap segmentation.",
		Buckets:   m.buckets,
	})

	m.poolWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_workers",
		Help:      "Configured batch pool worker count.",
	})
	m.datasetRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_rows",
		Help:      "Rows loaded per input table.",
	}, []string{"table"})
	m.exportRows = prometheus.NewCounterVec(factory(
		"export_rows_total", "Rows written per output table."),
		[]string{"table"})

	if !m.enabled || m.registry == nil {
		return
	}
	m.registry.MustRegister(
		m.racesRanked, m.entriesScored, m.parseFailures,
		m.lapsSegmented, m.lapsSkipped, m.telemetryFetch, m.segmentationLatency,
		m.cacheHits, m.cacheMisses,
		m.poolWorkers, m.poolJobs, m.poolJobErrors,
		m.datasetRows, m.exportRows,
	)
}

// Package-level helpers against the global manager.

func RecordRaceRanked()          { globalManager.racesRanked.Inc() }
func RecordEntriesScored(n int)  { globalManager.entriesScored.Add(float64(n)) }
func RecordParseFailure()        { globalManager.parseFailures.Inc() }
func RecordLapSegmented()        { globalManager.lapsSegmented.Inc() }
func RecordCacheHit()            { globalManager.cacheHits.Inc() }
func RecordCacheMiss()           { globalManager.cacheMisses.Inc() }
func RecordPoolJob()             { globalManager.poolJobs.Inc() }
func RecordPoolJobError()        { globalManager.poolJobErrors.Inc() }
func UpdatePoolWorkers(n int)    { globalManager.poolWorkers.Set(float64(n)) }

func RecordLapSkipped(reason string) {
	globalManager.lapsSkipped.WithLabelValues(reason).Inc()
}

func RecordTelemetryFetchSeconds(s float64) {
	globalManager.telemetryFetch.Observe(s)
}

func RecordSegmentationSeconds(s float64) {
	globalManager.segmentationLatency.Observe(s)
}

func UpdateDatasetRows(table string, rows int) {
	globalManager.datasetRows.WithLabelValues(table).Set(float64(rows))
}

func RecordExportRows(table string, rows int) {
	globalManager.exportRows.WithLabelValues(table).Add(float64(rows))
}
