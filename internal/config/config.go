// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file/env.
// - External errors must be wrapped via this package's sentinel kinds.
package config

import (
	"runtime"

	"github.com/abhishekneerr/apexrank/internal/domain/analysis"
	"github.com/abhishekneerr/apexrank/internal/domain/scoring"
	"github.com/abhishekneerr/apexrank/internal/domain/segment"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the metrics/health listen address, e.g.
	// ":9090". Empty disables the endpoint.
	MetricsAddr string `koanf:"metrics_addr"`

	// DatasetDir holds the Ergast-style CSV tables.
	DatasetDir string `koanf:"dataset_dir"`

	// TelemetryDir holds the per-lap telemetry file tree.
	TelemetryDir string `koanf:"telemetry_dir"`

	// ExportDir receives the output tables.
	ExportDir string `koanf:"export_dir"`

	// MinYear keeps only races from this season onward.
	MinYear int `koanf:"min_year"`

	// CutoffYear is the first season with usable telemetry; older races
	// are skipped during segmentation.
	CutoffYear int `koanf:"cutoff_year"`

	// TopN selects how many races survive ranking.
	TopN int `koanf:"top_n"`

	// WinsOnly restricts the ranking to race wins.
	WinsOnly bool `koanf:"wins_only"`

	// WorkerCount sets the number of segmentation workers.
	WorkerCount int `koanf:"worker_count"`

	// TelemetryCacheSize bounds the in-memory lap cache.
	TelemetryCacheSize int `koanf:"telemetry_cache_size"`

	// DNFStatusIDs overrides the retirement status-code set.
	DNFStatusIDs []int `koanf:"dnf_status_ids"`

	// Scoring holds the composite-score coefficient table.
	Scoring scoring.Weights `koanf:"scoring"`

	// Segment holds the lap segmentation tuning.
	Segment segment.Thresholds `koanf:"segment"`
}

// New creates a Config with the stock defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		MetricsAddr:        ":9090",
		DatasetDir:         "data",
		TelemetryDir:       "telemetry",
		ExportDir:          "out",
		MinYear:            2018,
		CutoffYear:         2018,
		TopN:               10,
		WinsOnly:           false,
		WorkerCount:        runtime.NumCPU(),
		TelemetryCacheSize: 512,
		DNFStatusIDs:       analysis.DefaultDNFStatusIDs,
		Scoring:            scoring.DefaultWeights(),
		Segment:            segment.DefaultThresholds(),
	}
}
