package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhishekneerr/apexrank/internal/adapters/dataset"
	"github.com/abhishekneerr/apexrank/internal/adapters/export"
	"github.com/abhishekneerr/apexrank/internal/adapters/telemetry"
	service "github.com/abhishekneerr/apexrank/internal/app"
	"github.com/abhishekneerr/apexrank/internal/config"
	"github.com/abhishekneerr/apexrank/internal/domain/analysis"
	"github.com/abhishekneerr/apexrank/internal/domain/model"
	"github.com/abhishekneerr/apexrank/pkg/logger"
	"github.com/abhishekneerr/apexrank/pkg/metrics"
)

// Metrics endpoint timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Output file names inside the export directory.
const (
	topRacesFile = "top_races.csv"
	perRaceFile  = "per_race_metrics.csv"
	overallFile  = "overall_metrics.csv"
)

func main() {
	driver := flag.String("driver", "", "driver full name, e.g. 'Lewis Hamilton'")
	listDrivers := flag.Bool("list-drivers", false, "list drivers in the year range and exit")
	fromYear := flag.Int("from", 0, "first season for -list-drivers (default min_year)")
	toYear := flag.Int("to", time.Now().Year(), "last season for -list-drivers")
	finishOrder := flag.Bool("finish-order", false, "order races by finish instead of score")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	srv := startMetricsServer(ctx, log, cfg.MetricsAddr)
	if srv != nil {
		defer shutdownMetricsServer(srv, log)
	}

	in, err := dataset.NewLoader(dataset.WithLogger(log.Named("dataset"))).Load(ctx, cfg.DatasetDir)
	if err != nil {
		log.Error(ctx, "dataset load failed", logger.Error(err))
		os.Exit(1)
	}

	if *listDrivers {
		from := *fromYear
		if from == 0 {
			from = cfg.MinYear
		}
		for _, name := range analysis.DriverDirectory(in, from, *toYear, cfg.WinsOnly) {
			os.Stdout.WriteString(name + "\n")
		}
		return
	}

	if *driver == "" {
		os.Stderr.WriteString("usage: apexrank -driver 'Forename Surname' (or -list-drivers)\n")
		os.Exit(2)
	}

	provider := telemetry.NewCachingProvider(
		telemetry.NewFileProvider(cfg.TelemetryDir, telemetry.WithFileLogger(log.Named("telemetry"))),
		telemetry.WithCacheSize(cfg.TelemetryCacheSize),
	)

	svc := service.NewService(
		service.WithLogger(log.Named("service")),
		service.WithTelemetryProvider(provider),
		service.WithTopN(cfg.TopN),
		service.WithCutoffYear(cfg.CutoffYear),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithScoringWeights(cfg.Scoring),
		service.WithThresholds(cfg.Segment),
		service.WithBuilderOptions(
			analysis.WithMinYear(cfg.MinYear),
			analysis.WithWinsOnly(cfg.WinsOnly),
			analysis.WithDNFStatusIDs(cfg.DNFStatusIDs),
		),
	)
	log.Info(ctx, "pipeline starting",
		logger.String("run_id", svc.RunID()),
		logger.String("driver", *driver),
	)

	var races []model.RankedRace
	if *finishOrder {
		races = svc.RacesByFinish(ctx, in, *driver)
		if len(races) > cfg.TopN {
			races = races[:cfg.TopN]
		}
	} else {
		races = svc.TopRaces(ctx, in, *driver)
	}
	if len(races) == 0 {
		log.Warn(ctx, "no ranked races for driver", logger.String("driver", *driver))
	}

	perRace := svc.AnalyzeRaces(ctx, *driver, races)
	overall := svc.Overall(perRace, *driver)

	if err := writeOutputs(cfg.ExportDir, races, perRace, overall); err != nil {
		log.Error(ctx, "export failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "pipeline finished",
		logger.String("run_id", svc.RunID()),
		logger.Int("ranked_races", len(races)),
		logger.Int("segmented_laps", len(perRace)),
		logger.String("export_dir", cfg.ExportDir),
	)
}

// writeOutputs writes the three output tables into dir.
func writeOutputs(dir string, races []model.RankedRace, perRace []model.PerRaceMetrics, overall model.OverallMetrics) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeTable(filepath.Join(dir, topRacesFile), func(f *os.File) error {
		return export.WriteTopRaces(f, races)
	}); err != nil {
		return err
	}
	if err := writeTable(filepath.Join(dir, perRaceFile), func(f *os.File) error {
		return export.WritePerRaceMetrics(f, perRace)
	}); err != nil {
		return err
	}
	return writeTable(filepath.Join(dir, overallFile), func(f *os.File) error {
		return export.WriteOverallMetrics(f, []model.OverallMetrics{overall})
	})
}

func writeTable(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// startMetricsServer exposes /metrics and /healthz while the batch runs.
// An empty addr disables the endpoint.
func startMetricsServer(ctx context.Context, log logger.Logger, addr string) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "metrics endpoint up", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(ctx, "metrics endpoint failed", logger.Error(err))
		}
	}()
	return srv
}

func shutdownMetricsServer(srv *http.Server, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(ctx, "metrics endpoint shutdown failed", logger.Error(err))
	}
}
