// Package service wires the ranking and segmentation pipeline together:
// build the driver table, rank races, fetch telemetry over a worker pool,
// segment laps and aggregate the per-race metrics.
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/abhishekneerr/apexrank/internal/adapters/batch"
	"github.com/abhishekneerr/apexrank/internal/adapters/telemetry"
	"github.com/abhishekneerr/apexrank/internal/domain/analysis"
	"github.com/abhishekneerr/apexrank/internal/domain/model"
	"github.com/abhishekneerr/apexrank/internal/domain/scoring"
	"github.com/abhishekneerr/apexrank/internal/domain/segment"
	"github.com/abhishekneerr/apexrank/pkg/logger"
	"github.com/abhishekneerr/apexrank/pkg/metrics"
)

// defaultSession is the race session telemetry is pulled from.
const defaultSession = "R"

// Skip reasons recorded when a ranked race yields no metrics row.
const (
	skipPreCutoff  = "pre_cutoff"
	skipNoData     = "no_data"
	skipFetchError = "fetch_error"
)

// Service runs the per-driver ranking and telemetry analysis pipeline.
type Service struct {
	runID string

	builder   *analysis.Builder
	engine    *scoring.Engine
	segmenter *segment.Segmenter
	provider  telemetry.Provider

	topN        int
	cutoffYear  int
	session     string
	workerCount int

	builderOpts []analysis.Option

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTelemetryProvider sets the lap data source. Without one, telemetry
// analysis reports every race as having no data.
func WithTelemetryProvider(p telemetry.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithTopN sets how many races survive ranking.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithCutoffYear sets the first season with usable telemetry.
func WithCutoffYear(year int) Option {
	return func(s *Service) {
		if year > 0 {
			s.cutoffYear = year
		}
	}
}

// WithSession overrides the session telemetry is pulled from.
func WithSession(session string) Option {
	return func(s *Service) {
		if session != "" {
			s.session = session
		}
	}
}

// WithWorkerCount sets the number of segmentation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithScoringWeights overrides the composite-score coefficient table.
func WithScoringWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.engine = scoring.NewEngine(scoring.WithWeights(w))
	}
}

// WithThresholds overrides the lap segmentation tuning.
func WithThresholds(thr segment.Thresholds) Option {
	return func(s *Service) {
		s.segmenter = segment.NewSegmenter(segment.WithThresholds(thr))
	}
}

// WithBuilderOptions forwards options to the driver table builder.
func WithBuilderOptions(opts ...analysis.Option) Option {
	return func(s *Service) {
		s.builderOpts = append(s.builderOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewService creates a pipeline service with the given options.
func NewService(opts ...Option) *Service {
	s := &Service{
		runID:      uuid.NewString(),
		engine:     scoring.NewEngine(),
		segmenter:  segment.NewSegmenter(),
		topN:       10,
		cutoffYear: 2018,
		session:    defaultSession,
		logger:     logger.Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builderOpts = append(s.builderOpts, analysis.WithLogger(s.logger))
	s.builder = analysis.NewBuilder(s.builderOpts...)
	return s
}

// RunID identifies this pipeline instance in logs and export metadata.
func (s *Service) RunID() string {
	return s.runID
}

// TopRaces builds the driver table from the input tables and returns the
// driver's best races by composite score, at most topN rows.
func (s *Service) TopRaces(ctx context.Context, in analysis.Input, driver string) []model.RankedRace {
	entries := s.driverEntries(ctx, in, driver)
	top := s.engine.RankTopN(entries, s.topN)

	rows := make([]model.RankedRace, 0, len(top))
	for i := range top {
		rows = append(rows, toRankedRace(&top[i]))
	}
	s.logger.Info(ctx, "races ranked",
		logger.String("run_id", s.runID),
		logger.String("driver", driver),
		logger.Int("candidates", len(entries)),
		logger.Int("selected", len(rows)),
	)
	return rows
}

// RacesByFinish returns the driver's races under the display ordering
// instead of the composite score.
func (s *Service) RacesByFinish(ctx context.Context, in analysis.Input, driver string) []model.RankedRace {
	entries := scoring.RankByFinish(s.driverEntries(ctx, in, driver))

	rows := make([]model.RankedRace, 0, len(entries))
	for i := range entries {
		rows = append(rows, toRankedRace(&entries[i]))
	}
	return rows
}

// Drivers lists the distinct driver names in the year range, optionally
// winners only.
func (s *Service) Drivers(in analysis.Input, fromYear, toYear int, winnersOnly bool) []string {
	return analysis.DriverDirectory(in, fromYear, toYear, winnersOnly)
}

// AnalyzeRaces fetches the fastest-lap telemetry for each ranked race and
// segments it into per-category metrics. Races before the cutoff year and
// races without telemetry are skipped, not failed; rows come back ordered
// by season then event name.
func (s *Service) AnalyzeRaces(ctx context.Context, driver string, races []model.RankedRace) []model.PerRaceMetrics {
	eligible := make([]model.RankedRace, 0, len(races))
	for _, r := range races {
		if r.Year < s.cutoffYear {
			s.logger.Info(ctx, "race skipped before telemetry cutoff",
				logger.Int("year", r.Year),
				logger.String("event", r.EventName),
				logger.Int("cutoff", s.cutoffYear),
			)
			metrics.RecordLapSkipped(skipPreCutoff)
			continue
		}
		eligible = append(eligible, r)
	}

	code := analysis.DriverCode(driver)
	jobs := make([]batch.Job[*model.PerRaceMetrics], len(eligible))
	for i, race := range eligible {
		race := race
		jobs[i] = func(ctx context.Context) (*model.PerRaceMetrics, error) {
			return s.analyzeRace(ctx, driver, code, race)
		}
	}

	pool := batch.NewPool[*model.PerRaceMetrics](batch.WithWorkers[*model.PerRaceMetrics](s.workerCount))
	results := pool.Run(ctx, jobs)

	rows := make([]model.PerRaceMetrics, 0, len(results))
	for i, res := range results {
		if res.Err != nil {
			reason := skipFetchError
			if errors.Is(res.Err, telemetry.ErrNoData) {
				reason = skipNoData
			} else {
				s.logger.Warn(ctx, "telemetry fetch failed",
					logger.Int("year", eligible[i].Year),
					logger.String("event", eligible[i].EventName),
					logger.Error(res.Err),
				)
			}
			metrics.RecordLapSkipped(reason)
			continue
		}
		if res.Value != nil {
			rows = append(rows, *res.Value)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].EventName < rows[j].EventName
	})
	return rows
}

// Overall averages the driver's per-race metric rows into one row.
func (s *Service) Overall(rows []model.PerRaceMetrics, driver string) model.OverallMetrics {
	return segment.Aggregate(rows, driver)
}

// driverEntries builds the scored driver table filtered to one driver.
func (s *Service) driverEntries(ctx context.Context, in analysis.Input, driver string) []model.ScoredEntry {
	all := s.builder.Build(ctx, in)
	if driver == "" {
		return all
	}
	entries := make([]model.ScoredEntry, 0, len(all))
	for _, se := range all {
		if se.Entry.DriverName == driver {
			entries = append(entries, se)
		}
	}
	return entries
}

// analyzeRace segments one race's lap. Missing telemetry surfaces as an
// error so the caller can account for it per skip reason.
func (s *Service) analyzeRace(ctx context.Context, driver, code string, race model.RankedRace) (*model.PerRaceMetrics, error) {
	if s.provider == nil {
		return nil, telemetry.ErrNoData
	}

	lap, err := s.provider.Lap(ctx, race.Year, race.EventName, s.session, code)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	row := s.segmenter.Metrics(lap, race.Year, race.EventName, driver)
	row.LapUsed = "fastest"
	metrics.RecordSegmentationSeconds(time.Since(start).Seconds())
	metrics.RecordLapSegmented()

	return &row, nil
}

// toRankedRace flattens a scored entry into an output row.
func toRankedRace(se *model.ScoredEntry) model.RankedRace {
	return model.RankedRace{
		Year:              se.Entry.Year,
		Round:             se.Entry.Round,
		EventName:         se.Entry.EventName,
		DriverName:        se.Entry.DriverName,
		FinishPosition:    se.Entry.FinishPositionOrder,
		Grid:              se.Entry.GridPosition,
		PositionsGained:   se.PositionsGained,
		GapToWinner:       se.Gap.GapToWinnerSeconds,
		GapToNext:         se.Gap.GapToNextSeconds,
		FastestLapSeconds: se.Entry.FastestLapSeconds,
		FastestLapSpeed:   se.Entry.FastestLapSpeed,
		WetBonus:          se.WetBonus,
		Score:             se.Score,
	}
}
