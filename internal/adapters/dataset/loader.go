// Package dataset loads the Ergast-style CSV tables from a directory into
// the typed in-memory tables the ranking pipeline consumes.
//
// The drivers, races and results tables are required; status and weather
// are optional and simply absent when their file is not present. Numeric
// fields holding the dataset's null sentinels parse to nil pointers.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abhishekneerr/apexrank/internal/domain/analysis"
	"github.com/abhishekneerr/apexrank/internal/domain/model"
	"github.com/abhishekneerr/apexrank/pkg/logger"
	"github.com/abhishekneerr/apexrank/pkg/metrics"
)

// Table file names inside the dataset directory.
const (
	driversFile = "drivers.csv"
	racesFile   = "races.csv"
	resultsFile = "results.csv"
	statusFile  = "status.csv"
	weatherFile = "weather.csv"
)

// Loader reads the CSV tables from a directory.
type Loader struct {
	log logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader creates a dataset loader with the given options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		log: logger.Named("dataset"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads all tables from dir. Missing optional tables leave the
// corresponding slice nil; a missing required table or column is an error.
func (l *Loader) Load(ctx context.Context, dir string) (analysis.Input, error) {
	var in analysis.Input

	drivers, err := loadTable(filepath.Join(dir, driversFile), true, parseDriver)
	if err != nil {
		return in, err
	}
	races, err := loadTable(filepath.Join(dir, racesFile), true, parseRace)
	if err != nil {
		return in, err
	}
	results, err := loadTable(filepath.Join(dir, resultsFile), true, parseResult)
	if err != nil {
		return in, err
	}
	status, err := loadTable(filepath.Join(dir, statusFile), false, parseStatus)
	if err != nil {
		return in, err
	}
	weather, err := loadTable(filepath.Join(dir, weatherFile), false, parseWeather)
	if err != nil {
		return in, err
	}

	in = analysis.Input{
		Drivers: drivers,
		Races:   races,
		Results: results,
		Status:  status,
		Weather: weather,
	}

	metrics.UpdateDatasetRows("drivers", len(drivers))
	metrics.UpdateDatasetRows("races", len(races))
	metrics.UpdateDatasetRows("results", len(results))
	metrics.UpdateDatasetRows("status", len(status))
	metrics.UpdateDatasetRows("weather", len(weather))

	l.log.Info(ctx, "dataset loaded",
		logger.String("dir", dir),
		logger.Int("drivers", len(drivers)),
		logger.Int("races", len(races)),
		logger.Int("results", len(results)),
		logger.Int("status", len(status)),
		logger.Int("weather", len(weather)),
	)
	return in, nil
}

// row is one record with its header index resolved.
type row struct {
	cols   map[string]int
	fields []string
	line   int
}

// get returns a trimmed cell by column name.
func (r row) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// loadTable streams a CSV file through parse. When required is false a
// missing file yields a nil slice and no error.
func loadTable[T any](path string, required bool, parse func(row) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil, nil
		}
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, filepath.Base(path))
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", filepath.Base(path), err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var out []T
	for line := 2; ; line++ {
		fields, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", filepath.Base(path), line, err)
		}
		rec, err := parse(row{cols: cols, fields: fields, line: line})
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), line, err)
		}
		out = append(out, rec)
	}
}

func parseDriver(r row) (model.Driver, error) {
	id, err := requiredInt(r, "driverid")
	if err != nil {
		return model.Driver{}, err
	}
	return model.Driver{
		DriverID: id,
		Forename: r.get("forename"),
		Surname:  r.get("surname"),
	}, nil
}

func parseRace(r row) (model.Race, error) {
	id, err := requiredInt(r, "raceid")
	if err != nil {
		return model.Race{}, err
	}
	year, err := requiredInt(r, "year")
	if err != nil {
		return model.Race{}, err
	}
	round, err := requiredInt(r, "round")
	if err != nil {
		return model.Race{}, err
	}
	if _, ok := r.cols["name"]; !ok {
		return model.Race{}, fmt.Errorf("%w: name", ErrMissingColumn)
	}
	return model.Race{
		RaceID: id,
		Year:   year,
		Round:  round,
		Name:   r.get("name"),
		Date:   r.get("date"),
	}, nil
}

func parseResult(r row) (model.Result, error) {
	raceID, err := requiredInt(r, "raceid")
	if err != nil {
		return model.Result{}, err
	}
	driverID, err := requiredInt(r, "driverid")
	if err != nil {
		return model.Result{}, err
	}
	posOrder, err := requiredInt(r, "positionorder")
	if err != nil {
		return model.Result{}, err
	}
	return model.Result{
		RaceID:          raceID,
		DriverID:        driverID,
		Grid:            optionalInt(r.get("grid")),
		PositionOrder:   posOrder,
		Milliseconds:    optionalInt(r.get("milliseconds")),
		Time:            nullToEmpty(r.get("time")),
		FastestLapTime:  nullToEmpty(r.get("fastestlaptime")),
		FastestLapSpeed: optionalFloat(r.get("fastestlapspeed")),
		FastestLap:      optionalInt(r.get("fastestlap")),
		StatusID:        optionalInt(r.get("statusid")),
	}, nil
}

func parseStatus(r row) (model.Status, error) {
	id, err := requiredInt(r, "statusid")
	if err != nil {
		return model.Status{}, err
	}
	return model.Status{
		StatusID: id,
		Status:   r.get("status"),
	}, nil
}

func parseWeather(r row) (model.WeatherObservation, error) {
	if _, ok := r.cols["gp"]; !ok {
		return model.WeatherObservation{}, fmt.Errorf("%w: gp", ErrMissingColumn)
	}
	return model.WeatherObservation{
		GP:            r.get("gp"),
		Date:          r.get("date"),
		Precipitation: optionalFloat(r.get("precipitation")),
	}, nil
}

// requiredInt parses a column that must exist and hold an integer.
func requiredInt(r row, name string) (int, error) {
	if _, ok := r.cols[name]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	raw := r.get(name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadRow, name, raw)
	}
	return n, nil
}

// isNull reports whether a cell holds one of the dataset's null sentinels.
func isNull(s string) bool {
	switch s {
	case "", `\N`, "None":
		return true
	}
	return false
}

func nullToEmpty(s string) string {
	if isNull(s) {
		return ""
	}
	return s
}

func optionalInt(s string) *int {
	if isNull(s) {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		metrics.RecordParseFailure()
		return nil
	}
	return &n
}

func optionalFloat(s string) *float64 {
	if isNull(s) {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		metrics.RecordParseFailure()
		return nil
	}
	return &f
}
