// Package telemetry defines the lap data contract and its file-backed
// implementation.
//
// A Provider resolves one selected lap for a (year, event, session, driver)
// tuple: the distance-ordered samples plus the circuit's corner list and
// DRS zones. Callers treat ErrNoData as "nothing published", not a failure.
package telemetry

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abhishekneerr/apexrank/internal/domain/model"
	"github.com/abhishekneerr/apexrank/pkg/logger"
	"github.com/abhishekneerr/apexrank/pkg/metrics"
)

// Provider fetches one lap of telemetry for a driver at an event.
type Provider interface {
	// Lap returns the selected lap for the driver code at the given
	// event session. Returns ErrNoData when nothing is published for
	// the selection.
	Lap(ctx context.Context, year int, event, session, driverCode string) (*model.Lap, error)
}

// fileProvider reads per-lap CSV files from a directory tree laid out as
//
//	<root>/<year>/<event-slug>/corners.csv        (optional)
//	<root>/<year>/<event-slug>/drs_zones.csv      (optional)
//	<root>/<year>/<event-slug>/<session>/<CODE>.csv
type fileProvider struct {
	root string
	log  logger.Logger
}

// FileOption configures a file-backed provider.
type FileOption func(*fileProvider)

// WithFileLogger sets the logger used for fetch diagnostics.
func WithFileLogger(log logger.Logger) FileOption {
	return func(p *fileProvider) {
		if log != nil {
			p.log = log
		}
	}
}

// NewFileProvider creates a provider reading lap files under root.
func NewFileProvider(root string, opts ...FileOption) Provider {
	p := &fileProvider{
		root: root,
		log:  logger.Named("telemetry"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *fileProvider) Lap(ctx context.Context, year int, event, session, driverCode string) (*model.Lap, error) {
	start := time.Now()
	defer func() {
		metrics.RecordTelemetryFetchSeconds(time.Since(start).Seconds())
	}()

	eventDir := filepath.Join(p.root, strconv.Itoa(year), eventSlug(event))
	lapPath := filepath.Join(eventDir, session, driverCode+".csv")

	samples, err := readSamples(lapPath)
	if err != nil {
		return nil, err
	}

	corners, err := readCorners(filepath.Join(eventDir, "corners.csv"))
	if err != nil {
		return nil, err
	}
	zones, err := readZones(filepath.Join(eventDir, "drs_zones.csv"))
	if err != nil {
		return nil, err
	}

	p.log.Debug(ctx, "lap fetched",
		logger.Int("year", year),
		logger.String("event", event),
		logger.String("driver", driverCode),
		logger.Int("samples", len(samples)),
	)
	return &model.Lap{Samples: samples, Corners: corners, DRSZones: zones}, nil
}

// eventSlug normalizes an event name into its directory name.
func eventSlug(event string) string {
	s := strings.ToLower(strings.TrimSpace(event))
	return strings.ReplaceAll(s, " ", "_")
}

func readSamples(path string) ([]model.TelemetrySample, error) {
	rows, cols, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, filepath.Base(path))
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, filepath.Base(path))
	}

	di, ok := cols["distance"]
	si, ok2 := cols["speed"]
	if !ok || !ok2 {
		return nil, fmt.Errorf("telemetry %s: distance and speed columns required", filepath.Base(path))
	}

	samples := make([]model.TelemetrySample, 0, len(rows))
	for _, fields := range rows {
		dist, err := strconv.ParseFloat(fields[di], 64)
		if err != nil {
			metrics.RecordParseFailure()
			continue
		}
		speed, err := strconv.ParseFloat(fields[si], 64)
		if err != nil {
			metrics.RecordParseFailure()
			continue
		}
		samples = append(samples, model.TelemetrySample{
			DistanceMeters: dist,
			SpeedKph:       speed,
			ThrottlePct:    cell(fields, cols, "throttle"),
			BrakePct:       cell(fields, cols, "brake"),
			DRS:            cell(fields, cols, "drs"),
			TimeSeconds:    cell(fields, cols, "time"),
		})
	}
	return samples, nil
}

func readCorners(path string) ([]model.CornerDescriptor, error) {
	rows, cols, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	di, ok := cols["distance"]
	if !ok {
		return nil, fmt.Errorf("corners %s: distance column required", filepath.Base(path))
	}
	li, hasLabel := cols["label"]

	var corners []model.CornerDescriptor
	for _, fields := range rows {
		dist, err := strconv.ParseFloat(fields[di], 64)
		if err != nil {
			metrics.RecordParseFailure()
			continue
		}
		c := model.CornerDescriptor{DistanceMeters: dist}
		if hasLabel && li < len(fields) {
			c.Label = strings.TrimSpace(fields[li])
		}
		corners = append(corners, c)
	}
	return corners, nil
}

func readZones(path string) ([]model.DRSZone, error) {
	rows, cols, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	si, ok := cols["start"]
	ei, ok2 := cols["end"]
	if !ok || !ok2 {
		return nil, fmt.Errorf("drs zones %s: start and end columns required", filepath.Base(path))
	}

	var zones []model.DRSZone
	for _, fields := range rows {
		start, err := strconv.ParseFloat(fields[si], 64)
		if err != nil {
			metrics.RecordParseFailure()
			continue
		}
		end, err := strconv.ParseFloat(fields[ei], 64)
		if err != nil {
			metrics.RecordParseFailure()
			continue
		}
		zones = append(zones, model.DRSZone{StartMeters: start, EndMeters: end})
	}
	return zones, nil
}

// readCSV returns all data rows and the lower-cased header index.
func readCSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, map[string]int{}, nil
		}
		return nil, nil, fmt.Errorf("read %s header: %w", filepath.Base(path), err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var rows [][]string
	for {
		fields, err := r.Read()
		if err == io.EOF {
			return rows, cols, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		rows = append(rows, fields)
	}
}

// cell parses an optional float column; absent or unparsable cells are nil.
func cell(fields []string, cols map[string]int, name string) *float64 {
	i, ok := cols[name]
	if !ok || i >= len(fields) {
		return nil
	}
	raw := strings.TrimSpace(fields[i])
	if raw == "" || raw == `\N` {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}
