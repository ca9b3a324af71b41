// Package export writes the pipeline's output tables as delimited text.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/abhishekneerr/apexrank/internal/domain/laptime"
	"github.com/abhishekneerr/apexrank/internal/domain/model"
	"github.com/abhishekneerr/apexrank/internal/domain/segment"
	"github.com/abhishekneerr/apexrank/pkg/metrics"
)

// topRacesHeader is the column order of the ranked-races table.
var topRacesHeader = []string{
	"year", "round", "name", "driverName",
	"finishPosition", "grid", "positionsGained",
	"gapToWinner", "gapToNext",
	"fastestLapTime", "fastestLapSpeed",
	"wetBonus", "score",
}

// WriteTopRaces writes the ranked-races table to w in row order.
func WriteTopRaces(w io.Writer, rows []model.RankedRace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(topRacesHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Round),
			r.EventName,
			r.DriverName,
			strconv.Itoa(r.FinishPosition),
			optInt(r.Grid),
			num(r.PositionsGained),
			optNum(r.GapToWinner),
			optNum(r.GapToNext),
			laptime.FormatSeconds(r.FastestLapSeconds),
			optNum(r.FastestLapSpeed),
			num(r.WetBonus),
			num(r.Score),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	metrics.RecordExportRows("top_races", len(rows))
	return nil
}

// WritePerRaceMetrics writes one row per segmented lap, metric columns in
// canonical order.
func WritePerRaceMetrics(w io.Writer, rows []model.PerRaceMetrics) error {
	names := segment.MetricNames()
	cw := csv.NewWriter(w)

	header := append([]string{"year", "event", "driver", "lap"}, names...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := make([]string, 0, len(header))
		record = append(record,
			strconv.Itoa(r.Year),
			r.EventName,
			r.Driver,
			r.LapUsed,
		)
		for _, name := range names {
			record = append(record, metricCell(r.Values, name))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	metrics.RecordExportRows("per_race_metrics", len(rows))
	return nil
}

// WriteOverallMetrics writes the per-driver aggregate table.
func WriteOverallMetrics(w io.Writer, rows []model.OverallMetrics) error {
	names := segment.MetricNames()
	cw := csv.NewWriter(w)

	header := append([]string{"driver", "races"}, names...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := make([]string, 0, len(header))
		record = append(record, r.Driver, strconv.Itoa(r.Races))
		for _, name := range names {
			record = append(record, metricCell(r.Values, name))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	metrics.RecordExportRows("overall_metrics", len(rows))
	return nil
}

// metricCell renders one metric value; absent keys stay empty.
func metricCell(values map[string]float64, name string) string {
	v, ok := values[name]
	if !ok {
		return ""
	}
	return num(v)
}

// num renders a float with full precision; NaN becomes an empty cell.
func num(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optNum(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
