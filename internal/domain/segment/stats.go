package segment

import (
	"math"
	"sort"

	"github.com/abhishekneerr/apexrank/internal/domain/model"
)

const p95 = 95.0

// Metric keys of a per-race row, in canonical column order.
//
//nolint:gochecknoglobals // fixed output vocabulary
var metricNames = []string{
	"mean_kph_straight_drs",
	"mean_kph_straight_nondrs",
	"p95_kph_straight_drs",
	"p95_kph_straight_nondrs",
	"coverage_pct_straight_drs",
	"coverage_pct_straight_nondrs",
	"mean_kph_accel_zones",
	"mean_kph_brake_zones",
	"coverage_pct_accel_zones",
	"coverage_pct_brake_zones",
	"mean_kph_slow_corners",
	"mean_kph_medium_corners",
	"mean_kph_high_corners",
	"coverage_pct_slow_corners",
	"coverage_pct_medium_corners",
	"coverage_pct_high_corners",
	"mean_kph_hairpins",
	"coverage_pct_hairpins",
	"mean_kph_chicane_slow",
	"mean_kph_chicane_fast",
	"coverage_pct_chicane_slow",
	"coverage_pct_chicane_fast",
	"mean_kph_complexes",
	"coverage_pct_complexes",
}

// MetricNames returns the canonical metric column order.
func MetricNames() []string {
	out := make([]string, len(metricNames))
	copy(out, metricNames)
	return out
}

// Metrics classifies one lap and summarizes it into a per-race row.
func (s *Segmenter) Metrics(lap *model.Lap, year int, event, driver string) model.PerRaceMetrics {
	c := s.Classify(lap)
	st := newStats(lap.Samples)

	values := map[string]float64{
		"mean_kph_straight_drs":        st.mean(c.DRS),
		"mean_kph_straight_nondrs":     st.mean(c.NonDRS),
		"p95_kph_straight_drs":         st.percentile95(c.DRS),
		"p95_kph_straight_nondrs":      st.percentile95(c.NonDRS),
		"coverage_pct_straight_drs":    st.coverage(c.DRS),
		"coverage_pct_straight_nondrs": st.coverage(c.NonDRS),
		"mean_kph_accel_zones":         st.mean(c.Accel),
		"mean_kph_brake_zones":         st.mean(c.Brake),
		"coverage_pct_accel_zones":     st.coverage(c.Accel),
		"coverage_pct_brake_zones":     st.coverage(c.Brake),
		"mean_kph_slow_corners":        st.mean(c.SlowCorner),
		"mean_kph_medium_corners":      st.mean(c.MediumCorner),
		"mean_kph_high_corners":        st.mean(c.HighCorner),
		"coverage_pct_slow_corners":    st.coverage(c.SlowCorner),
		"coverage_pct_medium_corners":  st.coverage(c.MediumCorner),
		"coverage_pct_high_corners":    st.coverage(c.HighCorner),
		"mean_kph_hairpins":            st.mean(c.Hairpin),
		"coverage_pct_hairpins":        st.coverage(c.Hairpin),
		"mean_kph_chicane_slow":        st.mean(c.ChicaneSlow),
		"mean_kph_chicane_fast":        st.mean(c.ChicaneFast),
		"coverage_pct_chicane_slow":    st.coverage(c.ChicaneSlow),
		"coverage_pct_chicane_fast":    st.coverage(c.ChicaneFast),
		"mean_kph_complexes":           st.mean(c.Complex),
		"coverage_pct_complexes":       st.coverage(c.Complex),
	}

	return model.PerRaceMetrics{
		Year:      year,
		EventName: event,
		Driver:    driver,
		LapUsed:   "fastest",
		Values:    values,
	}
}

// Aggregate averages per-race rows into an overall summary, skipping
// NaN values per metric. A metric with no numeric value in any row
// stays NaN.
func Aggregate(rows []model.PerRaceMetrics, driver string) model.OverallMetrics {
	values := make(map[string]float64, len(metricNames))
	for _, name := range metricNames {
		sum, count := 0.0, 0
		for _, row := range rows {
			v, ok := row.Values[name]
			if !ok || math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			values[name] = math.NaN()
			continue
		}
		values[name] = sum / float64(count)
	}
	return model.OverallMetrics{Driver: driver, Races: len(rows), Values: values}
}

// stats summarizes speed and coverage over masked samples.
type stats struct {
	samples []model.TelemetrySample
	span    float64
}

func newStats(samples []model.TelemetrySample) *stats {
	s := &stats{samples: samples}
	if len(samples) > 0 {
		minD, maxD := samples[0].DistanceMeters, samples[0].DistanceMeters
		for _, smp := range samples {
			minD = math.Min(minD, smp.DistanceMeters)
			maxD = math.Max(maxD, smp.DistanceMeters)
		}
		s.span = maxD - minD
	}
	return s
}

func (s *stats) masked(mask []bool) []float64 {
	var out []float64
	for i, smp := range s.samples {
		if mask[i] && !math.IsNaN(smp.SpeedKph) {
			out = append(out, smp.SpeedKph)
		}
	}
	return out
}

// mean returns the mean speed over the mask, NaN when the mask is empty.
func (s *stats) mean(mask []bool) float64 {
	vals := s.masked(mask)
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// percentile95 returns the linearly interpolated 95th-percentile speed
// over the mask, NaN when the mask is empty.
func (s *stats) percentile95(mask []bool) float64 {
	vals := s.masked(mask)
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	rank := p95 / 100 * float64(len(vals)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return vals[lo]
	}
	frac := rank - float64(lo)
	return vals[lo] + frac*(vals[hi]-vals[lo])
}

// coverage returns the percentage of the lap's distance span covered by
// the masked samples; 0 for an empty mask or a zero-length track.
func (s *stats) coverage(mask []bool) float64 {
	if s.span <= 0 {
		return 0
	}
	first := true
	var minD, maxD float64
	for i, smp := range s.samples {
		if !mask[i] {
			continue
		}
		if first {
			minD, maxD = smp.DistanceMeters, smp.DistanceMeters
			first = false
			continue
		}
		minD = math.Min(minD, smp.DistanceMeters)
		maxD = math.Max(maxD, smp.DistanceMeters)
	}
	if first {
		return 0
	}
	return 100 * (maxD - minD) / s.span
}
