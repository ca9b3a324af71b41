// Package segment classifies a lap's distance axis into overlapping
// track categories (straights, DRS zones, corner speed classes,
// hairpins, chicanes, corner complexes) and summarizes speed and
// coverage per category.
//
// Masks are independently computed booleans per sample, not a
// partition: a sample may belong to zero, one or several categories.
// Two invariants always hold: straight == !corner for every sample,
// and the DRS / non-DRS masks partition the straight mask.
package segment

import (
	"math"
	"sort"

	"github.com/abhishekneerr/apexrank/internal/domain/model"
)

const (
	kphToMps   = 1.0 / 3.6
	minDeltaT  = 1e-3
)

// Classification is the mask set over one lap's ordered samples.
type Classification struct {
	Corner   []bool
	Straight []bool

	DRS    []bool
	NonDRS []bool

	Accel []bool
	Brake []bool

	SlowCorner   []bool
	MediumCorner []bool
	HighCorner   []bool
	Hairpin      []bool

	Chicane     []bool
	ChicaneSlow []bool
	ChicaneFast []bool
	Complex     []bool
}

// Segmenter classifies laps against a threshold configuration.
type Segmenter struct {
	thr Thresholds
}

// Option applies a configuration option to the Segmenter.
type Option func(*Segmenter)

// WithThresholds overrides the segmentation tuning.
func WithThresholds(thr Thresholds) Option {
	return func(s *Segmenter) {
		s.thr = thr
	}
}

// NewSegmenter creates a segmenter with default thresholds.
func NewSegmenter(opts ...Option) *Segmenter {
	s := &Segmenter{thr: DefaultThresholds()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cornerWindow is one corner matched against the lap's samples.
type cornerWindow struct {
	apexDistance float64
	apexSpeed    float64
	mask         []bool
}

// DeriveAcceleration computes per-sample acceleration in m/s² from the
// speed and time channels. The first delta-time seeds from the second
// sample's gap; fewer than two samples (or a missing time channel)
// yield all zeros.
func DeriveAcceleration(samples []model.TelemetrySample) []float64 {
	acc := make([]float64, len(samples))
	if len(samples) < 2 {
		return acc
	}
	for _, s := range samples {
		if s.TimeSeconds == nil {
			return acc
		}
	}

	dt0 := *samples[1].TimeSeconds - *samples[0].TimeSeconds
	if dt0 < minDeltaT {
		dt0 = minDeltaT
	}
	prevV := samples[0].SpeedKph * kphToMps
	prevT := *samples[0].TimeSeconds
	for i := 1; i < len(samples); i++ {
		v := samples[i].SpeedKph * kphToMps
		dt := *samples[i].TimeSeconds - prevT
		if dt == 0 {
			dt = dt0
		}
		acc[i] = (v - prevV) / dt
		prevV = v
		prevT = *samples[i].TimeSeconds
	}
	return acc
}

// Classify computes the full mask set for one lap.
func (s *Segmenter) Classify(lap *model.Lap) *Classification {
	n := len(lap.Samples)
	c := &Classification{
		Corner:   make([]bool, n),
		Straight: make([]bool, n),

		DRS:    make([]bool, n),
		NonDRS: make([]bool, n),

		Accel: make([]bool, n),
		Brake: make([]bool, n),

		SlowCorner:   make([]bool, n),
		MediumCorner: make([]bool, n),
		HighCorner:   make([]bool, n),
		Hairpin:      make([]bool, n),

		Chicane:     make([]bool, n),
		ChicaneSlow: make([]bool, n),
		ChicaneFast: make([]bool, n),
		Complex:     make([]bool, n),
	}
	if n == 0 {
		return c
	}

	windows := s.matchCorners(lap)
	for _, w := range windows {
		orInto(c.Corner, w.mask)
	}
	for i := range c.Straight {
		c.Straight[i] = !c.Corner[i]
	}

	s.classifyCornerSpeeds(c, windows)
	s.markDRS(c, lap)
	s.markAccelBrake(c, lap)
	s.markChicanes(c, lap, windows)
	s.markComplexes(c, lap, windows)

	return c
}

// matchCorners builds one window mask per corner descriptor and finds
// its apex speed (minimum speed inside the window). Corners whose
// window matches no sample are dropped.
func (s *Segmenter) matchCorners(lap *model.Lap) []cornerWindow {
	var windows []cornerWindow
	for _, corner := range lap.Corners {
		mask := make([]bool, len(lap.Samples))
		apex := math.NaN()
		matched := false
		for i, smp := range lap.Samples {
			if math.Abs(smp.DistanceMeters-corner.DistanceMeters) > s.thr.CornerWindowM {
				continue
			}
			mask[i] = true
			matched = true
			if math.IsNaN(apex) || smp.SpeedKph < apex {
				apex = smp.SpeedKph
			}
		}
		if !matched {
			continue
		}
		windows = append(windows, cornerWindow{
			apexDistance: corner.DistanceMeters,
			apexSpeed:    apex,
			mask:         mask,
		})
	}
	return windows
}

// classifyCornerSpeeds buckets each corner window by apex speed.
// Hairpin overlaps slow: an apex under the hairpin threshold is under
// the slow threshold too, so both masks receive it.
func (s *Segmenter) classifyCornerSpeeds(c *Classification, windows []cornerWindow) {
	for _, w := range windows {
		if w.apexSpeed < s.thr.HairpinKph {
			orInto(c.Hairpin, w.mask)
		}
		switch {
		case w.apexSpeed < s.thr.SlowKph:
			orInto(c.SlowCorner, w.mask)
		case w.apexSpeed < s.thr.MediumKph:
			orInto(c.MediumCorner, w.mask)
		default:
			orInto(c.HighCorner, w.mask)
		}
	}
}

// markDRS fills the DRS / non-DRS partition of the straights. A live
// DRS channel wins; otherwise zones are synthesized from the circuit's
// DRS zone list.
func (s *Segmenter) markDRS(c *Classification, lap *model.Lap) {
	hasDRSChannel := false
	for _, smp := range lap.Samples {
		if smp.DRS != nil {
			hasDRSChannel = true
			break
		}
	}

	if hasDRSChannel {
		for i, smp := range lap.Samples {
			c.DRS[i] = smp.DRS != nil && *smp.DRS > 0 && c.Straight[i]
		}
	} else {
		for _, zone := range lap.DRSZones {
			lo := math.Min(zone.StartMeters, zone.EndMeters)
			hi := math.Max(zone.StartMeters, zone.EndMeters)
			for i, smp := range lap.Samples {
				if smp.DistanceMeters >= lo && smp.DistanceMeters <= hi {
					c.DRS[i] = true
				}
			}
		}
		for i := range c.DRS {
			c.DRS[i] = c.DRS[i] && c.Straight[i]
		}
	}

	for i := range c.NonDRS {
		c.NonDRS[i] = c.Straight[i] && !c.DRS[i]
	}
}

// markAccelBrake fills the acceleration and braking masks. Acceleration
// is restricted to straights; braking is not, since braking happens
// into corners.
func (s *Segmenter) markAccelBrake(c *Classification, lap *model.Lap) {
	acc := DeriveAcceleration(lap.Samples)

	hasThrottle, hasBrake := false, false
	for _, smp := range lap.Samples {
		hasThrottle = hasThrottle || smp.ThrottlePct != nil
		hasBrake = hasBrake || smp.BrakePct != nil
	}

	for i, smp := range lap.Samples {
		accel := acc[i] > s.thr.AccelMps2
		if hasThrottle {
			throttle := 0.0
			if smp.ThrottlePct != nil {
				throttle = *smp.ThrottlePct
			}
			accel = accel && throttle >= s.thr.ThrottleMinPct
		}
		c.Accel[i] = accel && c.Straight[i]

		brake := acc[i] < s.thr.BrakeMps2
		if hasBrake {
			pedal := 0.0
			if smp.BrakePct != nil {
				pedal = *smp.BrakePct
			}
			brake = brake || pedal >= s.thr.BrakeMinPct
		}
		c.Brake[i] = brake
	}
}

// markChicanes pairs adjacent corners closer than the chicane gap and
// marks a window around each pair's midpoint, sub-classified by the
// pair's minimum apex speed.
func (s *Segmenter) markChicanes(c *Classification, lap *model.Lap, windows []cornerWindow) {
	if len(windows) < 2 {
		return
	}
	ordered := sortedByDistance(windows)
	for i := 0; i < len(ordered)-1; i++ {
		a, b := ordered[i], ordered[i+1]
		if math.Abs(b.apexDistance-a.apexDistance) > s.thr.ChicaneGapM {
			continue
		}
		center := (a.apexDistance + b.apexDistance) / 2
		lo := center - s.thr.ChicaneWindowM
		hi := center + s.thr.ChicaneWindowM

		mask := make([]bool, len(lap.Samples))
		matched := false
		for k, smp := range lap.Samples {
			if smp.DistanceMeters >= lo && smp.DistanceMeters <= hi {
				mask[k] = true
				matched = true
			}
		}
		if !matched {
			continue
		}
		orInto(c.Chicane, mask)
		if math.Min(a.apexSpeed, b.apexSpeed) < s.thr.MediumKph {
			orInto(c.ChicaneSlow, mask)
		} else {
			orInto(c.ChicaneFast, mask)
		}
	}
}

// markComplexes greedily groups corners within the complex span.
// Groups of three or more mark the region from the first apex minus
// the corner window to the last apex plus it. The group start slides
// one corner at a time, so overlapping groups are allowed.
func (s *Segmenter) markComplexes(c *Classification, lap *model.Lap, windows []cornerWindow) {
	if len(windows) < 3 {
		return
	}
	dists := make([]float64, len(windows))
	for i, w := range windows {
		dists[i] = w.apexDistance
	}
	sort.Float64s(dists)

	for i := 0; i < len(dists); i++ {
		j := i
		for j+1 < len(dists) && dists[j+1]-dists[i] <= s.thr.ComplexSpanM {
			j++
		}
		if j-i+1 < 3 {
			continue
		}
		lo := dists[i] - s.thr.CornerWindowM
		hi := dists[j] + s.thr.CornerWindowM
		for k, smp := range lap.Samples {
			if smp.DistanceMeters >= lo && smp.DistanceMeters <= hi {
				c.Complex[k] = true
			}
		}
	}
}

func sortedByDistance(windows []cornerWindow) []cornerWindow {
	out := make([]cornerWindow, len(windows))
	copy(out, windows)
	sort.Slice(out, func(i, j int) bool {
		return out[i].apexDistance < out[j].apexDistance
	})
	return out
}

func orInto(dst, src []bool) {
	for i := range src {
		if src[i] {
			dst[i] = true
		}
	}
}
