package segment

// Thresholds is the segmentation configuration table. Defaults match
// the tuning the pipeline ships with; every knob can be overridden
// through configuration.
type Thresholds struct {
	// Corner classification by apex speed, km/h.
	SlowKph    float64 `koanf:"slow_kph"`
	MediumKph  float64 `koanf:"medium_kph"`
	HairpinKph float64 `koanf:"hairpin_kph"`

	// Chicane / complex grouping, meters.
	ChicaneGapM    float64 `koanf:"chicane_gap_m"`
	ChicaneWindowM float64 `koanf:"chicane_window_m"`
	ComplexSpanM   float64 `koanf:"complex_span_m"`

	// Corner window half-width, meters.
	CornerWindowM float64 `koanf:"corner_window_m"`

	// Acceleration / braking detection.
	AccelMps2      float64 `koanf:"accel_mps2"`
	BrakeMps2      float64 `koanf:"brake_mps2"`
	ThrottleMinPct float64 `koanf:"throttle_min_pct"`
	BrakeMinPct    float64 `koanf:"brake_min_pct"`
}

// DefaultThresholds returns the stock segmentation tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SlowKph:        120,
		MediumKph:      170,
		HairpinKph:     80,
		ChicaneGapM:    130,
		ChicaneWindowM: 45,
		ComplexSpanM:   300,
		CornerWindowM:  30,
		AccelMps2:      0.5,
		BrakeMps2:      -0.7,
		ThrottleMinPct: 50,
		BrakeMinPct:    10,
	}
}
