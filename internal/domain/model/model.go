// Package model contains the typed records passed between layers.
//
// The input-table records mirror the Ergast-style CSV schema at the input
// boundary; optional columns are pointers so that a missing value survives
// the trip through the pipeline instead of being silently zeroed.
package model

import "strings"

// Driver is one row of the drivers table.
type Driver struct {
	DriverID int
	Forename string
	Surname  string
}

// FullName joins forename and surname the way the dataset keys drivers.
func (d Driver) FullName() string {
	return strings.TrimSpace(d.Forename + " " + d.Surname)
}

// Race is one row of the races table.
type Race struct {
	RaceID int
	Year   int
	Round  int
	Name   string
	Date   string // ISO date as shipped in the dataset
}

// Result is one row of the results table.
type Result struct {
	RaceID          int
	DriverID        int
	Grid            *int
	PositionOrder   int
	Milliseconds    *int
	Time            string // textual race time; "+gap" for non-winners
	FastestLapTime  string // "M:SS.mmm" or a sentinel
	FastestLapSpeed *float64
	FastestLap      *int
	StatusID        *int
}

// Status is one row of the status table.
type Status struct {
	StatusID int
	Status   string
}

// WeatherObservation is one row of the optional weather table,
// joined to races on (GP name, date).
type WeatherObservation struct {
	GP            string
	Date          string
	Precipitation *float64
}

// RaceEntry is one driver's result in one race after the table joins.
// FinishPositionOrder is unique within a race and forms the total order
// of classification (1 = winner).
type RaceEntry struct {
	RaceID              int
	DriverID            int
	Year                int
	Round               int
	EventName           string
	DriverName          string
	GridPosition        *int
	FinishPositionOrder int
	ElapsedMilliseconds *int
	GapText             string // "+12.345" style textual gap, if published
	FastestLapSeconds   *float64
	FastestLapSpeed     *float64
	StatusID            *int
	Precipitation       *float64
}

// GapResult carries an entry's computed gaps. Nil means the gap is
// undefined for that entry (no reference time, or last classified).
type GapResult struct {
	GapToWinnerSeconds *float64
	GapToNextSeconds   *float64
}

// ScoredEntry is a RaceEntry with its gaps and scoring inputs resolved.
// It exists only between ranking and top-N selection.
type ScoredEntry struct {
	Entry           RaceEntry
	Gap             GapResult
	PositionsGained float64
	StatusWeight    float64
	WetBonus        float64
	Score           float64
}

// RankedRace is one output row of the top-N table.
type RankedRace struct {
	Year              int
	Round             int
	EventName         string
	DriverName        string
	FinishPosition    int
	Grid              *int
	PositionsGained   float64
	GapToWinner       *float64
	GapToNext         *float64
	FastestLapSeconds *float64
	FastestLapSpeed   *float64
	WetBonus          float64
	Score             float64
}

// TelemetrySample is one time-ordered point along a lap. Distance is
// monotonic non-decreasing within a lap; optional channels are nil when
// the provider did not publish them.
type TelemetrySample struct {
	DistanceMeters float64
	SpeedKph       float64
	ThrottlePct    *float64
	BrakePct       *float64
	DRS            *float64
	TimeSeconds    *float64
}

// Lap bundles everything a provider returns for one selected lap.
type Lap struct {
	Samples  []TelemetrySample
	Corners  []CornerDescriptor
	DRSZones []DRSZone
}

// CornerDescriptor is a circuit-relative apex position.
type CornerDescriptor struct {
	DistanceMeters float64
	Label          string
}

// DRSZone is one activation region; Start/End are order-independent.
type DRSZone struct {
	StartMeters float64
	EndMeters   float64
}

// PerRaceMetrics is one summary row produced by segmenting one lap.
type PerRaceMetrics struct {
	Year      int
	EventName string
	Driver    string
	LapUsed   string
	Values    map[string]float64
}

// OverallMetrics is the per-metric mean across a driver's race rows.
type OverallMetrics struct {
	Driver string
	Races  int
	Values map[string]float64
}
