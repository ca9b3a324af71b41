// Package analysis joins the input tables into per-entry race records
// and derives the scoring inputs (positions gained, status weight, wet
// bonus, per-race gaps).
package analysis

import (
	"context"
	"sort"

	"github.com/abhishekneerr/apexrank/internal/domain/gap"
	"github.com/abhishekneerr/apexrank/internal/domain/laptime"
	"github.com/abhishekneerr/apexrank/internal/domain/model"
	"github.com/abhishekneerr/apexrank/pkg/logger"
	"github.com/abhishekneerr/apexrank/pkg/metrics"
)

// Default builder configuration constants.
const (
	defaultMinYear = 2018
)

// Wet bonus thresholds over the precipitation column.
const (
	wetLight    = 5.0
	wetModerate = 10.0
	wetHeavy    = 20.0
	wetExtreme  = 50.0
)

// DefaultDNFStatusIDs is the default retirement/disqualification
// status-code set. It is series taxonomy, not logic: callers override
// it through configuration when the vocabulary differs.
//
//nolint:gochecknoglobals // shared default table
var DefaultDNFStatusIDs = []int{
	2,  // disqualified
	3,  // accident
	4,  // collision
	5,  // engine
	6,  // gearbox
	7,  // transmission
	8,  // clutch
	9,  // hydraulics
	10, // electrical
	20, // spun off
	22, // suspension
	23, // brakes
	26, // mechanical
	29, // puncture
	30, // driveshaft
	31, // retired
	32, // fuel pressure
}

// Input bundles the tables the builder joins. Status and Weather are
// optional; an empty slice means the table was absent.
type Input struct {
	Drivers []model.Driver
	Races   []model.Race
	Results []model.Result
	Status  []model.Status
	Weather []model.WeatherObservation
}

// Builder assembles the joined driver table.
type Builder struct {
	minYear  int
	winsOnly bool
	dnfIDs   map[int]struct{}
	log      logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithMinYear keeps only races from the given season onward.
func WithMinYear(year int) Option {
	return func(b *Builder) {
		if year > 0 {
			b.minYear = year
		}
	}
}

// WithWinsOnly retains only race winners. The filter applies after gap
// computation so gaps still reflect the full field.
func WithWinsOnly(winsOnly bool) Option {
	return func(b *Builder) {
		b.winsOnly = winsOnly
	}
}

// WithDNFStatusIDs overrides the retirement status-code set.
func WithDNFStatusIDs(ids []int) Option {
	return func(b *Builder) {
		if len(ids) == 0 {
			return
		}
		b.dnfIDs = make(map[int]struct{}, len(ids))
		for _, id := range ids {
			b.dnfIDs[id] = struct{}{}
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(log logger.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBuilder creates a builder with default configuration.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		minYear: defaultMinYear,
	}
	WithDNFStatusIDs(DefaultDNFStatusIDs)(b)

	for _, opt := range opts {
		opt(b)
	}

	if b.log == nil {
		b.log = logger.Named("analysis")
	}
	return b
}

// Build joins results, races and drivers, derives the scoring inputs
// and computes per-race gaps. The output is ordered by (raceId,
// finishPositionOrder) and is a pure function of the input tables.
func (b *Builder) Build(ctx context.Context, in Input) []model.ScoredEntry {
	raceByID := make(map[int]model.Race, len(in.Races))
	for _, r := range in.Races {
		if r.Year >= b.minYear {
			raceByID[r.RaceID] = r
		}
	}
	driverByID := make(map[int]model.Driver, len(in.Drivers))
	for _, d := range in.Drivers {
		driverByID[d.DriverID] = d
	}
	precipByRace := b.precipitationIndex(in)
	b.checkStatusVocabulary(ctx, in.Status)

	// results x races (inner, year filter) x drivers (left).
	entriesByRace := make(map[int][]model.RaceEntry)
	for _, res := range in.Results {
		race, ok := raceByID[res.RaceID]
		if !ok {
			continue
		}
		e := model.RaceEntry{
			RaceID:              res.RaceID,
			DriverID:            res.DriverID,
			Year:                race.Year,
			Round:               race.Round,
			EventName:           race.Name,
			GridPosition:        res.Grid,
			FinishPositionOrder: res.PositionOrder,
			ElapsedMilliseconds: res.Milliseconds,
			GapText:             res.Time,
			FastestLapSeconds:   laptime.ParseSeconds(res.FastestLapTime),
			FastestLapSpeed:     res.FastestLapSpeed,
			StatusID:            res.StatusID,
			Precipitation:       precipByRace[res.RaceID],
		}
		if d, found := driverByID[res.DriverID]; found {
			e.DriverName = d.FullName()
		}
		entriesByRace[res.RaceID] = append(entriesByRace[res.RaceID], e)
	}

	raceIDs := make([]int, 0, len(entriesByRace))
	for id := range entriesByRace {
		raceIDs = append(raceIDs, id)
	}
	sort.Ints(raceIDs)

	statusKnown := len(in.Status) > 0
	var out []model.ScoredEntry
	for _, raceID := range raceIDs {
		gaps := gap.Compute(entriesByRace[raceID])
		metrics.RecordRaceRanked()
		for i := range gaps.Entries {
			e := gaps.Entries[i]
			if b.winsOnly && e.FinishPositionOrder != 1 {
				continue
			}
			out = append(out, model.ScoredEntry{
				Entry:           e,
				Gap:             gaps.Gaps[i],
				PositionsGained: positionsGained(&e),
				StatusWeight:    b.statusWeight(&e, statusKnown),
				WetBonus:        WetBonus(e.Precipitation),
			})
		}
	}
	return out
}

// precipitationIndex joins the weather table to races on (name, date).
func (b *Builder) precipitationIndex(in Input) map[int]*float64 {
	if len(in.Weather) == 0 {
		return nil
	}
	type key struct{ gp, date string }
	byKey := make(map[key]*float64, len(in.Weather))
	for _, w := range in.Weather {
		byKey[key{w.GP, w.Date}] = w.Precipitation
	}
	out := make(map[int]*float64)
	for _, r := range in.Races {
		if p, ok := byKey[key{r.Name, r.Date}]; ok {
			out[r.RaceID] = p
		}
	}
	return out
}

// checkStatusVocabulary warns when configured DNF codes are missing
// from the loaded status table.
func (b *Builder) checkStatusVocabulary(ctx context.Context, statuses []model.Status) {
	if len(statuses) == 0 {
		return
	}
	known := make(map[int]struct{}, len(statuses))
	for _, s := range statuses {
		known[s.StatusID] = struct{}{}
	}
	for id := range b.dnfIDs {
		if _, ok := known[id]; !ok {
			b.log.Warn(ctx, "configured DNF status code missing from status table",
				logger.Int("statusId", id))
		}
	}
}

func positionsGained(e *model.RaceEntry) float64 {
	if e.GridPosition == nil {
		return 0
	}
	return float64(*e.GridPosition - e.FinishPositionOrder)
}

func (b *Builder) statusWeight(e *model.RaceEntry, statusKnown bool) float64 {
	if !statusKnown || e.StatusID == nil {
		return 1
	}
	if _, dnf := b.dnfIDs[*e.StatusID]; dnf {
		return 0
	}
	return 1
}

// WetBonus maps precipitation to the fixed scoring bonus. Nil
// precipitation counts as dry.
func WetBonus(precipitation *float64) float64 {
	if precipitation == nil {
		return 0
	}
	p := *precipitation
	switch {
	case p < wetLight:
		return 0
	case p < wetModerate:
		return 10
	case p < wetHeavy:
		return 30
	case p < wetExtreme:
		return 80
	default:
		return 100
	}
}
