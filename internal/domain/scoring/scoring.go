// Package scoring computes the weighted composite score per race entry
// and selects top-N rankings under a deterministic ordering.
package scoring

import (
	"sort"

	"github.com/abhishekneerr/apexrank/internal/domain/model"
	"github.com/abhishekneerr/apexrank/pkg/metrics"
)

// Weights is the scoring configuration table. Coefficients are signed:
// a negative coefficient penalizes its factor.
type Weights struct {
	PositionsGained float64 `koanf:"positions_gained"`
	GapToNext       float64 `koanf:"gap_to_next"`
	GapToWinner     float64 `koanf:"gap_to_winner"`
	FastestLapTime  float64 `koanf:"fastest_lap_time"`
	FastestLapSpeed float64 `koanf:"fastest_lap_speed"`
	StatusWeight    float64 `koanf:"status_weight"`
	WetBonus        float64 `koanf:"wet_bonus"`
}

// DefaultWeights returns the stock coefficient table.
func DefaultWeights() Weights {
	return Weights{
		PositionsGained: 4.0,
		GapToNext:       1.2,
		GapToWinner:     -2.0,
		FastestLapTime:  -1.0,
		FastestLapSpeed: 1.0,
		StatusWeight:    1.0,
		WetBonus:        1.0,
	}
}

// Engine scores and ranks race entries.
type Engine struct {
	weights Weights
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights overrides the coefficient table.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// NewEngine creates a scoring engine with default weights.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the weighted composite score for one entry. Nil
// inputs coerce to zero before weighting.
func (e *Engine) Score(se *model.ScoredEntry) float64 {
	w := e.weights
	return w.PositionsGained*se.PositionsGained +
		w.GapToNext*deref(se.Gap.GapToNextSeconds) +
		w.GapToWinner*deref(se.Gap.GapToWinnerSeconds) +
		w.FastestLapTime*deref(se.Entry.FastestLapSeconds) +
		w.FastestLapSpeed*deref(se.Entry.FastestLapSpeed) +
		w.StatusWeight*se.StatusWeight +
		w.WetBonus*se.WetBonus
}

// RankTopN scores every entry and returns the best n in score-descending
// order. Ties keep the original table order (stable sort). Fewer than n
// entries return all of them; the input slice is not modified.
func (e *Engine) RankTopN(entries []model.ScoredEntry, n int) []model.ScoredEntry {
	scored := make([]model.ScoredEntry, len(entries))
	copy(scored, entries)
	for i := range scored {
		scored[i].Score = e.Score(&scored[i])
	}
	metrics.RecordEntriesScored(len(scored))

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if n < 0 {
		n = 0
	}
	if n > len(scored) {
		n = len(scored)
	}
	return scored[:n]
}

// RankByFinish is the display-only ranking mode: a pure lexicographic
// tie-break chain with no scoring weights. Nil sort keys coerce to zero.
func RankByFinish(entries []model.ScoredEntry) []model.ScoredEntry {
	ranked := make([]model.ScoredEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.Entry.FinishPositionOrder != b.Entry.FinishPositionOrder {
			return a.Entry.FinishPositionOrder < b.Entry.FinishPositionOrder
		}
		if ga, gb := deref(a.Gap.GapToWinnerSeconds), deref(b.Gap.GapToWinnerSeconds); ga != gb {
			return ga < gb
		}
		if a.PositionsGained != b.PositionsGained {
			return a.PositionsGained > b.PositionsGained
		}
		return deref(a.Entry.FastestLapSpeed) > deref(b.Entry.FastestLapSpeed)
	})
	return ranked
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
