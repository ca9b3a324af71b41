// Package gap computes per-race time gaps to the winner and to the
// next-classified finisher.
package gap

import (
	"sort"
	"strings"

	"github.com/abhishekneerr/apexrank/internal/domain/laptime"
	"github.com/abhishekneerr/apexrank/internal/domain/model"
)

const msPerSecond = 1000.0

// RaceGaps holds one race's entries in classification order with their
// computed gaps aligned index-for-index.
type RaceGaps struct {
	Entries []model.RaceEntry
	Gaps    []model.GapResult
}

// Compute derives gaps for all entries of one race. The input is not
// modified; entries are re-sorted by finish position order internally.
// Unknown references propagate as nil gaps rather than failing the race.
func Compute(entries []model.RaceEntry) RaceGaps {
	ordered := make([]model.RaceEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FinishPositionOrder < ordered[j].FinishPositionOrder
	})

	// Winner reference time: positionOrder == 1.
	var winnerMs *int
	for i := range ordered {
		if ordered[i].FinishPositionOrder == 1 {
			winnerMs = ordered[i].ElapsedMilliseconds
			break
		}
	}

	gaps := make([]model.GapResult, len(ordered))
	for i := range ordered {
		gaps[i].GapToWinnerSeconds = gapToWinner(&ordered[i], winnerMs)
	}

	for i := 0; i < len(ordered)-1; i++ {
		cur, next := gaps[i].GapToWinnerSeconds, gaps[i+1].GapToWinnerSeconds
		if cur == nil || next == nil {
			continue
		}
		diff := *next - *cur
		gaps[i].GapToNextSeconds = &diff
	}

	return RaceGaps{Entries: ordered, Gaps: gaps}
}

func gapToWinner(e *model.RaceEntry, winnerMs *int) *float64 {
	// A published "+gap" string wins over the millisecond subtraction.
	if strings.HasPrefix(strings.TrimSpace(e.GapText), "+") {
		if parsed := laptime.ParseSeconds(e.GapText); parsed != nil {
			return parsed
		}
	}

	if winnerMs != nil && e.ElapsedMilliseconds != nil {
		g := float64(*e.ElapsedMilliseconds-*winnerMs) / msPerSecond
		if g < 0 {
			g = 0
		}
		return &g
	}

	if e.FinishPositionOrder == 1 {
		zero := 0.0
		return &zero
	}

	return nil
}
