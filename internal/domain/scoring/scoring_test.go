package scoring_test

import (
	"testing"

	"github.com/abhishekneerr/apexrank/internal/domain/model"
	"github.com/abhishekneerr/apexrank/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func floatPtr(v float64) *float64 { return &v }

func entryWith(pos int, gained, wet float64) model.ScoredEntry {
	return model.ScoredEntry{
		Entry:           model.RaceEntry{FinishPositionOrder: pos},
		PositionsGained: gained,
		StatusWeight:    1,
		WetBonus:        wet,
	}
}

func TestScoreFormula(t *testing.T) {
	Convey("Given the default coefficient table", t, func() {
		engine := scoring.NewEngine()

		Convey("When every factor is present", func() {
			se := model.ScoredEntry{
				Entry: model.RaceEntry{
					FastestLapSeconds: floatPtr(92.0),
					FastestLapSpeed:   floatPtr(210.0),
				},
				Gap: model.GapResult{
					GapToWinnerSeconds: floatPtr(3.5),
					GapToNextSeconds:   floatPtr(1.2),
				},
				PositionsGained: 2,
				StatusWeight:    1,
				WetBonus:        30,
			}

			Convey("Then the score is the default weighted sum", func() {
				// 4*2 + 1.2*1.2 - 2*3.5 - 1*92 + 1*210 + 1*1 + 1*30
				So(engine.Score(&se), ShouldAlmostEqual, 151.44, 1e-9)
			})
		})

		Convey("When every nullable factor is missing", func() {
			se := entryWith(1, 3, 0)

			Convey("Then nils coerce to zero instead of failing", func() {
				So(engine.Score(&se), ShouldAlmostEqual, 13.0, 1e-9) // 4*3 + statusWeight
			})
		})

		Convey("And scoring is deterministic", func() {
			se := entryWith(2, 1, 10)
			So(engine.Score(&se), ShouldEqual, engine.Score(&se))
		})
	})

	Convey("Given overridden weights", t, func() {
		engine := scoring.NewEngine(scoring.WithWeights(scoring.Weights{PositionsGained: 10}))
		se := entryWith(1, 2, 50)

		Convey("Then only the configured coefficients apply", func() {
			So(engine.Score(&se), ShouldEqual, 20)
		})
	})
}

func TestRankTopN(t *testing.T) {
	Convey("Given a pool of scored entries", t, func() {
		engine := scoring.NewEngine()
		pool := []model.ScoredEntry{
			entryWith(3, 1, 0),
			entryWith(1, 5, 0),
			entryWith(2, 3, 0),
		}

		Convey("When requesting the top 2", func() {
			top := engine.RankTopN(pool, 2)

			Convey("Then the best scores come first", func() {
				So(len(top), ShouldEqual, 2)
				So(top[0].PositionsGained, ShouldEqual, 5)
				So(top[1].PositionsGained, ShouldEqual, 3)
			})

			Convey("And the input order is untouched", func() {
				So(pool[0].PositionsGained, ShouldEqual, 1)
				So(pool[0].Score, ShouldEqual, 0)
			})
		})

		Convey("When requesting more than exist", func() {
			top := engine.RankTopN(pool[:1], 3)

			Convey("Then all available rows return without padding", func() {
				So(len(top), ShouldEqual, 1)
			})
		})

		Convey("When requesting from an empty pool", func() {
			So(engine.RankTopN(nil, 3), ShouldBeEmpty)
		})

		Convey("When entries tie on score", func() {
			tied := []model.ScoredEntry{
				{Entry: model.RaceEntry{RaceID: 1}, StatusWeight: 1},
				{Entry: model.RaceEntry{RaceID: 2}, StatusWeight: 1},
				{Entry: model.RaceEntry{RaceID: 3}, StatusWeight: 1},
			}
			top := engine.RankTopN(tied, 3)

			Convey("Then ties keep the original table order", func() {
				So(top[0].Entry.RaceID, ShouldEqual, 1)
				So(top[1].Entry.RaceID, ShouldEqual, 2)
				So(top[2].Entry.RaceID, ShouldEqual, 3)
			})

			Convey("And ranking twice yields the same order", func() {
				again := engine.RankTopN(tied, 3)
				for i := range top {
					So(again[i].Entry.RaceID, ShouldEqual, top[i].Entry.RaceID)
				}
			})
		})
	})
}

func TestRankByFinish(t *testing.T) {
	Convey("Given the display-only ranking mode", t, func() {
		a := entryWith(2, 4, 0)
		a.Gap.GapToWinnerSeconds = floatPtr(5)
		b := entryWith(1, 0, 0)
		b.Gap.GapToWinnerSeconds = floatPtr(0)
		c := entryWith(2, 4, 0)
		c.Gap.GapToWinnerSeconds = floatPtr(2)

		ranked := scoring.RankByFinish([]model.ScoredEntry{a, b, c})

		Convey("Then finish position leads the chain", func() {
			So(ranked[0].Entry.FinishPositionOrder, ShouldEqual, 1)
		})

		Convey("And gap to winner breaks position ties", func() {
			So(*ranked[1].Gap.GapToWinnerSeconds, ShouldEqual, 2)
			So(*ranked[2].Gap.GapToWinnerSeconds, ShouldEqual, 5)
		})

		Convey("And deeper ties fall through to positions gained and lap speed", func() {
			d := entryWith(2, 4, 0)
			d.Gap.GapToWinnerSeconds = floatPtr(2)
			d.Entry.FastestLapSpeed = floatPtr(220)
			e := entryWith(2, 4, 0)
			e.Gap.GapToWinnerSeconds = floatPtr(2)
			e.Entry.FastestLapSpeed = floatPtr(210)

			out := scoring.RankByFinish([]model.ScoredEntry{e, d})
			So(*out[0].Entry.FastestLapSpeed, ShouldEqual, 220)
		})
	})
}
