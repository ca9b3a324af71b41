package gap_test

import (
	"testing"

	"github.com/abhishekneerr/apexrank/internal/domain/gap"
	"github.com/abhishekneerr/apexrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func intPtr(v int) *int { return &v }

func entry(pos int, ms *int) model.RaceEntry {
	return model.RaceEntry{RaceID: 1, FinishPositionOrder: pos, ElapsedMilliseconds: ms}
}

func TestComputeGaps(t *testing.T) {
	Convey("Given a three-car race with known finish times", t, func() {
		entries := []model.RaceEntry{
			entry(3, intPtr(5403500)),
			entry(1, intPtr(5400000)),
			entry(2, intPtr(5401200)),
		}

		res := gap.Compute(entries)

		Convey("Then entries come back in classification order", func() {
			So(res.Entries[0].FinishPositionOrder, ShouldEqual, 1)
			So(res.Entries[1].FinishPositionOrder, ShouldEqual, 2)
			So(res.Entries[2].FinishPositionOrder, ShouldEqual, 3)
		})

		Convey("And gaps to the winner are [0, 1.2, 3.5]", func() {
			So(*res.Gaps[0].GapToWinnerSeconds, ShouldAlmostEqual, 0.0, 1e-9)
			So(*res.Gaps[1].GapToWinnerSeconds, ShouldAlmostEqual, 1.2, 1e-9)
			So(*res.Gaps[2].GapToWinnerSeconds, ShouldAlmostEqual, 3.5, 1e-9)
		})

		Convey("And gaps to next are [1.2, 2.3, nil]", func() {
			So(*res.Gaps[0].GapToNextSeconds, ShouldAlmostEqual, 1.2, 1e-9)
			So(*res.Gaps[1].GapToNextSeconds, ShouldAlmostEqual, 2.3, 1e-9)
			So(res.Gaps[2].GapToNextSeconds, ShouldBeNil)
		})

		Convey("And gap to winner is non-decreasing down the order", func() {
			prev := *res.Gaps[0].GapToWinnerSeconds
			for _, g := range res.Gaps[1:] {
				So(*g.GapToWinnerSeconds, ShouldBeGreaterThanOrEqualTo, prev)
				prev = *g.GapToWinnerSeconds
			}
		})
	})

	Convey("Given a race with a single classified entry", t, func() {
		res := gap.Compute([]model.RaceEntry{entry(1, intPtr(4999000))})

		Convey("Then the winner gap is zero and next is nil", func() {
			So(*res.Gaps[0].GapToWinnerSeconds, ShouldEqual, 0)
			So(res.Gaps[0].GapToNextSeconds, ShouldBeNil)
		})
	})

	Convey("Given a published textual gap", t, func() {
		second := entry(2, nil)
		second.GapText = "+12.345"
		res := gap.Compute([]model.RaceEntry{entry(1, intPtr(5400000)), second})

		Convey("Then the textual gap takes precedence", func() {
			So(*res.Gaps[1].GapToWinnerSeconds, ShouldAlmostEqual, 12.345, 1e-9)
		})

		Convey("And the winner did not parse its own elapsed time as a gap", func() {
			So(*res.Gaps[0].GapToWinnerSeconds, ShouldEqual, 0)
		})
	})

	Convey("Given a missing winner reference time", t, func() {
		res := gap.Compute([]model.RaceEntry{
			entry(1, nil),
			entry(2, intPtr(5401200)),
		})

		Convey("Then the winner still gets zero", func() {
			So(*res.Gaps[0].GapToWinnerSeconds, ShouldEqual, 0)
		})

		Convey("And the rest propagate nil instead of failing", func() {
			So(res.Gaps[1].GapToWinnerSeconds, ShouldBeNil)
			So(res.Gaps[0].GapToNextSeconds, ShouldBeNil)
		})
	})

	Convey("Given a lapped car with a faster raw clock than the winner", t, func() {
		res := gap.Compute([]model.RaceEntry{
			entry(1, intPtr(5400000)),
			entry(2, intPtr(5399000)),
		})

		Convey("Then the gap clamps to zero instead of going negative", func() {
			So(*res.Gaps[1].GapToWinnerSeconds, ShouldEqual, 0)
		})
	})

	Convey("Given no entries", t, func() {
		res := gap.Compute(nil)
		So(res.Entries, ShouldBeEmpty)
		So(res.Gaps, ShouldBeEmpty)
	})
}
