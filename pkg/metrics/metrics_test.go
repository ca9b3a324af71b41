package metrics_test

import (
	"testing"

	"github.com/abhishekneerr/apexrank/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerConstruction(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithRegistry(reg),
			metrics.WithNamespace("test"),
			metrics.WithSubsystem("sub"),
			metrics.WithHistogramBuckets([]float64{0.1, 1, 10}),
		)

		Convey("Then it registers without panicking", func() {
			So(m, ShouldNotBeNil)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given a disabled manager", t, func() {
		reg := prometheus.NewRegistry()
		_ = metrics.NewManager(metrics.WithRegistry(reg), metrics.WithEnabled(false))

		Convey("Then nothing is registered", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldEqual, 0)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global helpers", t, func() {
		Convey("Then recording does not panic", func() {
			So(func() {
				metrics.RecordRaceRanked()
				metrics.RecordEntriesScored(3)
				metrics.RecordParseFailure()
				metrics.RecordLapSegmented()
				metrics.RecordLapSkipped("no_data")
				metrics.RecordCacheHit()
				metrics.RecordCacheMiss()
				metrics.RecordPoolJob()
				metrics.RecordPoolJobError()
				metrics.UpdatePoolWorkers(4)
				metrics.RecordTelemetryFetchSeconds(0.05)
				metrics.RecordSegmentationSeconds(0.01)
				metrics.UpdateDatasetRows("results", 100)
				metrics.RecordExportRows("top_races", 3)
			}, ShouldNotPanic)
		})

		Convey("And the registry is exposable", func() {
			So(metrics.Registry(), ShouldNotBeNil)
		})
	})
}
