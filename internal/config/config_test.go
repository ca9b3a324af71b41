package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhishekneerr/apexrank/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given no file or environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the stock defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.MinYear, ShouldEqual, 2018)
			So(cfg.CutoffYear, ShouldEqual, 2018)
			So(cfg.TopN, ShouldEqual, 10)
			So(cfg.WinsOnly, ShouldBeFalse)
			So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
			So(cfg.Scoring.PositionsGained, ShouldEqual, 4.0)
			So(cfg.Scoring.GapToWinner, ShouldEqual, -2.0)
			So(cfg.Segment.SlowKph, ShouldEqual, 120)
			So(cfg.Segment.HairpinKph, ShouldEqual, 80)
			So(cfg.DNFStatusIDs, ShouldNotBeEmpty)
		})
	})
}

func TestEnvOverrides(t *testing.T) {
	Convey("Given flat environment overrides", t, func() {
		t.Setenv("APEXRANK_TOP_N", "5")
		t.Setenv("APEXRANK_WINS_ONLY", "true")
		t.Setenv("APEXRANK_DATASET_DIR", "/srv/f1")

		cfg, err := config.Load(context.Background())

		Convey("Then env beats the defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.TopN, ShouldEqual, 5)
			So(cfg.WinsOnly, ShouldBeTrue)
			So(cfg.DatasetDir, ShouldEqual, "/srv/f1")
			So(cfg.MinYear, ShouldEqual, 2018)
		})
	})
}

func TestFileLayer(t *testing.T) {
	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "apexrank.yaml")
		content := "top_n: 3\nmin_year: 2019\nscoring:\n  positions_gained: 5.5\nsegment:\n  slow_kph: 110\n"
		So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)
		t.Setenv("APEXRANK_CONFIG", path)

		Convey("When only the file overrides are present", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then file beats defaults and nesting reaches the tables", func() {
				So(err, ShouldBeNil)
				So(cfg.TopN, ShouldEqual, 3)
				So(cfg.MinYear, ShouldEqual, 2019)
				So(cfg.Scoring.PositionsGained, ShouldEqual, 5.5)
				So(cfg.Scoring.GapToNext, ShouldEqual, 1.2)
				So(cfg.Segment.SlowKph, ShouldEqual, 110)
				So(cfg.Segment.MediumKph, ShouldEqual, 170)
			})
		})

		Convey("When env contradicts the file", func() {
			t.Setenv("APEXRANK_TOP_N", "7")
			cfg, err := config.Load(context.Background())

			Convey("Then env wins", func() {
				So(err, ShouldBeNil)
				So(cfg.TopN, ShouldEqual, 7)
				So(cfg.MinYear, ShouldEqual, 2019)
			})
		})
	})

	Convey("Given a config file path that does not exist", t, func() {
		t.Setenv("APEXRANK_CONFIG", "/nonexistent/apexrank.yaml")

		_, err := config.Load(context.Background())
		So(err, ShouldWrap, config.ErrLoadConfig)
	})
}

func TestValidation(t *testing.T) {
	Convey("Given values the pipeline cannot run with", t, func() {
		cases := []struct {
			key string
			val string
		}{
			{"APEXRANK_TOP_N", "0"},
			{"APEXRANK_WORKER_COUNT", "-1"},
			{"APEXRANK_MIN_YEAR", "0"},
			{"APEXRANK_CUTOFF_YEAR", "-5"},
		}
		for _, tc := range cases {
			Convey("When "+tc.key+" is "+tc.val, func() {
				t.Setenv(tc.key, tc.val)
				_, err := config.Load(context.Background())
				So(err, ShouldWrap, config.ErrInvalidConfig)
			})
		}

		Convey("When the dataset directory is blanked", func() {
			t.Setenv("APEXRANK_DATASET_DIR", "")
			_, err := config.Load(context.Background())
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})
	})
}
