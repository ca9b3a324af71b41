package dataset_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhishekneerr/apexrank/internal/adapters/dataset"
	. "github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeRequiredTables(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, "drivers.csv",
		"driverId,forename,surname\n"+
			"1,Lewis,Hamilton\n"+
			"830,Max,Verstappen\n")
	writeFile(t, dir, "races.csv",
		"raceId,year,round,name,date\n"+
			"1051,2021,1,Bahrain Grand Prix,2021-03-28\n")
	writeFile(t, dir, "results.csv",
		"raceId,driverId,grid,positionOrder,milliseconds,time,fastestLapTime,fastestLapSpeed,fastestLap,statusId\n"+
			"1051,1,2,1,5523897,1:32:03.897,1:34.015,207.235,56,1\n"+
			`1051,830,1,2,5524642,+0.745,1:33.228,209.132,44,1`+"\n")
}

func TestLoadRequiredTables(t *testing.T) {
	Convey("Given a directory with the three required tables", t, func() {
		dir := t.TempDir()
		writeRequiredTables(t, dir)

		loader := dataset.NewLoader()
		in, err := loader.Load(context.Background(), dir)

		Convey("Then every row lands typed", func() {
			So(err, ShouldBeNil)
			So(in.Drivers, ShouldHaveLength, 2)
			So(in.Drivers[0].FullName(), ShouldEqual, "Lewis Hamilton")
			So(in.Races, ShouldHaveLength, 1)
			So(in.Races[0].Year, ShouldEqual, 2021)
			So(in.Results, ShouldHaveLength, 2)
			So(*in.Results[0].Grid, ShouldEqual, 2)
			So(in.Results[1].Time, ShouldEqual, "+0.745")
			So(*in.Results[1].FastestLapSpeed, ShouldAlmostEqual, 209.132)
		})

		Convey("Then absent optional tables stay nil", func() {
			So(err, ShouldBeNil)
			So(in.Status, ShouldBeNil)
			So(in.Weather, ShouldBeNil)
		})
	})
}

func TestLoadOptionalTables(t *testing.T) {
	Convey("Given status and weather files alongside the required tables", t, func() {
		dir := t.TempDir()
		writeRequiredTables(t, dir)
		writeFile(t, dir, "status.csv",
			"statusId,status\n1,Finished\n5,Engine\n")
		writeFile(t, dir, "weather.csv",
			"GP,date,precipitation\n"+
				"Bahrain Grand Prix,2021-03-28,0\n"+
				`Belgian Grand Prix,2021-08-29,\N`+"\n")

		loader := dataset.NewLoader()
		in, err := loader.Load(context.Background(), dir)

		Convey("Then they load with null sentinels as nil", func() {
			So(err, ShouldBeNil)
			So(in.Status, ShouldHaveLength, 2)
			So(in.Status[1].Status, ShouldEqual, "Engine")
			So(in.Weather, ShouldHaveLength, 2)
			So(*in.Weather[0].Precipitation, ShouldEqual, 0)
			So(in.Weather[1].Precipitation, ShouldBeNil)
		})
	})
}

func TestLoadNullSentinels(t *testing.T) {
	Convey("Given results rows with the dataset's null markers", t, func() {
		dir := t.TempDir()
		writeFile(t, dir, "drivers.csv", "driverId,forename,surname\n1,Lewis,Hamilton\n")
		writeFile(t, dir, "races.csv", "raceId,year,round,name,date\n1051,2021,1,Bahrain Grand Prix,2021-03-28\n")
		writeFile(t, dir, "results.csv",
			"raceId,driverId,grid,positionOrder,milliseconds,time,fastestLapTime,fastestLapSpeed,fastestLap,statusId\n"+
				`1051,1,\N,1,\N,\N,None,,\N,\N`+"\n")

		loader := dataset.NewLoader()
		in, err := loader.Load(context.Background(), dir)

		Convey("Then optional fields are nil and texts empty", func() {
			So(err, ShouldBeNil)
			res := in.Results[0]
			So(res.Grid, ShouldBeNil)
			So(res.Milliseconds, ShouldBeNil)
			So(res.Time, ShouldBeEmpty)
			So(res.FastestLapTime, ShouldBeEmpty)
			So(res.FastestLapSpeed, ShouldBeNil)
			So(res.FastestLap, ShouldBeNil)
			So(res.StatusID, ShouldBeNil)
		})
	})
}

func TestLoadFailures(t *testing.T) {
	Convey("Given a directory without the results table", t, func() {
		dir := t.TempDir()
		writeFile(t, dir, "drivers.csv", "driverId,forename,surname\n1,Lewis,Hamilton\n")
		writeFile(t, dir, "races.csv", "raceId,year,round,name,date\n1051,2021,1,Bahrain Grand Prix,2021-03-28\n")

		_, err := dataset.NewLoader().Load(context.Background(), dir)

		Convey("Then loading fails with the missing-table sentinel", func() {
			So(err, ShouldWrap, dataset.ErrMissingTable)
		})
	})

	Convey("Given a races table without the year column", t, func() {
		dir := t.TempDir()
		writeRequiredTables(t, dir)
		writeFile(t, dir, "races.csv", "raceId,round,name,date\n1051,1,Bahrain Grand Prix,2021-03-28\n")

		_, err := dataset.NewLoader().Load(context.Background(), dir)

		Convey("Then loading fails with the missing-column sentinel", func() {
			So(err, ShouldWrap, dataset.ErrMissingColumn)
		})
	})

	Convey("Given a results row with a non-numeric race id", t, func() {
		dir := t.TempDir()
		writeRequiredTables(t, dir)
		writeFile(t, dir, "results.csv",
			"raceId,driverId,grid,positionOrder,milliseconds,time,fastestLapTime,fastestLapSpeed,fastestLap,statusId\n"+
				"oops,1,2,1,5523897,1:32:03.897,1:34.015,207.235,56,1\n")

		_, err := dataset.NewLoader().Load(context.Background(), dir)

		Convey("Then loading fails with the bad-row sentinel", func() {
			So(err, ShouldWrap, dataset.ErrBadRow)
		})
	})
}
