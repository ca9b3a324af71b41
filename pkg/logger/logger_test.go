package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abhishekneerr/apexrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerLifecycle(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			So(func() {
				l.Info(context.Background(), "hello", logger.String("k", "v"))
			}, ShouldNotPanic)
		})

		Convey("And Named returns a scoped logger", func() {
			l := logger.Named("gap")
			So(l, ShouldNotBeNil)
			So(func() {
				l.Debug(context.Background(), "dbg", logger.Int("n", 1))
				l.Warn(context.Background(), "warn", logger.Float64("x", 1.5))
				l.Error(context.Background(), "err", logger.Error(errors.New("boom")))
			}, ShouldNotPanic)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the level parser", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Known levels parse", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", "", "  INFO "} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("Unknown levels are rejected", func() {
			So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
