package logger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gympulse/engage/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerLifecycle(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		err := logger.Init()
		So(err, ShouldBeNil)

		Convey("Then Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			So(func() {
				l.Info(context.Background(), "hello",
					logger.String("clientID", "c1"),
					logger.Int("count", 3),
					logger.Float64("score", 71.5),
					logger.Time("at", time.Now()),
					logger.Duration("took", time.Millisecond),
					logger.Error(errors.New("boom")),
				)
			}, ShouldNotPanic)
		})

		Convey("Then Named returns a scoped logger", func() {
			l := logger.Named("batch")
			So(l, ShouldNotBeNil)
			So(func() { l.Debug(context.Background(), "scoped") }, ShouldNotPanic)
		})

		Convey("Then Sync never fails", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the level parser", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When given valid levels", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", "", " INFO "} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("When given an unknown level", func() {
			So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
