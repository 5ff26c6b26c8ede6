package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gympulse/engage/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		os.Unsetenv("ENGAGE_CONFIG")
		for _, k := range []string{"ENGAGE_LOG_LEVEL", "ENGAGE_WORKER_COUNT", "ENGAGE_STORE_DRIVER", "ENGAGE_POSTGRES_DSN", "ENGAGE_LOOKBACK_DAYS"} {
			os.Unsetenv(k)
		}

		Convey("When loading with no file and no env", func() {
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.LookbackDays, ShouldEqual, 30)
			So(cfg.StoreDriver, ShouldEqual, config.DriverMemory)
			So(cfg.TopN, ShouldEqual, 10)
			So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
		})

		Convey("When env vars override defaults", func() {
			os.Setenv("ENGAGE_LOG_LEVEL", "debug")
			os.Setenv("ENGAGE_LOOKBACK_DAYS", "14")
			defer os.Unsetenv("ENGAGE_LOG_LEVEL")
			defer os.Unsetenv("ENGAGE_LOOKBACK_DAYS")

			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.LookbackDays, ShouldEqual, 14)
		})

		Convey("When a YAML file provides values and env overrides it", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "engage.yaml")
			So(os.WriteFile(path, []byte("log_level: warn\ntop_n: 5\n"), 0o600), ShouldBeNil)
			os.Setenv("ENGAGE_CONFIG", path)
			os.Setenv("ENGAGE_LOG_LEVEL", "error")
			defer os.Unsetenv("ENGAGE_CONFIG")
			defer os.Unsetenv("ENGAGE_LOG_LEVEL")

			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.LogLevel, ShouldEqual, "error") // env wins
			So(cfg.TopN, ShouldEqual, 5)           // file wins over default
		})

		Convey("When the config file does not exist", func() {
			os.Setenv("ENGAGE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			defer os.Unsetenv("ENGAGE_CONFIG")

			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})

		Convey("When the postgres driver is selected without a DSN", func() {
			os.Setenv("ENGAGE_STORE_DRIVER", "postgres")
			defer os.Unsetenv("ENGAGE_STORE_DRIVER")

			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When an unknown store driver is selected", func() {
			os.Setenv("ENGAGE_STORE_DRIVER", "dynamo")
			defer os.Unsetenv("ENGAGE_STORE_DRIVER")

			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
