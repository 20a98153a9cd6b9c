package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/wardwatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9180")
				convey.So(cfg.StorageDriver, convey.ShouldEqual, "memory")
				convey.So(cfg.PermitWindowDays, convey.ShouldEqual, 60)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("WARDWATCH_ADDR", ":8080")
			_ = os.Setenv("WARDWATCH_STORAGE_DRIVER", "sqlite")
			_ = os.Setenv("WARDWATCH_STORAGE_PATH", "/var/lib/wardwatch/data.db")
			_ = os.Setenv("WARDWATCH_PERMIT_WINDOW_DAYS", "45")
			_ = os.Setenv("WARDWATCH_TOP_N", "3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StorageDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.StoragePath, convey.ShouldEqual, "/var/lib/wardwatch/data.db")
				convey.So(cfg.PermitWindowDays, convey.ShouldEqual, 45)
				convey.So(cfg.TopN, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(`
# site overrides
addr: ":9090"
log_format: json
timezone: UTC
contract_window_days: 120
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("WARDWATCH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values merge over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
				convey.So(cfg.ContractWindowDays, convey.ShouldEqual, 120)
				convey.So(cfg.EquipmentWindowDays, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
top_n: 8
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("WARDWATCH_CONFIG", tmpFile)
			_ = os.Setenv("WARDWATCH_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.TopN, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("WARDWATCH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("WARDWATCH_CONFIG", "/non/existent/wardwatch.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the storage driver is unknown", func() {
			_ = os.Setenv("WARDWATCH_STORAGE_DRIVER", "localstorage")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "storage_driver")
			})
		})

		convey.Convey("When addr is empty", func() {
			_ = os.Setenv("WARDWATCH_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When the timezone is unknown", func() {
			_ = os.Setenv("WARDWATCH_TIMEZONE", "Mars/Olympus")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a numeric variable is not a number", func() {
			_ = os.Setenv("WARDWATCH_TOP_N", "many")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"WARDWATCH_CONFIG",
		"WARDWATCH_ADDR",
		"WARDWATCH_STORAGE_DRIVER",
		"WARDWATCH_STORAGE_PATH",
		"WARDWATCH_PERMIT_WINDOW_DAYS",
		"WARDWATCH_TOP_N",
		"WARDWATCH_TIMEZONE",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "wardwatch-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
