package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/attendance/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DefaultThresholdMinutes, convey.ShouldEqual, 50)
			convey.So(cfg.DefaultFormat, convey.ShouldEqual, "csv")
			convey.So(cfg.IdentityDriver, convey.ShouldEqual, config.DriverMemory)
			convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, 32<<20)
			convey.So(cfg.Validate(context.Background()), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid fields", t, func() {
		ctx := context.Background()

		cases := []struct {
			want   string
			mutate func(c *config.Config)
		}{
			{"addr must not be empty", func(c *config.Config) { c.Addr = " " }},
			{"default_threshold_minutes", func(c *config.Config) { c.DefaultThresholdMinutes = -1 }},
			{"max_upload_bytes", func(c *config.Config) { c.MaxUploadBytes = 0 }},
			{"upload_rate_limit", func(c *config.Config) { c.UploadRateLimit = -5 }},
			{"unknown identity_driver", func(c *config.Config) { c.IdentityDriver = "mysql" }},
			{`identity_dsn is required for driver "sqlite"`, func(c *config.Config) { c.IdentityDriver = config.DriverSQLite }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)
			err := cfg.Validate(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, tc.want)
		}
	})
}
