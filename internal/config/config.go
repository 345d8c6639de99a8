// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Keys are flat snake_case, matching the koanf tags below.
//   - Defaults live in New; Load layers a YAML file and the environment on top.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
)

// Identity store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DefaultThresholdMinutes applies when an upload omits the threshold.
	DefaultThresholdMinutes float64 `koanf:"default_threshold_minutes"`

	// DefaultFormat applies when an upload omits the output format.
	DefaultFormat string `koanf:"default_format"`

	// MaxUploadBytes caps the size of an uploaded attendance log.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// UploadRateLimit is the number of uploads allowed per client IP per minute; 0 disables it.
	UploadRateLimit int `koanf:"upload_rate_limit"`

	// ReportTitle is printed on paginated reports.
	ReportTitle string `koanf:"report_title"`

	// IdentityDriver selects the section/roll lookup backend.
	IdentityDriver string `koanf:"identity_driver"`

	// IdentityDSN is the sqlite path, postgres DSN or redis URL of the lookup backend.
	IdentityDSN string `koanf:"identity_dsn"`

	// IdentityRosterFile optionally seeds the backend from a name,section,rollno CSV.
	IdentityRosterFile string `koanf:"identity_roster_file"`

	// IdentityKeyPrefix namespaces redis keys.
	IdentityKeyPrefix string `koanf:"identity_key_prefix"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		DefaultThresholdMinutes: 50,
		DefaultFormat:           "csv",
		MaxUploadBytes:          32 << 20,
		UploadRateLimit:         60,
		ReportTitle:             "Meeting Attendance Report",
		IdentityDriver:          DriverMemory,
		IdentityKeyPrefix:       "attendance:identity",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultThresholdMinutes < 0:
		return fmt.Errorf("%w: default_threshold_minutes must not be negative", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.UploadRateLimit < 0:
		return fmt.Errorf("%w: upload_rate_limit must not be negative", ErrInvalidConfig)
	}

	switch c.IdentityDriver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres, DriverRedis:
		if strings.TrimSpace(c.IdentityDSN) == "" {
			return fmt.Errorf("%w: identity_dsn is required for driver %q", ErrInvalidConfig, c.IdentityDriver)
		}
	default:
		return fmt.Errorf("%w: unknown identity_driver %q", ErrInvalidConfig, c.IdentityDriver)
	}
	return nil
}
