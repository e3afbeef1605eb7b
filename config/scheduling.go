package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// SchedulingConfig holds the rule parameters and operational tunables read
// from the TOML file. Pointer fields distinguish "absent" from "zero": an
// absent rule parameter omits the rule entirely.
type SchedulingConfig struct {
	// Timezone names the IANA zone used to validate submitted period dates.
	Timezone string `toml:"timezone"`

	MinDayOffPerWeek      *int `toml:"min_day_off_per_week"`
	MaxDayOffPerWeek      *int `toml:"max_day_off_per_week"`
	NoMorningAfterEvening bool `toml:"no_morning_after_evening"`
	MaxDailyShiftDiff     *int `toml:"max_daily_shift_diff"`

	CircuitBreaker CircuitBreakerConfig `toml:"circuit_breaker"`
	HealthCheck    HealthCheckConfig    `toml:"health_check"`
}

// CircuitBreakerConfig tunes the data-service circuit breaker.
type CircuitBreakerConfig struct {
	FailureThreshold int `toml:"failure_threshold"`
	CooldownSecs     int `toml:"cooldown_secs"`
}

// HealthCheckConfig tunes the data-service health probe loop.
type HealthCheckConfig struct {
	IntervalSecs int `toml:"interval_secs"`
	TimeoutSecs  int `toml:"timeout_secs"`
}

// DefaultSchedulingConfig returns the configuration used when the TOML file
// is absent.
func DefaultSchedulingConfig() SchedulingConfig {
	minDayOff := 1
	maxDayOff := 2
	maxDiff := 1
	return SchedulingConfig{
		Timezone:              "UTC",
		MinDayOffPerWeek:      &minDayOff,
		MaxDayOffPerWeek:      &maxDayOff,
		NoMorningAfterEvening: true,
		MaxDailyShiftDiff:     &maxDiff,
		CircuitBreaker:        CircuitBreakerConfig{FailureThreshold: 5, CooldownSecs: 30},
		HealthCheck:           HealthCheckConfig{IntervalSecs: 10, TimeoutSecs: 5},
	}
}

// LoadSchedulingConfig reads the TOML file at path. A missing file yields the
// defaults; a malformed or invalid file is an error.
func LoadSchedulingConfig(path string, logger *slog.Logger) (SchedulingConfig, error) {
	cfg := DefaultSchedulingConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("scheduling config file not found, using defaults", "path", path)
			return cfg, nil
		}
		return SchedulingConfig{}, fmt.Errorf("read scheduling config %s: %w", path, err)
	}

	if unmarshalErr := toml.Unmarshal(raw, &cfg); unmarshalErr != nil {
		return SchedulingConfig{}, fmt.Errorf("parse scheduling config %s: %w", path, unmarshalErr)
	}
	if validateErr := cfg.Validate(); validateErr != nil {
		return SchedulingConfig{}, fmt.Errorf("invalid scheduling config %s: %w", path, validateErr)
	}
	return cfg, nil
}

// Validate checks cross-field consistency of the rule parameters.
func (c *SchedulingConfig) Validate() error {
	if c.MinDayOffPerWeek != nil && *c.MinDayOffPerWeek < 0 {
		return fmt.Errorf("min_day_off_per_week must not be negative, got %d", *c.MinDayOffPerWeek)
	}
	if c.MaxDayOffPerWeek != nil && *c.MaxDayOffPerWeek >= 7 {
		return fmt.Errorf("max_day_off_per_week must be below 7, got %d", *c.MaxDayOffPerWeek)
	}
	if c.MinDayOffPerWeek != nil && c.MaxDayOffPerWeek != nil && *c.MinDayOffPerWeek > *c.MaxDayOffPerWeek {
		return fmt.Errorf("min_day_off_per_week %d exceeds max_day_off_per_week %d",
			*c.MinDayOffPerWeek, *c.MaxDayOffPerWeek)
	}
	if c.MaxDailyShiftDiff != nil && *c.MaxDailyShiftDiff < 0 {
		return fmt.Errorf("max_daily_shift_diff must not be negative, got %d", *c.MaxDailyShiftDiff)
	}
	if c.CircuitBreaker.FailureThreshold <= 0 {
		return fmt.Errorf("circuit_breaker.failure_threshold must be positive, got %d", c.CircuitBreaker.FailureThreshold)
	}
	if c.CircuitBreaker.CooldownSecs <= 0 {
		return fmt.Errorf("circuit_breaker.cooldown_secs must be positive, got %d", c.CircuitBreaker.CooldownSecs)
	}
	if c.HealthCheck.IntervalSecs <= 0 || c.HealthCheck.TimeoutSecs <= 0 {
		return fmt.Errorf("health_check interval and timeout must be positive")
	}
	return nil
}

// Location resolves the configured timezone. An unknown zone logs a warning
// and falls back to UTC rather than failing startup.
func (c *SchedulingConfig) Location(logger *slog.Logger) *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		logger.Warn("invalid timezone in scheduling config, falling back to UTC",
			"timezone", c.Timezone, "err", err)
		return time.UTC
	}
	return loc
}

// CooldownDuration returns the breaker cooldown as a duration.
func (c CircuitBreakerConfig) CooldownDuration() time.Duration {
	return time.Duration(c.CooldownSecs) * time.Second
}

// Interval returns the probe interval as a duration.
func (c HealthCheckConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSecs) * time.Second
}

// Timeout returns the per-probe timeout as a duration.
func (c HealthCheckConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}
