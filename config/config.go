// Package config loads the application configuration: process-level settings
// from environment variables and the scheduling rule parameters from a TOML
// file referenced by SCHEDULING_CONFIG_PATH.
package config

import "fmt"

// AppConfig is the process-level configuration, loaded from environment
// variables with the github.com/caarlos0/env library.
type AppConfig struct {
	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `env:"DATABASE_URL,required"`

	// ServerPort is the HTTP listen port.
	ServerPort int `env:"SERVER_PORT" envDefault:"8081"`

	// DataServiceURL is the base URL of the staff data service.
	DataServiceURL string `env:"DATA_SERVICE_URL" envDefault:"http://localhost:8080"`

	// SchedulingConfigPath points at the TOML file with rule parameters.
	// A missing file is not an error; defaults apply.
	SchedulingConfigPath string `env:"SCHEDULING_CONFIG_PATH" envDefault:"scheduling.toml"`

	// LogFormat selects "json" or "plain" log output.
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// LogLevel is the minimum level emitted: debug, info, warn, or error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// RedisAddr enables the roster cache when set.
	RedisAddr string `env:"REDIS_ADDR"`

	// DBMaxOpenConns caps the Postgres pool size.
	DBMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" envDefault:"5"`
}

// Sanitize applies guardrails to values loaded from env.
func (c *AppConfig) Sanitize() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort)
	}
	if c.LogFormat != "json" && c.LogFormat != "plain" {
		c.LogFormat = "json"
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
	if c.DBMaxOpenConns <= 0 {
		c.DBMaxOpenConns = 5
	}
	return nil
}
