// Package config defines the global configuration for sipwatch services.
// Configuration is loaded once at process initialization and is immutable
// thereafter, following 12-Factor principles: environment variables (plus
// an optional .env file for local runs) configure the process, and a YAML
// model file configures the scoring engine.
//
// Any missing required value or invalid format fails startup immediately.
package config

import (
	"time"

	"sipwatch/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret
// type used throughout configuration.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once
// during process initialization and never modified. Sub-components receive
// only the specific subsets they require.
type Config struct {
	// System metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"sipwatch"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	AWS      AWSConfig
	Weather  WeatherConfig
	Alerting AlertingConfig
	Model    ModelConfig
	Archive  ArchiveConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"20s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
// URL is optional: the API and monitor run without persistence when it is
// empty.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"omitempty,url"`

	MaxConns        int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout  time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
}

// AWSConfig holds AWS resource identifiers. All are optional: sinks and
// metrics degrade to log-only operation when unset.
type AWSConfig struct {
	Region     string `envconfig:"AWS_REGION" default:"ap-northeast-1"`
	AlertQueue string `envconfig:"SQS_ALERT_QUEUE" validate:"omitempty,url"`

	// Emit CloudWatch metrics for dispatches and suppressions.
	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"false"`

	// LocalStack support (empty in prod).
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// WeatherConfig holds the observation feed settings for the monitor.
type WeatherConfig struct {
	Location          string        `envconfig:"WEATHER_LOCATION" default:"Tokyo"`
	LocationType      string        `envconfig:"WEATHER_LOCATION_TYPE" default:"station"`
	HasClimateControl bool          `envconfig:"WEATHER_CLIMATE_CONTROL" default:"false"`
	PollInterval      time.Duration `envconfig:"WEATHER_POLL_INTERVAL" default:"10m"`
	RequestTimeout    time.Duration `envconfig:"WEATHER_REQUEST_TIMEOUT" default:"10s"`
}

// AlertingConfig holds alert delivery settings.
type AlertingConfig struct {
	Cooldown time.Duration `envconfig:"ALERT_COOLDOWN" default:"300s"`

	// Webhook delivery; empty URL disables the webhook sink.
	WebhookURL    string        `envconfig:"ALERT_WEBHOOK_URL" validate:"omitempty,url"`
	WebhookSecret SecretString  `envconfig:"ALERT_WEBHOOK_SECRET"`
	WebhookUA     string        `envconfig:"ALERT_WEBHOOK_USER_AGENT" default:"sipwatch-alerts/1.0"`
	WebhookWait   time.Duration `envconfig:"ALERT_WEBHOOK_TIMEOUT" default:"10s"`
}

// ModelConfig points at the scoring model file. An empty path uses the
// built-in defaults.
type ModelConfig struct {
	Path string `envconfig:"SCORING_MODEL_PATH"`
}

// ArchiveConfig holds alert history snapshot settings.
type ArchiveConfig struct {
	Dir string `envconfig:"ARCHIVE_DIR" default:""`
}
