// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone to prevent drift bugs.
//  2. Load a .env file via godotenv (non-fatal if absent).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Validate the struct using go-playground/validator.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigErrorType classifies configuration failures for diagnostics.
type ConfigErrorType string

const (
	ErrTypeProcess    ConfigErrorType = "process"
	ErrTypeValidation ConfigErrorType = "validation"
	ErrTypeModelFile  ConfigErrorType = "model_file"
)

// ConfigError is a diagnostic error type returned by LoadConfig.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadConfig loads and validates the process configuration from the
// environment (and an optional .env file, which never overrides existing
// variables).
func LoadConfig() (*Config, error) {
	// Enforce UTC so cooldown math and DB timestamps never drift with the
	// host timezone.
	time.Local = time.UTC

	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrTypeProcess,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrTypeValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, nil
}
