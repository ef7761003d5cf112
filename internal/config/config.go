// Package config provides YAML configuration loading and validation for the
// fingerprint enrollment and verification server.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure for the server.
type Config struct {
	// DSN is the PostgreSQL connection string. Either DSN or DevSQLitePath
	// must be set.
	DSN string `yaml:"dsn"`

	// DevSQLitePath, when non-empty, selects the sqlite-backed DevStore
	// instead of PostgreSQL. Mutually exclusive with DSN.
	DevSQLitePath string `yaml:"dev_sqlite_path"`

	// HTTPAddr is the listen address for the REST API. Defaults to
	// "0.0.0.0:8080" when omitted.
	HTTPAddr string `yaml:"http_addr"`

	// LogLevel sets the minimum log severity: "debug", "info", "warn", or
	// "error". Defaults to "info" when omitted.
	LogLevel string `yaml:"log_level"`

	// JWTPublicKeyPath is the path to the PEM-encoded RSA public key used to
	// verify JWT tokens on REST API requests. Empty disables auth (dev only).
	JWTPublicKeyPath string `yaml:"jwt_public_key_path"`

	// MatchThresholdDefault is the similarity threshold applied to
	// /verify and /identify requests that omit an explicit threshold.
	// Defaults to 0.5 when omitted (zero value).
	MatchThresholdDefault float64 `yaml:"match_threshold_default"`
}

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// LoadConfig reads the YAML file at path, unmarshals it into Config, applies
// defaults, and validates all required fields. It returns a typed error
// describing the validation failures encountered.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: cannot parse %q: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed for %q: %w", path, err)
	}

	return &cfg, nil
}

// applyDefaults fills in zero-value optional fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = "0.0.0.0:8080"
	}
	if cfg.MatchThresholdDefault == 0 {
		cfg.MatchThresholdDefault = 0.5
	}
}

// validate checks that all required fields are populated and that
// enumerated fields contain only valid values.
func validate(cfg *Config) error {
	var errs []error

	if cfg.DSN == "" && cfg.DevSQLitePath == "" {
		errs = append(errs, errors.New("either dsn or dev_sqlite_path is required"))
	}
	if cfg.DSN != "" && cfg.DevSQLitePath != "" {
		errs = append(errs, errors.New("dsn and dev_sqlite_path are mutually exclusive"))
	}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q must be one of: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.MatchThresholdDefault < 0 || cfg.MatchThresholdDefault > 1 {
		errs = append(errs, fmt.Errorf("match_threshold_default %v must be in [0, 1]", cfg.MatchThresholdDefault))
	}

	return errors.Join(errs...)
}
