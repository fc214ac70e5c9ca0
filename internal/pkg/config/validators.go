// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingRequiredConfig marks configuration a deployment cannot run without.
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Validator checks a loaded configuration for a deployment context.
type Validator interface {
	Validate(cfg *Config) error
}

// BasicValidator performs basic configuration validation
type BasicValidator struct{}

// Validate performs basic validation
func (v *BasicValidator) Validate(cfg *Config) error {
	if cfg.Database.MaxConnections < cfg.Database.MinConnections {
		return fmt.Errorf("database max_connections must be >= min_connections")
	}

	if cfg.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis pool_size must be positive")
	}

	if cfg.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("rate_limit_requests must be positive")
	}

	return cfg.Validate()
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	// Check for placeholder values
	if strings.Contains(cfg.Database.Password, "MISSING_") {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}

	// The selected backend must have credentials in production; an
	// unauthenticated write path is a misconfiguration, not a fallback.
	switch cfg.Sync.BackendKind {
	case "keyvalue":
		if cfg.KeyValue.AccessKey == "" {
			return fmt.Errorf("%w: keyvalue access key", ErrMissingRequiredConfig)
		}
	case "gitcontent":
		if cfg.GitContent.Token == "" {
			return fmt.Errorf("%w: gitcontent token", ErrMissingRequiredConfig)
		}
	case "pgdoc":
		if cfg.Database.Password == "" {
			return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
		}
		if cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("database SSL must be enabled in production")
		}
	}

	// Validate allowed origins format
	for _, origin := range cfg.Security.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard origin (*) not allowed in production")
		}
	}

	return nil
}
