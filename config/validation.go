package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs []error

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{"DB_HOST", "is required for postgres"})
		}
		if cfg.DBUser == "" {
			errs = append(errs, ValidationError{"DB_USER", "is required for postgres"})
		}
		if cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required for postgres"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.Environment != Test && cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
	}
	if cfg.JWTTTL <= 0 {
		errs = append(errs, ValidationError{"JWT_TTL", "must be positive"})
	}
	if cfg.RateLimitPerMinute < 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_PER_MINUTE", "must not be negative"})
	}
	if cfg.Environment == Production && len(cfg.CORSOrigins) == 0 {
		errs = append(errs, ValidationError{"CORS_ORIGINS", "is required in production"})
	}

	return errors.Join(errs...)
}
