package config

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var supportedDrivers = map[string]bool{
	"postgres": true,
	"sqlite":   true,
}

// ValidateConfig checks the configuration and reports every problem at once.
func ValidateConfig(cfg *Config) error {
	var err error

	if !isPort(cfg.ServerPort) {
		err = multierr.Append(err, ValidationError{Field: "SERVER_PORT", Message: "must be a port number"})
	}
	if !supportedDrivers[cfg.Database.Driver] {
		err = multierr.Append(err, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.Database.Driver)})
	}
	if cfg.Database.ConnectionString == "" {
		err = multierr.Append(err, ValidationError{Field: KeyConnectionString, Message: "is required"})
	}
	if cfg.Database.MaxOpenConns < 0 || cfg.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, ValidationError{Field: "DB_MAX_OPEN_CONNS", Message: "pool sizes cannot be negative"})
	}

	if cfg.RateLimit.Writes < 0 {
		err = multierr.Append(err, ValidationError{Field: "RATE_LIMIT_WRITES", Message: "cannot be negative"})
	}
	if cfg.RateLimit.Writes > 0 && cfg.RateLimit.Window <= 0 {
		err = multierr.Append(err, ValidationError{Field: "RATE_LIMIT_WINDOW", Message: "must be positive when rate limiting is enabled"})
	}

	if cfg.RabbitMQ.Enabled() {
		if !isPort(cfg.RabbitMQ.Port) {
			err = multierr.Append(err, ValidationError{Field: KeyRabbitPort, Message: "must be a port number"})
		}
		if cfg.RabbitMQ.Username == "" {
			err = multierr.Append(err, ValidationError{Field: KeyRabbitUsername, Message: "is required when a broker host is set"})
		}
	}

	// Production must never run against the default guest account.
	if cfg.Environment == Production && cfg.RabbitMQ.Enabled() && cfg.RabbitMQ.Password == "guest" {
		err = multierr.Append(err, ValidationError{Field: KeyRabbitPassword, Message: "default credentials are not allowed in production"})
	}

	return err
}

func isPort(value string) bool {
	port, err := strconv.Atoi(value)
	return err == nil && port > 0 && port < 65536
}
