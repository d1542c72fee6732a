package config

import (
	"errors"
	"fmt"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.App.validate(),
		c.Server.validate(),
		c.Log.validate(),
		c.Database.validate(),
		c.Auth.validate(),
		c.Media.validate(),
		c.Telemetry.validate(),
		c.validateDeadlines(),
	)
}

// validateDeadlines keeps the request deadline above the worst case of the
// database gate, so an unreachable store is answered by the gate and not by
// the request timeout.
func (c *Config) validateDeadlines() error {
	budget := c.Database.ConnectBudget()
	if c.Server.RequestTimeout > 0 && c.Server.RequestTimeout <= budget {
		return fmt.Errorf("server.request_timeout (%s) must exceed the database connect budget (%s)",
			c.Server.RequestTimeout, budget)
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch a.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
		return nil
	default:
		return fmt.Errorf("app.environment must be one of: development, production, test; got %q", a.Environment)
	}
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if s.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	if s.RequestTimeout >= s.WriteTimeout {
		errs = append(errs, errors.New("server.request_timeout must be shorter than server.write_timeout"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (d *DatabaseConfig) validate() error {
	var errs []error

	if d.Name == "" {
		errs = append(errs, errors.New("database.name must not be empty"))
	}
	if d.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("database.max_attempts must be >= 1, got %d", d.MaxAttempts))
	}
	if d.RetryInterval < 0 {
		errs = append(errs, errors.New("database.retry_interval must not be negative"))
	}
	if d.ServerSelectionTimeout <= 0 || d.ConnectTimeout <= 0 || d.SocketTimeout <= 0 {
		errs = append(errs, errors.New("database connect, socket and server selection timeouts must be positive"))
	}
	if d.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("database.probe_timeout must be positive"))
	}
	if d.MinPoolSize > d.MaxPoolSize && d.MaxPoolSize != 0 {
		errs = append(errs, fmt.Errorf("database.min_pool_size (%d) exceeds max_pool_size (%d)", d.MinPoolSize, d.MaxPoolSize))
	}

	return errors.Join(errs...)
}

func (a *AuthConfig) validate() error {
	var errs []error

	if a.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if a.BcryptCost < 4 || a.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", a.BcryptCost))
	}

	return errors.Join(errs...)
}

func (m *MediaConfig) validate() error {
	var errs []error

	if m.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("media.max_upload_bytes must be positive"))
	}
	if err := m.Client.validate("media.client"); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (cl *ClientConfig) validate(prefix string) error {
	var errs []error

	if cl.BaseURL == "" {
		errs = append(errs, fmt.Errorf("%s.base_url must not be empty", prefix))
	}
	if cl.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s.timeout must be positive", prefix))
	}
	if cl.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%s.retry.max_attempts must be >= 1, got %d", prefix, cl.Retry.MaxAttempts))
	}
	if cl.Retry.Multiplier <= 0 {
		errs = append(errs, fmt.Errorf("%s.retry.multiplier must be positive, got %f", prefix, cl.Retry.Multiplier))
	}
	if cl.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("%s.circuit_breaker.max_failures must be >= 1, got %d",
			prefix, cl.CircuitBreaker.MaxFailures))
	}
	if cl.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("%s.rate_limit.requests_per_second must not be negative", prefix))
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}
