// Package config provides configuration loading and validation for the service.
// Configuration is loaded from YAML files with environment variable overrides
// using a layered system: defaults -> base.yaml -> {profile}.yaml -> APP_ env
// vars -> platform env aliases (MONGODB_URI, JWT_SECRET, PORT, ...).
package config

import "time"

// Environment names recognised by App.Environment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds all configuration for the service.
type Config struct {
	App        AppConfig        `koanf:"app"`
	Server     ServerConfig     `koanf:"server"`
	Log        LogConfig        `koanf:"log"`
	Database   DatabaseConfig   `koanf:"database"`
	Auth       AuthConfig       `koanf:"auth"`
	Media      MediaConfig      `koanf:"media"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Deployment DeploymentConfig `koanf:"deployment"`
}

// AppConfig identifies the running service.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

// IsDevelopment reports whether raw error details may be returned to clients.
func (a AppConfig) IsDevelopment() bool {
	return a.Environment == EnvDevelopment
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	IdleTimeout    time.Duration `koanf:"idle_timeout"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	MaxBodyBytes   int64         `koanf:"max_body_bytes"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DatabaseConfig holds document store connection settings. URI is not
// checked by Validate: a missing URI is reported by the environment
// validator and refused by the connection supervisor at connect time.
type DatabaseConfig struct {
	URI                    string        `koanf:"uri"`
	Name                   string        `koanf:"name"`
	ServerSelectionTimeout time.Duration `koanf:"server_selection_timeout"`
	SocketTimeout          time.Duration `koanf:"socket_timeout"`
	ConnectTimeout         time.Duration `koanf:"connect_timeout"`
	QueryTimeout           time.Duration `koanf:"query_timeout"`
	MaxPoolSize            uint64        `koanf:"max_pool_size"`
	MinPoolSize            uint64        `koanf:"min_pool_size"`
	MaxAttempts            int           `koanf:"max_attempts"`
	RetryInterval          time.Duration `koanf:"retry_interval"`
	ProbeTimeout           time.Duration `koanf:"probe_timeout"`
}

// ConnectBudget is the longest a connection establishment can take: every
// attempt running into its timeout plus the waits between attempts.
func (d *DatabaseConfig) ConnectBudget() time.Duration {
	if d.MaxAttempts < 1 {
		return 0
	}
	attempt := max(d.ServerSelectionTimeout, d.ConnectTimeout)
	return time.Duration(d.MaxAttempts)*attempt + time.Duration(d.MaxAttempts-1)*d.RetryInterval
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret  string        `koanf:"jwt_secret"`
	TokenTTL   time.Duration `koanf:"token_ttl"`
	Issuer     string        `koanf:"issuer"`
	BcryptCost int           `koanf:"bcrypt_cost"`
}

// MediaConfig holds hosted media service credentials and upload policy.
type MediaConfig struct {
	CloudName      string       `koanf:"cloud_name"`
	APIKey         string       `koanf:"api_key"`
	APISecret      string       `koanf:"api_secret"`
	Folder         string       `koanf:"folder"`
	Transformation string       `koanf:"transformation"`
	MaxUploadBytes int64        `koanf:"max_upload_bytes"`
	Client         ClientConfig `koanf:"client"`
}

// Configured reports whether all credentials are present.
func (m MediaConfig) Configured() bool {
	return m.CloudName != "" && m.APIKey != "" && m.APISecret != ""
}

// ClientConfig holds outbound HTTP client settings.
type ClientConfig struct {
	BaseURL        string               `koanf:"base_url"`
	Timeout        time.Duration        `koanf:"timeout"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
}

// RetryConfig holds retry policy settings with exponential backoff.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	Multiplier      float64       `koanf:"multiplier"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// RateLimitConfig holds client-side rate limiting. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

// DeploymentConfig carries serverless platform indicators. They are only
// reported by the diagnostics endpoint.
type DeploymentConfig struct {
	Vercel      bool   `koanf:"vercel"`
	Region      string `koanf:"region"`
	Environment string `koanf:"environment"`
}
