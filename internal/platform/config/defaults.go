package config

const (
	defaultServerPort = 5000

	defaultDBMaxAttempts = 3
	defaultDBMaxPoolSize = 10

	defaultBcryptCost = 10

	defaultMaxUploadBytes = 2 << 20

	defaultMaxBodyBytes = 50 << 20

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "blog-platform-api",
		"app.version":     "dev",
		"app.environment": EnvDevelopment,

		"server.host":            "0.0.0.0",
		"server.port":            defaultServerPort,
		"server.read_timeout":    "15s",
		"server.write_timeout":   "200s",
		"server.idle_timeout":    "120s",
		"server.request_timeout": "190s",
		"server.max_body_bytes":  defaultMaxBodyBytes,

		"log.level":  "info",
		"log.format": "json",

		"database.uri":                      "",
		"database.name":                     "blog-platform",
		"database.server_selection_timeout": "60s",
		"database.socket_timeout":           "60s",
		"database.connect_timeout":          "60s",
		"database.query_timeout":            "60s",
		"database.max_pool_size":            defaultDBMaxPoolSize,
		"database.min_pool_size":            0,
		"database.max_attempts":             defaultDBMaxAttempts,
		"database.retry_interval":           "2s",
		"database.probe_timeout":            "5s",

		"auth.jwt_secret":  "",
		"auth.token_ttl":   "720h",
		"auth.issuer":      "blog-platform-api",
		"auth.bcrypt_cost": defaultBcryptCost,

		"media.cloud_name":                             "",
		"media.api_key":                                "",
		"media.api_secret":                             "",
		"media.folder":                                 "blog_images",
		"media.transformation":                         "q_auto:good/w_1200,c_limit/f_auto",
		"media.max_upload_bytes":                       defaultMaxUploadBytes,
		"media.client.base_url":                        "https://api.cloudinary.com",
		"media.client.timeout":                         "30s",
		"media.client.retry.max_attempts":              defaultRetryMaxAttempts,
		"media.client.retry.initial_interval":          "200ms",
		"media.client.retry.max_interval":              "5s",
		"media.client.retry.multiplier":                defaultRetryMultiplier,
		"media.client.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"media.client.circuit_breaker.timeout":         "30s",
		"media.client.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"media.client.rate_limit.requests_per_second":  0,
		"media.client.rate_limit.burst_size":           0,

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "blog-platform-api",

		"deployment.vercel":      false,
		"deployment.region":      "unknown",
		"deployment.environment": "unknown",
	}
}
