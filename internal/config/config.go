// Package config loads the dashboard settings from environment variables,
// applying defaults and validating everything once at startup.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	API         APIConfig
	Database    DatabaseConfig
	Session     SessionConfig
	Table       TableConfig
	Upload      UploadConfig
	Rate        RateLimitConfig
	Security    SecurityConfig
	Logging     LoggingConfig
	Maintenance MaintenanceConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// APIConfig points the dashboard at the remote admin API.
type APIConfig struct {
	// BaseURL is the admin API root, e.g. https://api.example.com/v1 (required)
	BaseURL string `env:"ADMIN_API_URL" envAlt:"API_BASE_URL" required:"true"`

	// Timeout applies to every outgoing call. Calls are never retried.
	Timeout time.Duration `env:"ADMIN_API_TIMEOUT" default:"15s"`

	LoginPath   string `env:"ADMIN_API_LOGIN_PATH" default:"/auth/admin/login"`
	MePath      string `env:"ADMIN_API_ME_PATH" default:"/auth/me"`
	UploadField string `env:"ADMIN_API_UPLOAD_FIELD" default:"file"`
}

// DatabaseConfig holds the Postgres settings used for sessions and the
// audit log. With no URL, sessions are kept in memory and auditing is off.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SessionConfig holds the admin session cookie settings.
type SessionConfig struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" default:"solar_admin_session"`
	TTL        time.Duration `env:"SESSION_TTL" default:"12h"`

	// Secure marks the cookie HTTPS-only. Disable for local development.
	Secure bool `env:"SESSION_SECURE_COOKIE" default:"true"`
}

// TableConfig holds paginated table defaults.
type TableConfig struct {
	// PageSizes are the choices of the rows-per-page selector; the first is the default.
	PageSizes []int `env:"TABLE_PAGE_SIZES" default:"10,20,50,100"`

	// ClientMaxRows caps the rows client-paginated screens fetch.
	ClientMaxRows int `env:"TABLE_CLIENT_MAX_ROWS" default:"1000"`
}

// UploadConfig holds file upload proxy settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the maximum number of uploads proxied at once (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for an upload slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// AllowedTypes are the MIME types accepted after content sniffing.
	AllowedTypes []string `env:"UPLOAD_ALLOWED_TYPES" default:"image/png,image/jpeg,image/webp,image/gif,application/pdf"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the general limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// LoginPerMinute limits sign-in attempts per IP (default: 10)
	LoginPerMinute int `env:"RATE_LIMIT_LOGIN" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// EnableCSRF requires a matching CSRF token on state-changing requests (default: true)
	EnableCSRF bool `env:"SECURITY_ENABLE_CSRF" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MaintenanceConfig controls the background cleanup job.
type MaintenanceConfig struct {
	// AuditRetentionDays is how long audit entries are kept (default: 90)
	AuditRetentionDays int `env:"AUDIT_RETENTION_DAYS" default:"90"`

	// Interval is how often expired sessions and old audit rows are purged (default: 1h)
	Interval time.Duration `env:"MAINTENANCE_INTERVAL" default:"1h"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// HasDatabase reports whether Postgres persistence is configured.
func (c *Config) HasDatabase() bool { return c.Database.URL != "" }

// AuditRetention returns the retention as a duration.
func (c *MaintenanceConfig) AuditRetention() time.Duration {
	return time.Duration(c.AuditRetentionDays) * 24 * time.Hour
}
