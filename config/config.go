// Package config handles loading and validation of application configuration
// from environment variables through Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Session storage backends.
const (
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

const minAdminPasswordLength = 8

// ServerConfig holds settings for the collection API server.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// TrustedProxies lists proxy CIDRs whose X-Forwarded-For is honored.
	// Empty means forwarded headers are ignored.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// DatabaseConfig holds PostgreSQL connection details.
type DatabaseConfig struct {
	Host           string `mapstructure:"HOST" yaml:"host"`
	Port           int    `mapstructure:"PORT" yaml:"port"`
	User           string `mapstructure:"USER" yaml:"user"`
	Password       string `mapstructure:"PASSWORD" yaml:"password"`
	Name           string `mapstructure:"NAME" yaml:"name"`
	SSLMode        string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxConnections int32  `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
}

// URL returns a postgres:// connection URL for pgxpool and golang-migrate.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
	UseTLS   bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
}

// AdminConfig holds the credential guarding GET /admin/all.
type AdminConfig struct {
	Username string `mapstructure:"USERNAME" yaml:"username"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
}

// APIClientConfig points the web UI and CLI at the collection API.
type APIClientConfig struct {
	BaseURL        string `mapstructure:"BASE_URL" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	// CatalogCacheSeconds bounds how long categories and questions are reused.
	CatalogCacheSeconds int `mapstructure:"CATALOG_CACHE_SECONDS" yaml:"catalog_cache_seconds"`
}

// Timeout returns the HTTP client timeout.
func (c *APIClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// WebConfig holds settings for the web UI server.
type WebConfig struct {
	Port         string `mapstructure:"PORT" yaml:"port"`
	SecureCookie bool   `mapstructure:"SECURE_COOKIE" yaml:"secure_cookie"`
}

// SessionConfig controls web UI session lifetime and storage.
type SessionConfig struct {
	Backend    string        `mapstructure:"BACKEND" yaml:"backend"`
	TTL        time.Duration `mapstructure:"TTL" yaml:"ttl"`
	CookieName string        `mapstructure:"COOKIE_NAME" yaml:"cookie_name"`
	// MaxEntries caps the in-memory backend.
	MaxEntries int `mapstructure:"MAX_ENTRIES" yaml:"max_entries"`
}

// CatalogConfig locates the category/question catalog.
type CatalogConfig struct {
	// Path to a YAML catalog. Empty uses the embedded default.
	Path  string `mapstructure:"PATH" yaml:"path"`
	Watch bool   `mapstructure:"WATCH" yaml:"watch"`
}

// SimpleFormConfig holds settings for the standalone CSV form.
type SimpleFormConfig struct {
	Enabled bool   `mapstructure:"ENABLED" yaml:"enabled"`
	CSVPath string `mapstructure:"CSV_PATH" yaml:"csv_path"`
}

// RateLimitConfig holds configuration for submission rate limiting.
type RateLimitConfig struct {
	SubmitPerMinute int `mapstructure:"SUBMIT_PER_MINUTE" yaml:"submit_per_minute"`
	WindowSeconds   int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// ArchiveConfig configures the S3-compatible bucket for exported reports.
type ArchiveConfig struct {
	Enabled         bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Bucket          string `mapstructure:"BUCKET" yaml:"bucket"`
	Region          string `mapstructure:"REGION" yaml:"region"`
	Endpoint        string `mapstructure:"ENDPOINT" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
	Prefix          string `mapstructure:"PREFIX" yaml:"prefix"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server     ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	Database   DatabaseConfig   `mapstructure:"DATABASE" yaml:"database"`
	Redis      RedisConfig      `mapstructure:"REDIS" yaml:"redis"`
	Admin      AdminConfig      `mapstructure:"ADMIN" yaml:"admin"`
	APIClient  APIClientConfig  `mapstructure:"API_CLIENT" yaml:"api_client"`
	Web        WebConfig        `mapstructure:"WEB" yaml:"web"`
	Session    SessionConfig    `mapstructure:"SESSION" yaml:"session"`
	Catalog    CatalogConfig    `mapstructure:"CATALOG" yaml:"catalog"`
	SimpleForm SimpleFormConfig `mapstructure:"SIMPLE_FORM" yaml:"simple_form"`
	RateLimit  RateLimitConfig  `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	Archive    ArchiveConfig    `mapstructure:"ARCHIVE" yaml:"archive"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8000")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "feedback_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 10)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("ADMIN.USERNAME", "admin")
	v.SetDefault("ADMIN.PASSWORD", "")
	v.SetDefault("API_CLIENT.BASE_URL", "http://127.0.0.1:8000")
	v.SetDefault("API_CLIENT.TIMEOUT_SECONDS", 10)
	v.SetDefault("API_CLIENT.CATALOG_CACHE_SECONDS", 30)
	v.SetDefault("WEB.PORT", "8501")
	v.SetDefault("WEB.SECURE_COOKIE", false)
	v.SetDefault("SESSION.BACKEND", SessionBackendRedis)
	v.SetDefault("SESSION.TTL", "12h")
	v.SetDefault("SESSION.COOKIE_NAME", "feedback_session")
	v.SetDefault("SESSION.MAX_ENTRIES", 10000)
	v.SetDefault("CATALOG.PATH", "")
	v.SetDefault("CATALOG.WATCH", false)
	v.SetDefault("SIMPLE_FORM.ENABLED", true)
	v.SetDefault("SIMPLE_FORM.CSV_PATH", "feedback.csv")
	v.SetDefault("RATE_LIMIT.SUBMIT_PER_MINUTE", 30)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("ARCHIVE.ENABLED", false)
	v.SetDefault("ARCHIVE.REGION", "auto")
	v.SetDefault("ARCHIVE.PREFIX", "reports/")
	v.SetDefault("LOG_LEVEL", "info")
}

var envBindings = [][2]string{
	// Server config
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.VERSION", "VERSION"},
	{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
	// Database config
	{"DATABASE.HOST", "DB_HOST"},
	{"DATABASE.PORT", "DB_PORT"},
	{"DATABASE.USER", "DB_USER"},
	{"DATABASE.PASSWORD", "DB_PASSWORD"},
	{"DATABASE.NAME", "DB_NAME"},
	{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
	{"DATABASE.MAX_CONNECTIONS", "DB_MAX_CONNECTIONS"},
	// Redis config
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.USE_TLS", "REDIS_USE_TLS"},
	// Admin credential
	{"ADMIN.USERNAME", "ADMIN_USERNAME"},
	{"ADMIN.PASSWORD", "ADMIN_PASSWORD"},
	// Collection API client
	{"API_CLIENT.BASE_URL", "API_URL"},
	{"API_CLIENT.TIMEOUT_SECONDS", "API_CLIENT_TIMEOUT_SECONDS"},
	{"API_CLIENT.CATALOG_CACHE_SECONDS", "API_CLIENT_CATALOG_CACHE_SECONDS"},
	// Web UI
	{"WEB.PORT", "WEB_PORT"},
	{"WEB.SECURE_COOKIE", "WEB_SECURE_COOKIE"},
	{"SESSION.BACKEND", "SESSION_BACKEND"},
	{"SESSION.TTL", "SESSION_TTL"},
	{"SESSION.COOKIE_NAME", "SESSION_COOKIE_NAME"},
	{"SESSION.MAX_ENTRIES", "SESSION_MAX_ENTRIES"},
	// Catalog
	{"CATALOG.PATH", "CATALOG_PATH"},
	{"CATALOG.WATCH", "CATALOG_WATCH"},
	// Simple form
	{"SIMPLE_FORM.ENABLED", "SIMPLE_FORM_ENABLED"},
	{"SIMPLE_FORM.CSV_PATH", "SIMPLE_FORM_CSV_PATH"},
	// Rate limit config
	{"RATE_LIMIT.SUBMIT_PER_MINUTE", "RATE_LIMIT_SUBMIT_PER_MINUTE"},
	{"RATE_LIMIT.WINDOW_SECONDS", "RATE_LIMIT_WINDOW_SECONDS"},
	// Report archive
	{"ARCHIVE.ENABLED", "ARCHIVE_ENABLED"},
	{"ARCHIVE.BUCKET", "ARCHIVE_BUCKET"},
	{"ARCHIVE.REGION", "ARCHIVE_REGION"},
	{"ARCHIVE.ENDPOINT", "ARCHIVE_ENDPOINT"},
	{"ARCHIVE.ACCESS_KEY_ID", "ARCHIVE_ACCESS_KEY_ID"},
	{"ARCHIVE.SECRET_ACCESS_KEY", "ARCHIVE_SECRET_ACCESS_KEY"},
	{"ARCHIVE.PREFIX", "ARCHIVE_PREFIX"},
}

// LoadConfig loads configuration from environment variables using Viper,
// applies defaults and validates the sections every command needs.
// Use ValidateAPI or ValidateWeb for command-specific checks.
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an optional YAML file underneath the
// environment. Keys in the file use the section names, e.g. SERVER.PORT.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"web_port", cfg.Web.Port,
		"db", logger.MaskConnectionString(cfg.Database.URL()),
		"api_url", cfg.APIClient.BaseURL,
		"session_backend", cfg.Session.Backend,
		"catalog_path", cfg.Catalog.Path,
	)
	return &cfg, nil
}

// validateConfig checks the values shared by every command.
func validateConfig(cfg *Config) error {
	switch cfg.Server.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", cfg.Server.Environment)
	}

	if cfg.APIClient.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.APIClient.BaseURL); err != nil {
		return fmt.Errorf("invalid API base URL '%s': %w", cfg.APIClient.BaseURL, err)
	}
	if cfg.APIClient.TimeoutSeconds <= 0 {
		return fmt.Errorf("API client timeout must be positive")
	}
	if cfg.APIClient.CatalogCacheSeconds < 0 {
		return fmt.Errorf("API client catalog cache seconds must not be negative")
	}

	if cfg.Archive.Enabled {
		if cfg.Archive.Bucket == "" {
			return fmt.Errorf("archive bucket is required when archiving is enabled")
		}
		if cfg.Archive.Endpoint != "" {
			if _, err := url.ParseRequestURI(cfg.Archive.Endpoint); err != nil {
				return fmt.Errorf("invalid archive endpoint: %w", err)
			}
		}
	}

	return nil
}

// ValidateAPI checks the settings the collection API server needs.
func (c *Config) ValidateAPI() error {
	log := logger.GetLogger()

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(c.Server.AllowedOrigins) {
		for _, origin := range c.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Password == "" {
		log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
	}

	if c.Admin.Username == "" {
		return fmt.Errorf("admin username is required")
	}
	if len(c.Admin.Password) < minAdminPasswordLength {
		return fmt.Errorf("admin password must be at least %d characters long", minAdminPasswordLength)
	}

	if c.RateLimit.SubmitPerMinute <= 0 {
		return fmt.Errorf("rate limit submit per minute must be positive")
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	return nil
}

// ValidateWeb checks the settings the web UI server needs.
func (c *Config) ValidateWeb() error {
	if c.Web.Port == "" {
		return fmt.Errorf("web port is required")
	}

	switch c.Session.Backend {
	case SessionBackendRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("redis address is required for the redis session backend")
		}
	case SessionBackendMemory:
		if c.Session.MaxEntries <= 0 {
			return fmt.Errorf("session max entries must be positive")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}

	if c.SimpleForm.Enabled && c.SimpleForm.CSVPath == "" {
		return fmt.Errorf("simple form CSV path is required when the simple form is enabled")
	}

	return nil
}

// containsWildcard checks if the list of allowed origins contains "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
