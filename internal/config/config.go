// Package config loads service settings from an optional YAML file and the
// environment. Precedence: defaults, then the file, then environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSessionSecret is only acceptable outside production.
const DefaultSessionSecret = "default-secret-change-me"

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	// BaseURL is the public origin used in reset links and the calendar feed.
	BaseURL string `yaml:"base_url"`
	// WebDir, if set, is served as static files at the root.
	WebDir string `yaml:"web_dir"`
	// CORSOrigin is the front-end origin allowed to call the API with
	// credentials. Empty allows any origin without them.
	CORSOrigin string `yaml:"cors_origin"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Driver is "postgres" or "memory". The memory store is for demos and
	// local development; nothing survives a restart.
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

// DSN builds a libpq-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// AuthConfig holds admin authentication settings.
type AuthConfig struct {
	SessionSecret string `yaml:"session_secret"`
	// AdminEmail is the default identity for seed-admin.
	AdminEmail string `yaml:"admin_email"`
	// AdminPassword, if set with AdminEmail, seeds the admin when the
	// server starts.
	AdminPassword string `yaml:"admin_password"`
}

// RedisConfig configures rate limiting of public endpoints. An empty URL
// disables limiting.
type RedisConfig struct {
	URL         string        `yaml:"url"`
	SignupLimit int           `yaml:"signup_limit"`
	AuthLimit   int           `yaml:"auth_limit"`
	Window      time.Duration `yaml:"window"`
}

// MailConfig configures outgoing email. An empty Host logs emails instead
// of sending them.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

// ImportConfig holds defaults applied to lists created from a calendar.
type ImportConfig struct {
	DefaultGuestCap     int `yaml:"default_guest_cap"`
	DefaultMaxPerSignup int `yaml:"default_max_per_signup"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" | "json"; empty picks json in production
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Mail     MailConfig     `yaml:"mail"`
	Import   ImportConfig   `yaml:"import"`
	Log      LogConfig      `yaml:"log"`
	Metrics  bool           `yaml:"metrics"`
}

// Default returns the local-development configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
			BaseURL:     "http://localhost:8080",
		},
		Database: DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			DBName:   "guestlist",
			SSLMode:  "disable",
			MaxConns: 20,
		},
		Auth: AuthConfig{
			SessionSecret: DefaultSessionSecret,
		},
		Redis: RedisConfig{
			SignupLimit: 10,
			AuthLimit:   5,
			Window:      time.Minute,
		},
		Mail: MailConfig{
			Port:     "587",
			From:     "guestlist@localhost",
			FromName: "Guest List",
		},
		Import: ImportConfig{
			DefaultGuestCap:     75,
			DefaultMaxPerSignup: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: true,
	}
}

// Load builds the configuration. path may be empty; a missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Environment = getEnv("ENVIRONMENT", c.Server.Environment)
	c.Server.BaseURL = getEnv("BASE_URL", c.Server.BaseURL)
	c.Server.WebDir = getEnv("WEB_DIR", c.Server.WebDir)
	c.Server.CORSOrigin = getEnv("CORS_ORIGIN", c.Server.CORSOrigin)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxConns = int32(getEnvAsInt("DB_MAX_CONNS", int(c.Database.MaxConns)))

	c.Auth.SessionSecret = getEnv("SESSION_SECRET", c.Auth.SessionSecret)
	c.Auth.AdminEmail = getEnv("ADMIN_EMAIL", c.Auth.AdminEmail)
	c.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", c.Auth.AdminPassword)

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Redis.SignupLimit = getEnvAsInt("RATE_LIMIT_SIGNUP", c.Redis.SignupLimit)
	c.Redis.AuthLimit = getEnvAsInt("RATE_LIMIT_AUTH", c.Redis.AuthLimit)
	c.Redis.Window = getEnvAsDuration("RATE_LIMIT_WINDOW", c.Redis.Window)

	c.Mail.Host = getEnv("SMTP_HOST", c.Mail.Host)
	c.Mail.Port = getEnv("SMTP_PORT", c.Mail.Port)
	c.Mail.Username = getEnv("SMTP_USERNAME", c.Mail.Username)
	c.Mail.Password = getEnv("SMTP_PASSWORD", c.Mail.Password)
	c.Mail.From = getEnv("MAIL_FROM", c.Mail.From)
	c.Mail.FromName = getEnv("MAIL_FROM_NAME", c.Mail.FromName)

	c.Import.DefaultGuestCap = getEnvAsInt("IMPORT_DEFAULT_GUEST_CAP", c.Import.DefaultGuestCap)
	c.Import.DefaultMaxPerSignup = getEnvAsInt("IMPORT_DEFAULT_MAX_PER_SIGNUP", c.Import.DefaultMaxPerSignup)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Metrics = getEnvAsBool("ENABLE_METRICS", c.Metrics)
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool {
	return c.Server.Environment == "production"
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Auth.SessionSecret == "" {
		return errors.New("session secret is empty")
	}
	if c.Production() && c.Auth.SessionSecret == DefaultSessionSecret {
		return errors.New("SESSION_SECRET must be set in production")
	}
	if c.Import.DefaultMaxPerSignup < 1 {
		return errors.New("import default_max_per_signup must be at least 1")
	}
	if c.Redis.Window <= 0 {
		return errors.New("rate limit window must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
