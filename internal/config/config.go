package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/claude/onerm/internal/calc"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Share     ShareConfig     `yaml:"share"`
	Site      SiteConfig      `yaml:"site"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// BaseURL is the public address used in share links. When empty the
	// request's own host is used.
	BaseURL string `yaml:"base_url"`
	// SessionIdle is how long an unused calculator stays in memory. Evicted
	// sessions are rebuilt from storage on their next request.
	SessionIdle time.Duration `yaml:"session_idle"`
	MaxSessions int           `yaml:"max_sessions"`
}

type StorageConfig struct {
	Driver     string         `yaml:"driver"` // memory, sqlite or postgres
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
	Migrations string         `yaml:"migrations"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type ShareConfig struct {
	// RatePerMinute and Burst bound share/export requests per client.
	RatePerMinute float64 `yaml:"rate_per_minute"`
	Burst         int     `yaml:"burst"`
	FontPath      string  `yaml:"font_path"`
}

type SiteConfig struct {
	DefaultLocale string `yaml:"default_locale"`
	GitHub        string `yaml:"github"`
	Email         string `yaml:"email"`
	Feedback      string `yaml:"feedback"`
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DSN returns a PostgreSQL connection string.
func (d PostgresConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Limit converts the per-minute share rate to a rate.Limit.
func (s ShareConfig) Limit() rate.Limit {
	return rate.Limit(s.RatePerMinute / 60)
}

// Locale returns the configured default locale.
func (s SiteConfig) Locale() calc.Locale {
	if l, ok := calc.ParseLocale(s.DefaultLocale); ok {
		return l
	}
	return calc.DefaultLocale
}

func defaults() *Config {
	return &Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8080, SessionIdle: 24 * time.Hour, MaxSessions: 10000},
		Storage: StorageConfig{Driver: DriverSQLite, SQLitePath: "data/onerm.db", Migrations: "migrations"},
		Share:   ShareConfig{RatePerMinute: 30, Burst: 5},
		Site:    SiteConfig{DefaultLocale: string(calc.DefaultLocale)},
	}
}

// Load reads config from a YAML file, then a .env file next to the working
// directory (if present), then applies environment variable overrides.
// Env vars use the prefix ONERM_ and underscore-separated paths:
//
//	ONERM_SERVER_HOST, ONERM_SERVER_PORT, ONERM_SERVER_BASE_URL,
//	ONERM_SERVER_SESSION_IDLE, ONERM_SERVER_MAX_SESSIONS,
//	ONERM_STORAGE_DRIVER, ONERM_STORAGE_SQLITE_PATH,
//	ONERM_DB_HOST, ONERM_DB_PORT, ONERM_DB_NAME,
//	ONERM_DB_USER, ONERM_DB_PASSWORD, ONERM_DB_SSLMODE,
//	ONERM_TAILSCALE_ENABLED, ONERM_SHARE_FONT_PATH, ONERM_DEFAULT_LOCALE
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ONERM_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("ONERM_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ONERM_SERVER_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("ONERM_SERVER_SESSION_IDLE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.SessionIdle = d
		}
	}
	if v := os.Getenv("ONERM_SERVER_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MaxSessions = n
		}
	}
	if v := os.Getenv("ONERM_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("ONERM_STORAGE_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("ONERM_DB_HOST"); v != "" {
		cfg.Storage.Postgres.Host = v
	}
	if v := os.Getenv("ONERM_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.Port = port
		}
	}
	if v := os.Getenv("ONERM_DB_NAME"); v != "" {
		cfg.Storage.Postgres.Name = v
	}
	if v := os.Getenv("ONERM_DB_USER"); v != "" {
		cfg.Storage.Postgres.User = v
	}
	if v := os.Getenv("ONERM_DB_PASSWORD"); v != "" {
		cfg.Storage.Postgres.Password = v
	}
	if v := os.Getenv("ONERM_DB_SSLMODE"); v != "" {
		cfg.Storage.Postgres.SSLMode = v
	}
	if v := os.Getenv("ONERM_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("ONERM_SHARE_FONT_PATH"); v != "" {
		cfg.Share.FontPath = v
	}
	if v := os.Getenv("ONERM_DEFAULT_LOCALE"); v != "" {
		cfg.Site.DefaultLocale = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Server.SessionIdle <= 0 {
		return fmt.Errorf("server.session_idle must be positive")
	}
	if c.Server.MaxSessions <= 0 {
		return fmt.Errorf("server.max_sessions must be positive")
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.Postgres.Host == "" {
			return fmt.Errorf("storage.postgres.host is required")
		}
		if c.Storage.Postgres.Port == 0 {
			return fmt.Errorf("storage.postgres.port is required")
		}
		if c.Storage.Postgres.Name == "" {
			return fmt.Errorf("storage.postgres.name is required")
		}
		if c.Storage.Postgres.User == "" {
			return fmt.Errorf("storage.postgres.user is required")
		}
	default:
		return fmt.Errorf("storage.driver %q is not one of memory, sqlite, postgres", c.Storage.Driver)
	}
	if _, ok := calc.ParseLocale(c.Site.DefaultLocale); !ok {
		return fmt.Errorf("site.default_locale %q is not one of ko, en, ja", c.Site.DefaultLocale)
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Share.RatePerMinute <= 0 || c.Share.Burst <= 0 {
		return fmt.Errorf("share.rate_per_minute and share.burst must be positive")
	}
	return nil
}
