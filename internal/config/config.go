package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/courtfetch/internal/courts"
	"github.com/JaimeStill/courtfetch/pkg/database"
	"github.com/JaimeStill/courtfetch/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCourtfetchEnv             = "COURTFETCH_ENV"
	EnvCourtfetchShutdownTimeout = "COURTFETCH_SHUTDOWN_TIMEOUT"
	EnvCourtfetchVersion         = "COURTFETCH_VERSION"
	EnvCourtfetchLogLevel        = "COURTFETCH_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	Driver:          "COURTFETCH_DB_DRIVER",
	Host:            "COURTFETCH_DB_HOST",
	Port:            "COURTFETCH_DB_PORT",
	Name:            "COURTFETCH_DB_NAME",
	User:            "COURTFETCH_DB_USER",
	Password:        "COURTFETCH_DB_PASSWORD",
	SSLMode:         "COURTFETCH_DB_SSL_MODE",
	Path:            "COURTFETCH_DB_PATH",
	MaxOpenConns:    "COURTFETCH_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "COURTFETCH_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "COURTFETCH_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "COURTFETCH_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "COURTFETCH_STORAGE_CONTAINER_NAME",
	ConnectionString: "COURTFETCH_STORAGE_CONNECTION_STRING",
	MaxListSize:      "COURTFETCH_STORAGE_MAX_LIST_SIZE",
}

// Config is the root configuration for the courtfetch service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Cases           CasesConfig     `toml:"cases"`
	Courts          []courts.Court  `toml:"courts"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	LogLevel        string          `toml:"log_level"`
}

// Env returns the COURTFETCH_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCourtfetchEnv); env != "" {
		return env
	}
	return "local"
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(BaseConfigFile)
}

// LoadFrom is Load with an explicit base config path. The overlay is looked up
// next to it.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(path); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
// A non-empty overlay court list replaces the base list.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	mergeString(&c.LogLevel, overlay.LogLevel)
	if len(overlay.Courts) > 0 {
		c.Courts = overlay.Courts
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Cases.Merge(&overlay.Cases)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Cases.Finalize(); err != nil {
		return fmt.Errorf("cases: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	defaultString(&c.LogLevel, "info")
	if len(c.Courts) == 0 {
		c.Courts = courts.Defaults()
	}
	for i := range c.Courts {
		if c.Courts[i].CaptchaStrategy == "" {
			c.Courts[i].CaptchaStrategy = courts.CaptchaManual
		}
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCourtfetchShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCourtfetchVersion); v != "" {
		c.Version = v
	}
	envString(&c.LogLevel, EnvCourtfetchLogLevel)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if _, err := courts.NewRegistry(c.Courts); err != nil {
		return fmt.Errorf("courts: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(base string) string {
	env := os.Getenv(EnvCourtfetchEnv)
	if env == "" {
		return ""
	}
	path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
