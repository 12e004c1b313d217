// Package config holds the explicit configuration value of the records
// engine. Nothing in the module reads a process-wide path: the value is
// loaded once by the CLI and passed to sqlite.Open and api.NewRouter.
//
// Config file lookup (first hit wins):
//  1. --config flag
//  2. $RECORDS_CONFIG
//  3. ./records.yaml
//
// A missing file is not an error; defaults are used.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3 (cgo)
	DriverModernc = "modernc" // modernc.org/sqlite (no cgo calls at query time)
)

// EnvConfigPath names the environment variable holding the config path.
const EnvConfigPath = "RECORDS_CONFIG"

// DefaultConfigFile is looked up in the working directory.
const DefaultConfigFile = "records.yaml"

// Config is the full configuration.
type Config struct {
	Database Database `yaml:"database"`
	Server   Server   `yaml:"server"`
}

// Database configures the storage location and driver.
type Database struct {
	// Path of the SQLite file. ":memory:" keeps everything in memory.
	Path string `yaml:"path"`

	// Driver is DriverMattn or DriverModernc.
	Driver string `yaml:"driver"`

	// BusyTimeout is how long the engine waits on a locked database
	// before reporting busy.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// Server configures the HTTP surface.
type Server struct {
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the config at path. An empty path triggers the lookup order
// described in the package comment.
func Load(path string) (*Config, string, error) {
	if path == "" {
		path = FindConfigPath()
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := LoadFromPath(path)
	return cfg, path, err
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfigPath returns the first existing config path, or "".
func FindConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverMattn, DriverModernc:
	default:
		errs = append(errs, fmt.Errorf("database.driver %q: must be %q or %q",
			c.Database.Driver, DriverMattn, DriverModernc))
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("database.busy_timeout must not be negative"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	return errors.Join(errs...)
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "./data/crm.db"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMattn
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = 5 * time.Second
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8000"}
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
}
