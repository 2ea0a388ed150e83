// Package config loads storefront settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config is the full set of settings. Zero fields are filled by Default.
type Config struct {
	Storage Storage `yaml:"storage"`
	Toast   Toast   `yaml:"toast"`
	Log     Log     `yaml:"log"`
}

// Storage selects and configures the durable KV backend.
type Storage struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path,omitempty"`
	RedisAddr string `yaml:"redis_addr,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

// Toast configures the notification scheduler.
type Toast struct {
	TTL   time.Duration `yaml:"ttl"`
	Limit int           `yaml:"limit,omitempty"`
}

// Log configures the process logger.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Storage: Storage{
			Driver:    DriverSQLite,
			Path:      "storefront.db",
			RedisAddr: "localhost:6379",
			Namespace: "storefront",
		},
		Toast: Toast{TTL: 5 * time.Second},
		Log:   Log{Level: "info"},
	}
}

// Load reads the file at path over Default. An empty path returns Default.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for driver %q", DriverSQLite)
		}
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for driver %q", DriverRedis)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage.driver %q: must be one of sqlite, redis, memory", c.Storage.Driver)
	}
	if c.Toast.TTL < 0 {
		return fmt.Errorf("toast.ttl must not be negative")
	}
	if c.Toast.Limit < 0 {
		return fmt.Errorf("toast.limit must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log.level %q", s)
}
