// Package config loads the service configuration for the velada daemon
// and CLI from a YAML file, filling defaults for anything omitted.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings such as
// "30s" or "24h".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Store backends selectable in the configuration.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config is the root configuration.
type Config struct {
	Listen  string        `yaml:"listen"`
	Log     LogConfig     `yaml:"log"`
	Backend BackendConfig `yaml:"backend"`
	Store   StoreConfig   `yaml:"store"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// BackendConfig points at the events REST backend.
type BackendConfig struct {
	BaseURL string   `yaml:"base_url"`
	Token   string   `yaml:"token"`
	Timeout Duration `yaml:"timeout"`
}

// StoreConfig selects and configures the draft store.
type StoreConfig struct {
	Backend string `yaml:"backend"`

	// File store.
	Dir string `yaml:"dir"`

	// Redis store. Lock enables distributed flow locking on the same
	// connection.
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`
	Lock     bool     `yaml:"lock"`

	// Postgres store.
	DSN string `yaml:"dsn"`

	// EncryptionKey, when set, encrypts drafts at rest. Base64 of a
	// 32-byte AES-256 key; FallbackKeys accept previously rotated keys.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`

	// MaskKeys are regular expressions; draft fields whose key matches
	// are masked before persisting.
	MaskKeys []string `yaml:"mask_keys"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen: ":8080",
		Log:    LogConfig{Level: "info"},
		Backend: BackendConfig{
			BaseURL: "http://localhost:3000",
			Timeout: Duration(30 * time.Second),
		},
		Store: StoreConfig{
			Backend: StoreMemory,
			TTL:     Duration(24 * time.Hour),
		},
	}
}

// Load reads a YAML configuration file over the defaults. A missing path
// yields the defaults; a missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StoreFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("store.dir is required for the file store")
		}
	case StoreRedis:
		if c.Store.Addr == "" {
			return fmt.Errorf("store.addr is required for the redis store")
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Store.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(c.Store.EncryptionKey)
		if err != nil {
			return fmt.Errorf("store.encryption_key is not valid base64: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("store.encryption_key must decode to 32 bytes, got %d", len(key))
		}
	}
	for _, pattern := range c.Store.MaskKeys {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("store.mask_keys pattern %q: %w", pattern, err)
		}
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	return nil
}
