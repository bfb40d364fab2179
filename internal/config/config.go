// Package config resolves runtime settings from defaults, an optional .env
// file, the environment and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/shramba/internal/auth"
	"github.com/erazemk/shramba/internal/dedup"
)

// Environment variables read by Load.
const (
	EnvDB     = "SHRAMBA_DB"
	EnvAddr   = "SHRAMBA_ADDR"
	EnvLog    = "SHRAMBA_LOG"
	EnvConfig = "SHRAMBA_CONFIG"
)

// Config holds all runtime settings.
type Config struct {
	DBPath     string
	Addr       string
	LogPath    string
	ConfigFile string
	TokenTTL   time.Duration
	Dedup      dedup.Config
}

// file is the shape of the YAML config file.
type file struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
	Dedup    dedup.Config  `yaml:"dedup"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:   "shramba.sqlite3",
		Addr:     ":8080",
		TokenTTL: auth.TokenExpiry,
		Dedup:    dedup.DefaultConfig(),
	}
}

// Load resolves the configuration. envFile is loaded first when it exists;
// variables already set in the environment win over it.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := Default()
	cfg.DBPath = getEnv(EnvDB, cfg.DBPath)
	cfg.Addr = getEnv(EnvAddr, cfg.Addr)
	cfg.LogPath = getEnv(EnvLog, cfg.LogPath)
	cfg.ConfigFile = getEnv(EnvConfig, cfg.ConfigFile)

	if cfg.ConfigFile != "" {
		if err := cfg.readFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	f := file{TokenTTL: c.TokenTTL, Dedup: c.Dedup}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	c.TokenTTL = f.TokenTTL
	c.Dedup = f.Dedup
	return nil
}

// Validate checks the resolved settings.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.TokenTTL < time.Minute {
		return fmt.Errorf("token_ttl must be at least 1m (got %s)", c.TokenTTL)
	}
	if err := c.Dedup.Validate(); err != nil {
		return fmt.Errorf("dedup: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
