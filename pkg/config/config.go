// Package config loads constel configuration from a TOML file.
//
// The configuration file lives at ~/.config/constel/config.toml (or under
// $XDG_CONFIG_HOME when set). Every field has a sensible default, so a
// missing file is not an error: Load returns the defaults. Command-line
// flags always override file values; the CLI applies the file first and
// then lets cobra flags overwrite whatever the user passed explicitly.
//
// Example config.toml:
//
//	[viewport]
//	width = 1024
//	height = 768
//
//	[sim]
//	repulsion = 150.0
//	friction = 0.9
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/constelviz/constel/pkg/sim"
)

// appName is used for the configuration directory name.
const appName = "constel"

// Cache backend names accepted in the [cache] section.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration tree.
type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	Sim      sim.Options    `toml:"sim"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
	Payload  PayloadConfig  `toml:"payload"`
}

// ViewportConfig sets the default frame size for render and view.
type ViewportConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// CacheConfig selects the pipeline cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // file, redis, or none
	Dir           string `toml:"dir"`     // file backend; empty means XDG default
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig configures the embedding API server.
type ServerConfig struct {
	Addr     string `toml:"addr"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// PayloadConfig configures the payload HTTP client.
type PayloadConfig struct {
	BearerToken string `toml:"bearer_token"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Viewport: ViewportConfig{Width: 800, Height: 600},
		Cache:    CacheConfig{Backend: BackendFile},
		Server:   ServerConfig{Addr: ":8080", MongoDB: appName},
	}
}

// Path returns the configuration file path following the XDG convention.
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the configuration from the default path.
// A missing file yields Default() without error.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from an explicit path.
// A missing file yields Default() without error; a malformed file is an error.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "", BackendFile, BackendRedis, BackendNone:
	default:
		return fmt.Errorf("unknown cache backend %q (must be file, redis, or none)", c.Cache.Backend)
	}
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		return fmt.Errorf("viewport dimensions must be non-negative")
	}
	return nil
}
