// Package config loads dtxwif settings from a TOML file.
//
// The default location is $XDG_CONFIG_HOME/dtxwif/config.toml (falling back
// to ~/.config/dtxwif/config.toml). Every setting is optional:
//
//	[convert]
//	overwrite  = false
//	workers    = 4
//	output_dir = ""
//
//	[cache]
//	enabled   = true
//	dir       = ""                        # default: $XDG_CACHE_HOME/dtxwif
//	redis_url = "redis://localhost:6379/0" # use Redis instead of files
//	ttl       = "720h"
//
//	[server]
//	addr           = ":8080"
//	max_body_bytes = 8388608
//	read_timeout   = "30s"
//
// Command-line flags override file values.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/loomtools/dtxwif/pkg/errors"
)

// AppName names the configuration and cache directories.
const AppName = "dtxwif"

// Config holds all settings.
type Config struct {
	Convert ConvertConfig `toml:"convert"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
}

// ConvertConfig holds batch conversion defaults.
type ConvertConfig struct {
	Overwrite bool   `toml:"overwrite"`
	Workers   int    `toml:"workers"`
	OutputDir string `toml:"output_dir"`
}

// CacheConfig selects the conversion cache backend.
type CacheConfig struct {
	Enabled  bool     `toml:"enabled"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// ServerConfig configures "dtxwif serve".
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	ReadTimeout  Duration `toml:"read_timeout"`
}

// Duration is a time.Duration written as a string such as "30s" or "720h".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{Workers: 4},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration{30 * 24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 8 << 20,
			ReadTimeout:  Duration{30 * time.Second},
		},
	}
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the file at path on top of Default. An empty path means
// DefaultPath, which may be absent; an explicit path must exist. Unknown
// keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeIO, err, "config %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "config %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errs.New(errs.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Convert.Workers < 0 {
		return errors.New("convert.workers must not be negative")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be positive")
	}
	return nil
}

// CacheDir returns the file cache directory: the configured one, or
// $XDG_CACHE_HOME/dtxwif (falling back to ~/.cache/dtxwif).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
