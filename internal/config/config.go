// Package config loads the service configuration from defaults, an optional
// YAML file and PORTFOLIO_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/naka-gawa/portfolio-feed/internal/store"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "portfolio.yml"

const envPrefix = "PORTFOLIO_"

// Config is the top-level configuration, corresponding to portfolio.yml.
type Config struct {
	Username       string      `yaml:"username" koanf:"username"`
	APIBaseURL     string      `yaml:"api_base_url" koanf:"api_base_url"`
	DateLayout     string      `yaml:"date_layout" koanf:"date_layout"`
	Timezone       string      `yaml:"timezone" koanf:"timezone"`
	ListenAddr     string      `yaml:"listen_addr" koanf:"listen_addr"`
	RequestTimeout int         `yaml:"request_timeout" koanf:"request_timeout"`
	CORSAllowAll   bool        `yaml:"cors_allow_all" koanf:"cors_allow_all"`
	Store          StoreConfig `yaml:"store" koanf:"store"`
}

// StoreConfig selects the preference store backend.
type StoreConfig struct {
	Driver     string `yaml:"driver" koanf:"driver"`
	SQLitePath string `yaml:"sqlite_path" koanf:"sqlite_path"`
	RedisAddr  string `yaml:"redis_addr" koanf:"redis_addr"`
	RedisDB    int    `yaml:"redis_db" koanf:"redis_db"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Username:       "shivnarayanyadav1507-sys",
		APIBaseURL:     "https://api.github.com/",
		DateLayout:     "1/2/2006",
		Timezone:       "UTC",
		ListenAddr:     ":8080",
		RequestTimeout: 10,
		Store: StoreConfig{
			Driver:     string(store.DriverMemory),
			SQLitePath: "data/preferences.db",
			RedisAddr:  "localhost:6379",
		},
	}
}

// Load layers three sources: DefaultConfig, the YAML file at path (skipped
// when absent) and PORTFOLIO_* environment variables. Nested keys use a
// double underscore: PORTFOLIO_STORE__DRIVER sets store.driver.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := loadFile(k, path); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("config: stat %s: %w", path, err)
	case info.IsDir():
		return fmt.Errorf("config: %s is a directory", path)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// envKey maps PORTFOLIO_STORE__REDIS_ADDR to store.redis_addr.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes c as YAML, creating parent directories. The file is replaced
// atomically so a reader never sees a partial config.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".portfolio-*.yml")
	if err != nil {
		return fmt.Errorf("config: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: write %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("config: chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("config: replace %s: %w", path, err)
	}
	return nil
}

var validDrivers = map[store.Driver]bool{
	store.DriverMemory: true,
	store.DriverSQLite: true,
	store.DriverRedis:  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if c.DateLayout == "" {
		return fmt.Errorf("date_layout is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if !validDrivers[store.Driver(c.Store.Driver)] {
		return fmt.Errorf("invalid store.driver %q: must be one of memory, sqlite, redis", c.Store.Driver)
	}
	if c.Store.Driver == string(store.DriverSQLite) && c.Store.SQLitePath == "" {
		return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
	}
	if c.Store.Driver == string(store.DriverRedis) && c.Store.RedisAddr == "" {
		return fmt.Errorf("store.redis_addr is required for the redis driver")
	}
	return nil
}

// Location resolves Timezone; call Validate first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Timeout is RequestTimeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// StoreOptions converts the store section for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Driver:     store.Driver(c.Store.Driver),
		SQLitePath: c.Store.SQLitePath,
		RedisAddr:  c.Store.RedisAddr,
		RedisDB:    c.Store.RedisDB,
	}
}
