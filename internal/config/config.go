// Package config wraps viper behind a small nil-safe accessor type and owns
// the tool's defaults: device address, credentials, and timeouts.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for a factory-fresh device and a typical home subnet sweep.
const (
	DefaultDeviceAddr      = "192.168.10.1"
	DefaultUsername        = "admin"
	DefaultPassword        = "admin"
	DefaultCallTimeout     = 10 * time.Second
	DefaultProbeTimeout    = 2 * time.Second
	DefaultScanConcurrency = 50
)

// Config is a read-only view over a viper instance. A nil inner viper is
// valid and returns zero values, which keeps call sites free of nil checks.
type Config struct {
	v *viper.Viper
}

// New wraps an existing viper instance.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

// Load builds the tool configuration: hard defaults, then an optional YAML
// file, then GRAMOFONCTL_* environment overrides. An empty path searches the
// standard locations; a missing file is not an error, an unreadable one is.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("device.addr", DefaultDeviceAddr)
	v.SetDefault("device.username", DefaultUsername)
	v.SetDefault("device.password", DefaultPassword)
	v.SetDefault("device.timeout", DefaultCallTimeout)
	v.SetDefault("scan.timeout", DefaultProbeTimeout)
	v.SetDefault("scan.concurrency", DefaultScanConcurrency)
	v.SetDefault("scan.rate_limit", 0) // probes per second, 0 = unlimited

	v.SetEnvPrefix("GRAMOFONCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gramofonctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/gramofonctl")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return New(v), nil
		}
		if path != "" {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return New(v), nil
}

// GetString returns the string at key, or "" when unset or cfg is empty.
func (c *Config) GetString(key string) string {
	if c == nil || c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

// GetInt returns the int at key, or 0.
func (c *Config) GetInt(key string) int {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

// GetBool returns the bool at key, or false.
func (c *Config) GetBool(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

// GetDuration returns the duration at key, or 0.
func (c *Config) GetDuration(key string) time.Duration {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

// IsSet reports whether key has any value (default, file, or env).
func (c *Config) IsSet(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

// Sub returns the subtree rooted at key. Never returns nil; a missing
// subtree yields an empty Config.
func (c *Config) Sub(key string) *Config {
	if c == nil || c.v == nil {
		return &Config{}
	}
	return &Config{v: c.v.Sub(key)}
}

// Unmarshal decodes the configuration into a mapstructure-tagged struct.
func (c *Config) Unmarshal(target any) error {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}
