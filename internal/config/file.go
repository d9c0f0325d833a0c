// SPDX-License-Identifier: MIT
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnknownConfigField classifies strict YAML parse failures caused by
// unknown keys. Use errors.Is instead of string matching.
var ErrUnknownConfigField = errors.New("config: unknown config field")

// fileConfig mirrors AppConfig for YAML decoding. Durations are Go duration
// strings ("30s", "10m").
type fileConfig struct {
	Listen       string  `yaml:"listen"`
	DataDir      string  `yaml:"data_dir"`
	ThumbnailDir string  `yaml:"thumbnail_dir"`
	APIBase      string  `yaml:"api_base"`
	APITimeout   string  `yaml:"api_timeout"`
	APIRateLimit float64 `yaml:"api_rate_limit"`
	NegativeTTL  string  `yaml:"negative_ttl"`
	RedisAddr    string  `yaml:"redis_addr"`
	RateLimitRPM int     `yaml:"rate_limit_rpm"`
	LogLevel     string  `yaml:"log_level"`
}

// LoadFile reads a YAML configuration file in strict mode: unknown fields
// are rejected rather than silently ignored.
func LoadFile(path string) (AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if strings.Contains(err.Error(), "not found in type") {
			return AppConfig{}, fmt.Errorf("%w: %s: %v", ErrUnknownConfigField, path, err)
		}
		return AppConfig{}, fmt.Errorf("%w: parse %s: %v", ErrConfiguration, path, err)
	}

	cfg := AppConfig{
		Listen:       fc.Listen,
		DataDir:      fc.DataDir,
		ThumbnailDir: fc.ThumbnailDir,
		APIBase:      fc.APIBase,
		APIRateLimit: fc.APIRateLimit,
		RedisAddr:    fc.RedisAddr,
		RateLimitRPM: fc.RateLimitRPM,
		LogLevel:     fc.LogLevel,
	}
	if cfg.APITimeout, err = parseFileDuration(path, "api_timeout", fc.APITimeout); err != nil {
		return AppConfig{}, err
	}
	if cfg.NegativeTTL, err = parseFileDuration(path, "negative_ttl", fc.NegativeTTL); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func parseFileDuration(path, field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: field %s: %v", ErrConfiguration, path, field, err)
	}
	return d, nil
}
