// SPDX-License-Identifier: MIT

// Package config loads and validates the gateway configuration from the
// environment and an optional YAML file. The result is an immutable value
// passed explicitly to every component; there is no global mutable state.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrConfiguration marks invalid or missing configuration. It is fatal
	// for the component that needs the value; it is never retried.
	ErrConfiguration = errors.New("config: invalid configuration")
)

// AppConfig is the complete runtime configuration.
type AppConfig struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen string

	// DataDir is the root of all local state (database, thumbnails).
	DataDir string

	// ThumbnailDir is the thumbnail cache directory. Defaults to
	// <DataDir>/thumbnails when empty.
	ThumbnailDir string

	// APIBase is the IBM Video Streaming API endpoint.
	APIBase string

	// APITimeout bounds every upstream request, lookups and downloads alike.
	APITimeout time.Duration

	// APIRateLimit is the outbound requests-per-second budget (0 = unlimited).
	APIRateLimit float64

	// NegativeTTL is how long upstream "no thumbnail" results are remembered.
	NegativeTTL time.Duration

	// RedisAddr enables the Redis-backed negative cache when non-empty.
	RedisAddr string

	// RateLimitRPM bounds inbound mutating/thumbnail requests per client IP.
	RateLimitRPM int

	// LogLevel is the zerolog level name.
	LogLevel string
}

// FromEnv builds the configuration from IVSGW_* environment variables,
// optionally merged over a YAML file named by IVSGW_CONFIG.
func FromEnv() (AppConfig, error) {
	cfg := AppConfig{
		Listen:       ParseString("IVSGW_LISTEN", ":8080"),
		DataDir:      ParseString("IVSGW_DATA_DIR", "/var/lib/ivsgw"),
		ThumbnailDir: ParseString("IVSGW_THUMBNAIL_DIR", ""),
		APIBase:      ParseString("IVSGW_API_BASE", "https://api.video.ibm.com"),
		APITimeout:   ParseDuration("IVSGW_API_TIMEOUT", 30*time.Second),
		APIRateLimit: float64(ParseInt("IVSGW_API_RATE_LIMIT", 0)),
		NegativeTTL:  ParseDuration("IVSGW_NEGATIVE_TTL", 10*time.Minute),
		RedisAddr:    ParseString("IVSGW_REDIS_ADDR", ""),
		RateLimitRPM: ParseInt("IVSGW_RATE_LIMIT_RPM", 120),
		LogLevel:     ParseString("IVSGW_LOG_LEVEL", "info"),
	}

	if path := ParseString("IVSGW_CONFIG", ""); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return AppConfig{}, err
		}
		cfg = merge(fileCfg, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg.withDefaults(), nil
}

// Validate checks the invariants every component relies on.
func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data dir must not be empty", ErrConfiguration)
	}
	if !filepath.IsAbs(c.DataDir) {
		return fmt.Errorf("%w: data dir %q must be absolute", ErrConfiguration, c.DataDir)
	}
	if c.ThumbnailDir != "" && !filepath.IsAbs(c.ThumbnailDir) {
		return fmt.Errorf("%w: thumbnail dir %q must be absolute", ErrConfiguration, c.ThumbnailDir)
	}
	if strings.TrimSpace(c.APIBase) == "" {
		return fmt.Errorf("%w: API base must not be empty", ErrConfiguration)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("%w: API timeout must be positive", ErrConfiguration)
	}
	return nil
}

func (c AppConfig) withDefaults() AppConfig {
	if c.ThumbnailDir == "" {
		c.ThumbnailDir = filepath.Join(c.DataDir, "thumbnails")
	}
	return c
}

// merge overlays env-derived values over file values. The env side already
// carries compiled defaults for unset variables, so a file value only
// survives where the env value still equals its default and the file set
// the field.
func merge(file, env AppConfig) AppConfig {
	def := AppConfig{
		Listen:       ":8080",
		DataDir:      "/var/lib/ivsgw",
		APIBase:      "https://api.video.ibm.com",
		APITimeout:   30 * time.Second,
		NegativeTTL:  10 * time.Minute,
		RateLimitRPM: 120,
		LogLevel:     "info",
	}
	out := env
	if env.Listen == def.Listen && file.Listen != "" {
		out.Listen = file.Listen
	}
	if env.DataDir == def.DataDir && file.DataDir != "" {
		out.DataDir = file.DataDir
	}
	if env.ThumbnailDir == def.ThumbnailDir && file.ThumbnailDir != "" {
		out.ThumbnailDir = file.ThumbnailDir
	}
	if env.APIBase == def.APIBase && file.APIBase != "" {
		out.APIBase = file.APIBase
	}
	if env.APITimeout == def.APITimeout && file.APITimeout != 0 {
		out.APITimeout = file.APITimeout
	}
	if env.APIRateLimit == def.APIRateLimit && file.APIRateLimit != 0 {
		out.APIRateLimit = file.APIRateLimit
	}
	if env.NegativeTTL == def.NegativeTTL && file.NegativeTTL != 0 {
		out.NegativeTTL = file.NegativeTTL
	}
	if env.RedisAddr == def.RedisAddr && file.RedisAddr != "" {
		out.RedisAddr = file.RedisAddr
	}
	if env.RateLimitRPM == def.RateLimitRPM && file.RateLimitRPM != 0 {
		out.RateLimitRPM = file.RateLimitRPM
	}
	if env.LogLevel == def.LogLevel && file.LogLevel != "" {
		out.LogLevel = file.LogLevel
	}
	return out
}
