// Package config loads bcilab settings from BCILAB_* environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/bcilab/internal/util"
)

const envPrefix = "BCILAB"

// Field names map to BCILAB_<SECTION>_<FIELD> through split_words; no
// envconfig tags are used so unprefixed fallbacks like $USER never apply.

// Database holds connection settings. URL may be a libsql:// or http(s)://
// Turso URL, or a local file: path. Empty means a file in the XDG data dir.
type Database struct {
	URL       string `split_words:"true"`
	AuthToken string `split_words:"true"`
}

type Server struct {
	Port            int           `split_words:"true" default:"8080"`
	ShutdownTimeout time.Duration `split_words:"true" default:"5s"`
}

// Decoder configures the simulated decision source and its polling runner.
type Decoder struct {
	Interval      time.Duration `split_words:"true" default:"2s"`
	Threshold     float64       `split_words:"true" default:"80"`
	MinConfidence float64       `split_words:"true" default:"60"`
}

type Log struct {
	Level  string `split_words:"true" default:"info"`
	Format string `split_words:"true" default:"console"`
}

// OTel holds OTEL exporter configuration.
type OTel struct {
	Enabled  bool   `split_words:"true"`
	Endpoint string `split_words:"true"`
	Insecure bool   `split_words:"true"`
}

type Config struct {
	Database Database
	Server   Server
	Decoder  Decoder
	Log      Log
	OTel     OTel
	// User is the identity used when no authenticated user is supplied.
	User string `split_words:"true" default:"local"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Decoder.Threshold < 0 || c.Decoder.Threshold > 100 {
		return fmt.Errorf("decoder threshold %v outside [0, 100]", c.Decoder.Threshold)
	}
	if c.Decoder.MinConfidence < 0 || c.Decoder.MinConfidence >= 100 {
		return fmt.Errorf("decoder min confidence %v outside [0, 100)", c.Decoder.MinConfidence)
	}
	if c.Decoder.Interval <= 0 {
		return fmt.Errorf("decoder interval must be positive, got %s", c.Decoder.Interval)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.User) == "" {
		return fmt.Errorf("default user must not be blank")
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log format: unsupported value %q", c.Log.Format)
	}
	return nil
}

// DatabaseURL returns the configured URL, defaulting to bcilab.db in the
// XDG data directory.
func (c *Config) DatabaseURL() (string, error) {
	if c.Database.URL != "" {
		return c.Database.URL, nil
	}
	dir, err := util.GetXDGDataDir()
	if err != nil {
		return "", err
	}
	return "file:" + filepath.Join(dir, "bcilab.db"), nil
}
