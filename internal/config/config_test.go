package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Decoder.Interval != 2*time.Second {
		t.Errorf("Interval = %s, want 2s", cfg.Decoder.Interval)
	}
	if cfg.Decoder.Threshold != 80 {
		t.Errorf("Threshold = %v, want 80", cfg.Decoder.Threshold)
	}
	if cfg.Decoder.MinConfidence != 60 {
		t.Errorf("MinConfidence = %v, want 60", cfg.Decoder.MinConfidence)
	}
	if cfg.User != "local" {
		t.Errorf("User = %q, want local", cfg.User)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("BCILAB_DATABASE_URL", "libsql://example.turso.io")
	t.Setenv("BCILAB_DATABASE_AUTH_TOKEN", "secret")
	t.Setenv("BCILAB_SERVER_PORT", "3000")
	t.Setenv("BCILAB_DECODER_THRESHOLD", "72.5")
	t.Setenv("BCILAB_DECODER_INTERVAL", "500ms")
	t.Setenv("BCILAB_OTEL_ENABLED", "true")
	t.Setenv("BCILAB_USER", "alice")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.URL != "libsql://example.turso.io" || cfg.Database.AuthToken != "secret" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Decoder.Threshold != 72.5 {
		t.Errorf("Threshold = %v", cfg.Decoder.Threshold)
	}
	if cfg.Decoder.Interval != 500*time.Millisecond {
		t.Errorf("Interval = %s", cfg.Decoder.Interval)
	}
	if !cfg.OTel.Enabled {
		t.Error("expected OTel enabled")
	}
	if cfg.User != "alice" {
		t.Errorf("User = %q", cfg.User)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold too high", func(c *Config) { c.Decoder.Threshold = 101 }},
		{"negative threshold", func(c *Config) { c.Decoder.Threshold = -1 }},
		{"zero interval", func(c *Config) { c.Decoder.Interval = 0 }},
		{"min confidence 100", func(c *Config) { c.Decoder.MinConfidence = 100 }},
		{"blank user", func(c *Config) { c.User = " " }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDatabaseURL_DefaultsToXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	cfg := validConfig()
	url, err := cfg.DatabaseURL()
	if err != nil {
		t.Fatalf("DatabaseURL: %v", err)
	}
	if !strings.HasPrefix(url, "file:/tmp/data/bcilab/") {
		t.Errorf("url = %q", url)
	}
}

func validConfig() *Config {
	return &Config{
		Server:  Server{Port: 8080},
		Decoder: Decoder{Interval: time.Second, Threshold: 80, MinConfidence: 60},
		Log:     Log{Level: "info", Format: "console"},
		User:    "local",
	}
}
