package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/emiliopalmerini/bcilab/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Log
		wantErr bool
	}{
		{"console info", config.Log{Level: "info", Format: "console"}, false},
		{"json debug", config.Log{Level: "DEBUG", Format: "json"}, false},
		{"bad level", config.Log{Level: "loud", Format: "json"}, true},
		{"bad format", config.Log{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			_ = log.Sync()
		})
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	log, err := New(config.Log{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled at warn level")
	}
}

func TestComponent(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	Component(zap.New(core), "sessions").Info("started")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["component"]; got != "sessions" {
		t.Errorf("component = %v, want sessions", got)
	}

	Component(nil, "x").Info("no panic on nil logger")
}
