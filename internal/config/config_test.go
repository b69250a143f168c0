package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "test-does-not-exist")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Mode != "release" {
		t.Errorf("Mode = %q, want release", cfg.Mode)
	}
	if cfg.HistoryLimit != 500 {
		t.Errorf("HistoryLimit = %d, want 500", cfg.HistoryLimit)
	}
	if cfg.SendBuffer != 64 {
		t.Errorf("SendBuffer = %d, want 64", cfg.SendBuffer)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("PingPeriod = %v, want 54s", cfg.PingPeriod)
	}
	if cfg.Backpressure != "drop" {
		t.Errorf("Backpressure = %q, want drop", cfg.Backpressure)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_ENV", "test-does-not-exist")
	t.Setenv("CHATRELAY_PORT", "9001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != 9001 {
		t.Errorf("Port = %d, want 9001 from environment", cfg.Port)
	}
}
