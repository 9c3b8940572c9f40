package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, expected 5", cfg.MaxRetries)
	}
	if cfg.InitialBackoff != time.Second {
		t.Errorf("InitialBackoff = %v, expected 1s", cfg.InitialBackoff)
	}
	if cfg.MaxBackoff != 300*time.Second {
		t.Errorf("MaxBackoff = %v, expected 300s", cfg.MaxBackoff)
	}
	if cfg.WhisperBinary != "whisper-cli" {
		t.Errorf("WhisperBinary = %q, expected whisper-cli", cfg.WhisperBinary)
	}
	if cfg.Timezone != "America/Los_Angeles" {
		t.Errorf("Timezone = %q, expected America/Los_Angeles", cfg.Timezone)
	}
	if cfg.R2Enabled {
		t.Error("R2 must be disabled without credentials")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PIPELINE_MAX_RETRIES", "2")
	t.Setenv("PIPELINE_INITIAL_BACKOFF", "500ms")
	t.Setenv("UNIFI_PROTECT_VERIFY_SSL", "true")
	t.Setenv("TIMEZONE", "UTC")

	cfg := LoadConfig()

	if cfg.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, expected 2", cfg.MaxRetries)
	}
	if cfg.InitialBackoff != 500*time.Millisecond {
		t.Errorf("InitialBackoff = %v, expected 500ms", cfg.InitialBackoff)
	}
	if !cfg.VerifySSL {
		t.Error("Expected VerifySSL to be true")
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location() = %v, expected UTC", cfg.Location())
	}
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PIPELINE_MAX_RETRIES", "not-a-number")
	t.Setenv("PIPELINE_MAX_BACKOFF", "soon")

	cfg := LoadConfig()

	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, expected default 5 for invalid input", cfg.MaxRetries)
	}
	if cfg.MaxBackoff != 300*time.Second {
		t.Errorf("MaxBackoff = %v, expected default 300s for invalid input", cfg.MaxBackoff)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{
		ProtectAddress:  "https://192.168.1.1",
		ProtectUsername: "viewer",
		ProtectPassword: "secret",
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config to pass: %v", err)
	}

	cfg.ProtectPassword = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error for missing password")
	}
	if got := err.Error(); !strings.Contains(got, "UNIFI_PROTECT_PASSWORD") {
		t.Errorf("Error should name the missing variable, got %q", got)
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := Config{Timezone: "Not/AZone"}
	loc := cfg.Location()
	if loc == nil {
		t.Fatal("Location must never be nil")
	}
	if loc.String() != "America/Los_Angeles" && loc != time.Local {
		t.Errorf("Unexpected fallback location %v", loc)
	}
}
