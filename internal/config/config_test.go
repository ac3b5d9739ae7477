package config

import (
	"path/filepath"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("TZ", "")
	t.Setenv("PORT", "")
	t.Setenv("DATA_LAKE_PATH", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Timezone != "Europe/Warsaw" {
		t.Fatalf("Timezone = %q, want Europe/Warsaw", cfg.Timezone)
	}
	if cfg.Location == nil {
		t.Fatal("Location is nil")
	}
	if cfg.DataLakePath != filepath.Join("data", "lake") {
		t.Fatalf("DataLakePath = %q", cfg.DataLakePath)
	}
	if cfg.PassphraseHash != "" {
		t.Fatalf("PassphraseHash = %q, want empty", cfg.PassphraseHash)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("PORT", "9999")
	t.Setenv("LAKE_RECIPIENT", "cafe01")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.Port != "9999" {
		t.Fatalf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.Timezone != "UTC" {
		t.Fatalf("Timezone = %q, want UTC", cfg.Timezone)
	}
	if cfg.LakeRecipient != "cafe01" {
		t.Fatalf("LakeRecipient = %q, want cafe01", cfg.LakeRecipient)
	}
}

func TestFromEnvRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("TZ", "Mars/Olympus_Mons")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected an error for an unknown timezone")
	}
}
