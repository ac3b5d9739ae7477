package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config carries everything the service reads from the environment.
type Config struct {
	Port          string
	SecretKey     string
	Timezone      string
	Location      *time.Location
	DataLakePath  string
	AuditDBPath   string
	RulesPath     string
	LakeRecipient string
	LakeIdentity  string
	// PassphraseHash is the bcrypt hash of the single user's API passphrase.
	// Empty disables authentication (local single-user mode).
	PassphraseHash string
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() (*Config, error) {
	timezone := getEnv("TZ", "Europe/Warsaw")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		SecretKey:      getEnv("SECRET_KEY", "change_me_in_production"),
		Timezone:       timezone,
		Location:       location,
		DataLakePath:   getEnv("DATA_LAKE_PATH", filepath.Join("data", "lake")),
		AuditDBPath:    getEnv("AUDIT_DB_PATH", filepath.Join("data", "audit.db")),
		RulesPath:      getEnv("RULES_PATH", ""),
		LakeRecipient:  getEnv("LAKE_RECIPIENT", ""),
		LakeIdentity:   getEnv("LAKE_IDENTITY", ""),
		PassphraseHash: getEnv("PASSPHRASE_HASH", ""),
	}, nil
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
