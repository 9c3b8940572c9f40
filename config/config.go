package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config contains all configuration for the application
type Config struct {
	// UniFi Protect Configuration
	ProtectAddress  string
	ProtectUsername string
	ProtectPassword string
	VerifySSL       bool

	// Pipeline Configuration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxDaysBack    int

	// Transcription Configuration
	WhisperBinary string
	WhisperModel  string

	// Storage Configuration
	TranscriptsDir string
	WorkDir        string

	// Timezone for chunk planning and discovery
	Timezone string

	// Database Configuration
	DatabasePath string

	// Server Configuration
	ServerPort string

	// Cron Configuration
	CronHour int // Hour of day (local time) for the daily catch-up run

	// R2 Archival Configuration
	R2AccessKey string
	R2SecretKey string
	R2AccountID string
	R2Bucket    string
	R2Endpoint  string
	R2Region    string
	R2Enabled   bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() Config {
	cfg := Config{
		ProtectAddress:  os.Getenv("UNIFI_PROTECT_ADDRESS"),
		ProtectUsername: os.Getenv("UNIFI_PROTECT_USERNAME"),
		ProtectPassword: os.Getenv("UNIFI_PROTECT_PASSWORD"),
		VerifySSL:       getEnvBool("UNIFI_PROTECT_VERIFY_SSL", false),

		MaxRetries:     getEnvInt("PIPELINE_MAX_RETRIES", 5),
		InitialBackoff: getEnvDuration("PIPELINE_INITIAL_BACKOFF", time.Second),
		MaxBackoff:     getEnvDuration("PIPELINE_MAX_BACKOFF", 300*time.Second),
		MaxDaysBack:    getEnvInt("DISCOVERY_MAX_DAYS_BACK", 365),

		WhisperBinary: getEnv("WHISPER_BINARY", "whisper-cli"),
		WhisperModel:  getEnv("WHISPER_MODEL", "./models/ggml-base.en.bin"),

		TranscriptsDir: getEnv("TRANSCRIPTS_DIR", "./transcripts"),
		WorkDir:        getEnv("WORK_DIR", ""),

		Timezone: getEnv("TIMEZONE", "America/Los_Angeles"),

		DatabasePath: getEnv("DATABASE_PATH", "./data/chunks.db"),

		ServerPort: getEnv("SERVER_PORT", "3000"),

		CronHour: getEnvInt("CRON_HOUR", 3),

		R2AccessKey: os.Getenv("R2_ACCESS_KEY"),
		R2SecretKey: os.Getenv("R2_SECRET_KEY"),
		R2AccountID: os.Getenv("R2_ACCOUNT_ID"),
		R2Bucket:    os.Getenv("R2_BUCKET"),
		R2Endpoint:  os.Getenv("R2_ENDPOINT"),
		R2Region:    getEnv("R2_REGION", "auto"),
	}

	cfg.R2Enabled = cfg.R2AccessKey != "" && cfg.R2SecretKey != "" && cfg.R2Bucket != ""

	return cfg
}

// Validate checks that required credentials are present
func (c Config) Validate() error {
	missing := []string{}
	if c.ProtectAddress == "" {
		missing = append(missing, "UNIFI_PROTECT_ADDRESS")
	}
	if c.ProtectUsername == "" {
		missing = append(missing, "UNIFI_PROTECT_USERNAME")
	}
	if c.ProtectPassword == "" {
		missing = append(missing, "UNIFI_PROTECT_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

// Location resolves the configured timezone, falling back to the default
// when the name is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("[config] Unknown timezone %q, using America/Los_Angeles", c.Timezone)
		loc, err = time.LoadLocation("America/Los_Angeles")
		if err != nil {
			return time.Local
		}
	}
	return loc
}

// EnsurePaths creates the directories the application writes to
func EnsurePaths(cfg Config) error {
	dirs := []string{
		cfg.TranscriptsDir,
		filepath.Dir(cfg.DatabasePath),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[config] Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("[config] Invalid value for %s: %q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("[config] Invalid value for %s: %q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return d
}
