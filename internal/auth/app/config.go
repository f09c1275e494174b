package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer    string // Token issuer claim (default: bookit-auth)
	MFAIssuer string // Issuer label shown in authenticator apps (default: BookIt)

	DatabaseFile     string // Path to SQLite database file (default: ./auth.db)
	PepperFile       string // Path to file containing pepper for password hashing (default: ./pepper)
	MFAEncryptionKey string // Key material for TOTP secrets at rest; random per process when empty
	SigningKeyFile   string // Optional PKCS8 PEM Ed25519 key; random per process when empty

	AuditRetentionDays int // Housekeeping purge window in days, 0 disables (default: 90)

	AdminEmail    string // Optional: bootstrap admin created on an empty database
	AdminPassword string

	CORSOrigins string // Comma separated allowed origins (default: *)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:               getEnvOrDefault("AUTH_ISSUER", "bookit-auth"),
		MFAIssuer:            getEnvOrDefault("AUTH_MFA_ISSUER", "BookIt"),
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:           getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		MFAEncryptionKey:     os.Getenv("AUTH_MFA_ENCRYPTION_KEY"),
		SigningKeyFile:       os.Getenv("AUTH_SIGNING_KEY_FILE"),
		AuditRetentionDays:   getEnvIntOrDefault("AUDIT_RETENTION_DAYS", 90),
		AdminEmail:           os.Getenv("AUTH_ADMIN_EMAIL"),
		AdminPassword:        os.Getenv("AUTH_ADMIN_PASSWORD"),
		CORSOrigins:          getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
