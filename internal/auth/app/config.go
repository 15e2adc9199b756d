package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer         string // Required: issuer claim for tokens
	BootstrapToken string // Optional: token required to perform bootstrap

	StoreDriver         string        // Optional: credential store driver (sqlite, badger) (default: sqlite)
	DatabaseFile        string        // Optional: path to SQLite database file (default: ./fleetauth.db)
	DataDir             string        // Optional: Badger data directory (default: ./fleetauth-data)
	TokenTTL            time.Duration // Optional: access token lifetime (default: 1h)
	SideEffectTimeout   time.Duration // Optional: timeout for post-sign-in writes (default: 5s)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:              os.Getenv("AUTH_ISSUER"),
		BootstrapToken:      os.Getenv("BOOTSTRAP_TOKEN"),
		StoreDriver:         getEnvOrDefault("AUTH_STORE_DRIVER", "sqlite"),
		DatabaseFile:        getEnvOrDefault("AUTH_DATABASE_FILE", "fleetauth.db"),
		DataDir:             getEnvOrDefault("AUTH_DATA_DIR", "fleetauth-data"),
		TokenTTL:            getEnvDurationOrDefault("AUTH_TOKEN_TTL", time.Hour),
		SideEffectTimeout:   getEnvDurationOrDefault("AUTH_SIDE_EFFECT_TIMEOUT", 5*time.Second),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "fleetauth"
	}

	return cfg
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

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
