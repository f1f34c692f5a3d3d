package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer            string        // Optional: issuer claim for session tokens (default: eventhive-auth)
	DatabaseFile      string        // Optional: path to SQLite database file (default: ./auth.db)
	SessionSecretFile string        // Optional: path to the session signing secret file (default: ./session_secret)
	SessionTTL        time.Duration // Optional: session token lifetime (default: 24h)

	SMTPAddr     string // Optional: host:port of the SMTP relay; empty means log-only mail
	SMTPFrom     string // Optional: From address for OTP emails
	SMTPUsername string // Optional: SMTP AUTH username
	SMTPPassword string // Optional: SMTP AUTH password

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-challenge purge interval (default: 5m)
}

func LoadConfig() Config {
	return Config{
		Issuer:            getEnvOrDefault("AUTH_ISSUER", "eventhive-auth"),
		DatabaseFile:      getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		SessionSecretFile: getEnvOrDefault("AUTH_SESSION_SECRET_FILE", "session_secret"),
		SessionTTL:        getEnvDurationOrDefault("AUTH_SESSION_TTL", 24*time.Hour),

		SMTPAddr:     os.Getenv("SMTP_ADDR"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@eventhive.local"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 5*time.Minute),
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are treated as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
