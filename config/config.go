package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env             string
	Port            string
	DatabaseURL     string
	DatabaseName    string
	JWTSecret       string
	SessionLifetime time.Duration
	TOTPIssuer      string
}

// Load reads configuration from the environment. The signing secret and the
// database URL are required: starting without them is a configuration error
// and fails closed.
func Load() *Config {
	return &Config{
		Env:             getEnv("ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     mustGetEnv("DATABASE_URL"),
		DatabaseName:    getEnv("DATABASE_NAME", "aidfusion"),
		JWTSecret:       mustGetEnv("JWT_SECRET"),
		SessionLifetime: time.Duration(getEnvAsInt("SESSION_LIFETIME_SECONDS", 604800)) * time.Second,
		TOTPIssuer:      getEnv("TOTP_ISSUER", "AidFusion"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
