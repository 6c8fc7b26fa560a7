package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultDatabasePath         = "nimloth.db"
	defaultPort                 = "8080"
	defaultAccessTokenTTLHours  = 24
	defaultRefreshTokenTTLHours = 24 * 7
	defaultResetTokenTTLMinutes = 60
)

type Config struct {
	// database path
	DatabasePath string

	// HTTP listen port
	Port string

	// JWT signing configuration
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// password reset token lifetime
	ResetTokenTTL time.Duration

	// CORS
	AllowedOrigins []string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "insecure-dev-secret"
		log.Println("Warning: JWT_SECRET not set, using an insecure development secret")
	}

	origins := strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:4200"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	cfg := Config{
		DatabasePath:    getEnvOrDefault("DATABASE_PATH", defaultDatabasePath),
		Port:            getEnvOrDefault("PORT", defaultPort),
		JWTSecret:       secret,
		AccessTokenTTL:  time.Duration(getEnvIntOrDefault("ACCESS_TOKEN_TTL_HOURS", defaultAccessTokenTTLHours)) * time.Hour,
		RefreshTokenTTL: time.Duration(getEnvIntOrDefault("REFRESH_TOKEN_TTL_HOURS", defaultRefreshTokenTTLHours)) * time.Hour,
		ResetTokenTTL:   time.Duration(getEnvIntOrDefault("RESET_TOKEN_TTL_MINUTES", defaultResetTokenTTLMinutes)) * time.Minute,
		AllowedOrigins:  origins,
	}

	return cfg, nil
}
