package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config carries every knob the process reads from the environment. A .env
// file in the working directory is honored for local development.
type Config struct {
	// Server
	ListenAddr string

	// Storage. Empty DatabaseURL selects the in-memory store; empty RedisURL
	// disables the Redis challenge store and event publishing.
	DatabaseURL string
	RedisURL    string

	// Auth
	Domain           string
	SuperAdminWallet string
	ChallengeTTL     time.Duration
	AccessTTL        time.Duration
	JWTSecret        string
}

// Load reads the configuration with defaults matching a local setup.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":9000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		Domain:           getEnv("APP_DOMAIN", "localhost"),
		SuperAdminWallet: getEnv("SUPER_ADMIN_WALLET", ""),
		ChallengeTTL:     time.Duration(getEnvInt("CHALLENGE_TTL_SECONDS", 300)) * time.Second,
		AccessTTL:        time.Duration(getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 480)) * time.Minute,
		JWTSecret:        getEnv("JWT_SECRET", "change-me-in-production"),
	}
}

// Validate warns about configuration that is usable but unsafe or incomplete.
func (c *Config) Validate(log *zap.Logger) {
	if c.SuperAdminWallet == "" {
		log.Warn("SUPER_ADMIN_WALLET is not set, no admin can log in")
	}
	if c.JWTSecret == "change-me-in-production" {
		log.Warn("JWT_SECRET is default, change in production")
	}
	if c.DatabaseURL == "" {
		log.Warn("DATABASE_URL is not set, using in-memory storage")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
