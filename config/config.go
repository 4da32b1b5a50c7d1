package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting read from the environment.
type Config struct {
	Port string

	Store      string // "postgres" or "memory"
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	AllowedOrigins  string
	BodyLimitBytes  int
	RateLimitMax    int
	RateLimitWindow time.Duration

	RedisAddr    string
	RedisChannel string

	LogLevel  string
	LogFormat string

	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
}

// Load reads .env (if any) and the process environment. The returned bool
// reports whether a .env file was loaded.
func Load() (Config, bool) {
	loaded := godotenv.Load() == nil

	// Fiber default BodyLimit is 4 MiB; BODY_LIMIT_BYTES wins over BODY_LIMIT_MB.
	bodyLimit := envInt("BODY_LIMIT_BYTES", 0)
	if bodyLimit <= 0 {
		bodyLimit = envInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	cfg := Config{
		Port: envString("PORT", "8080"),

		Store:      strings.ToLower(envString("STORE", "postgres")),
		DBHost:     envString("DB_HOST", "db"),
		DBPort:     envInt("DB_PORT", 5432),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  envString("DB_SSLMODE", "disable"),

		AllowedOrigins:  envString("ALLOWED_ORIGINS", "*"),
		BodyLimitBytes:  bodyLimit,
		RateLimitMax:    envInt("RATE_LIMIT_MAX", 60),
		RateLimitWindow: time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisChannel: envString("REDIS_CHANNEL", "invoices"),

		LogLevel:  envString("LOG_LEVEL", "info"),
		LogFormat: envString("LOG_FORMAT", "json"),

		CompanyName:    envString("COMPANY_NAME", "GARAGE"),
		CompanyAddress: os.Getenv("COMPANY_ADDRESS"),
		CompanyPhone:   os.Getenv("COMPANY_PHONE"),
	}
	return cfg, loaded
}

// DSN builds the Postgres connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
